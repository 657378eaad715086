/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package httpserver is the ambient front door every worker binds: a
// bind-address-keyed pool of *http.Server instances, each configured for
// h2c/TLS-ALPN HTTP/2 via golang.org/x/net/http2 the way the teacher's
// httpserver/pool wires it, fronting the reactor's HTTP/1.x core (C1/C7).
package httpserver

import (
	"github.com/nabbar/zfproxy/errors"
)

const (
	ErrorParamsInvalid errors.CodeError = iota + errors.MinPkgHttpServer
	ErrorListen
	ErrorHTTP2Configure
	ErrorPortInUse
)

const (
	ErrorServerNotFound errors.CodeError = iota + errors.MinPkgHttpServerPool
	ErrorAlreadyRunning
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorParamsInvalid)
	errors.RegisterIdFctMessage(ErrorParamsInvalid, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorParamsInvalid:
		return "invalid server configuration"
	case ErrorListen:
		return "cannot start listener"
	case ErrorHTTP2Configure:
		return "cannot configure http2 over http server"
	case ErrorPortInUse:
		return "bind address already in use"
	case ErrorServerNotFound:
		return "no server registered for the given bind address"
	case ErrorAlreadyRunning:
		return "server is already running"
	}

	return ""
}
