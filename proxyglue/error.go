/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package proxyglue implements spec.md C12: the per-module content-handler
// contracts the core only specifies through a contract (try_files-style
// static fallback, auth_request-style subrequest authorization, the output
// filter chain) plus PROXY protocol v1/v2 decoding ahead of the reactor.
package proxyglue

import (
	"github.com/nabbar/zfproxy/errors"
)

const (
	ErrorProxyProtoMagic errors.CodeError = iota + errors.MinPkgProxyGlue
	ErrorProxyProtoTruncated
	ErrorProxyProtoAddressFamily
	ErrorTryFilesExhausted
	ErrorAuthRequestDenied
	ErrorAuthRequestUpstream
	ErrorFilterChainAborted
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorProxyProtoMagic)
	errors.RegisterIdFctMessage(ErrorProxyProtoMagic, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorProxyProtoMagic:
		return "PROXY protocol v2 magic sequence not found"
	case ErrorProxyProtoTruncated:
		return "PROXY protocol header truncated before its declared length"
	case ErrorProxyProtoAddressFamily:
		return "PROXY protocol address family/length combination is not a recognized v4/v6 block"
	case ErrorTryFilesExhausted:
		return "try_files candidate list exhausted with no match and no fallback"
	case ErrorAuthRequestDenied:
		return "auth_request subrequest returned a non-2xx status"
	case ErrorAuthRequestUpstream:
		return "auth_request subrequest failed before producing a status"
	case ErrorFilterChainAborted:
		return "output filter chain aborted the response"
	}

	return ""
}
