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

// Package logger is the ambient leveled-logging facade every worker
// component logs through: a pluggable-hook Logger (stdout, file, syslog)
// backed by a choice of third-party sinks (logrus, hclog, jwalterweatherman),
// so operators can redirect the proxy's access/error log without touching
// calling code.
package logger

import (
	"github.com/nabbar/zfproxy/errors"
)

const (
	ErrorInvalidKind errors.CodeError = iota + errors.MinPkgLogger
	ErrorOpenFile
	ErrorSyslogDial
	ErrorNilHook
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorInvalidKind)
	errors.RegisterIdFctMessage(ErrorInvalidKind, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorInvalidKind:
		return "unknown logger backend kind"
	case ErrorOpenFile:
		return "cannot open log file destination"
	case ErrorSyslogDial:
		return "cannot reach syslog daemon"
	case ErrorNilHook:
		return "hook must not be nil"
	}

	return ""
}
