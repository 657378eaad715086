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

package httpparse

import "github.com/nabbar/zfproxy/errors"

const (
	ErrorRequestLineTooLong errors.CodeError = iota + errors.MinPkgHttpParse
	ErrorHeaderTooLarge
	ErrorDuplicateHeader
	ErrorInvalidMethod
	ErrorMethodNotAllowed
	ErrorMissingHost
	ErrorChunkedConflict
	ErrorUnsupportedTransferEncoding
	ErrorMalformedRequestLine
	ErrorMalformedHeaderLine
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorRequestLineTooLong)
	errors.RegisterIdFctMessage(ErrorRequestLineTooLong, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorRequestLineTooLong:
		return "request line exceeds the header buffer pool"
	case ErrorHeaderTooLarge:
		return "cumulative header size exceeds large_client_header_buffers.size * .num"
	case ErrorDuplicateHeader:
		return "header must occur at most once"
	case ErrorInvalidMethod:
		return "unrecognized request method"
	case ErrorMethodNotAllowed:
		return "method not allowed on this server"
	case ErrorMissingHost:
		return "Host header is mandatory on HTTP/1.1"
	case ErrorChunkedConflict:
		return "Transfer-Encoding and Content-Length must not both be present"
	case ErrorUnsupportedTransferEncoding:
		return "Transfer-Encoding value other than chunked is not implemented"
	case ErrorMalformedRequestLine:
		return "request line does not match method SP uri [SP HTTP/M.m] CRLF"
	case ErrorMalformedHeaderLine:
		return "header line does not match name \":\" SP value CRLF"
	}

	return ""
}

// Status maps a parse-time CodeError to the HTTP status code the
// finalization switch (spec.md §4.2) should respond with. Zero means the
// error carries no direct HTTP mapping (caller decides, e.g. 500).
func Status(code errors.CodeError) int {
	switch code {
	case ErrorRequestLineTooLong:
		return 414
	case ErrorHeaderTooLarge:
		return 494
	case ErrorDuplicateHeader, ErrorChunkedConflict, ErrorMissingHost, ErrorMalformedRequestLine, ErrorMalformedHeaderLine:
		return 400
	case ErrorMethodNotAllowed:
		return 405
	case ErrorUnsupportedTransferEncoding:
		return 501
	case ErrorInvalidMethod:
		return 400
	}

	return 0
}
