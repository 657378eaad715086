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

// Package upstream implements spec.md C9: the chained-buffer pump that
// threads bytes from an upstream connection to the downstream client,
// with rate limiting and temp-file spillover.
package upstream

import (
	stderrors "errors"

	"github.com/nabbar/zfproxy/errors"
)

const (
	ErrorNoBuffers errors.CodeError = iota + errors.MinPkgUpstream
	ErrorSpillWrite
	ErrorSpillOverflow
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorNoBuffers)
	errors.RegisterIdFctMessage(ErrorNoBuffers, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorNoBuffers:
		return "no free or allocatable buffer and downstream is not ready to drain"
	case ErrorSpillWrite:
		return "temp file spill write failed"
	case ErrorSpillOverflow:
		return "temp file spill exceeds max_temp_file_size"
	}

	return ""
}

// ErrWouldBlock is a plain sentinel, not a registered CodeError: a
// transient non-blocking I/O result is not a fault (spec.md §7 "Transient
// I/O: WOULDBLOCK/AGAIN -> re-arm event and return; not logged"), so it is
// modeled the way the standard library models io.EOF rather than through
// the teacher's loggable-fault taxonomy.
var ErrWouldBlock = stderrors.New("upstream: would block")

// ErrAbort signals an unrecoverable upstream/downstream failure that ends
// the pump loop immediately.
var ErrAbort = stderrors.New("upstream: abort")
