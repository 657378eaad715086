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

// Package static serves an embedded or on-disk file tree as the static
// origin content handler SPEC_FULL.md's "Static origin data model" names:
// file lookup, per-path download/index/redirect/specific overrides, path
// traversal protection, and gin route registration.
package static

import (
	"github.com/nabbar/zfproxy/errors"
)

const (
	ErrorEmptyPath errors.CodeError = iota + errors.MinPkgStatic
	ErrorNotFound
	ErrorIsDirectory
	ErrorPathUnsafe
	ErrorTempCreate
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorEmptyPath)
	errors.RegisterIdFctMessage(ErrorEmptyPath, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorEmptyPath:
		return "path must not be empty"
	case ErrorNotFound:
		return "file not found"
	case ErrorIsDirectory:
		return "path is a directory, not a file"
	case ErrorPathUnsafe:
		return "path rejected by path security policy"
	case ErrorTempCreate:
		return "failed to materialize a temp file copy"
	}

	return ""
}
