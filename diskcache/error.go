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

// Package diskcache implements spec.md C10/C11: the rb-tree/LRU cache index
// shared by a worker's requests, the bit-exact on-disk file store, and the
// background manager/loader that keep the two in sync (spec.md §4.5-§4.7).
package diskcache

import (
	"github.com/nabbar/zfproxy/errors"
)

const (
	ErrorSlabFull errors.CodeError = iota + errors.MinPkgDiskCache
	ErrorCorruptHeader
	ErrorKeyMismatch
	ErrorVariantMismatch
	ErrorWriteFailed
	ErrorRenameFailed
	ErrorLoaderWalk
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorSlabFull)
	errors.RegisterIdFctMessage(ErrorSlabFull, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorSlabFull:
		return "cache index slab is full and no eviction candidate was found"
	case ErrorCorruptHeader:
		return "cache file header failed validation (version/crc/key mismatch)"
	case ErrorKeyMismatch:
		return "cache file key part bytes do not match the lookup key"
	case ErrorVariantMismatch:
		return "Vary-derived variant hash does not match the stored variant"
	case ErrorWriteFailed:
		return "cache file write failed"
	case ErrorRenameFailed:
		return "atomic rename of temp file into the hashed path failed"
	case ErrorLoaderWalk:
		return "loader directory walk failed"
	}

	return ""
}
