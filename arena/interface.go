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

// Package arena implements a scoped bump allocator with a LIFO cleanup-on-drop
// chain, the Go-native analogue of a connection- or request-scoped memory pool.
//
// An Arena hands out []byte slices carved from growable chunks and lets callers
// register cleanup callbacks that run in reverse-registration order when the
// arena is released, mirroring a connection or request's lifetime exactly.
package arena

import "github.com/nabbar/zfproxy/errors"

// Pool is a scoped allocator whose entire contents are freed in one operation.
// It is not safe for concurrent use by multiple goroutines: a Pool is meant to
// be owned by exactly one Connection or Request, both of which are themselves
// single-threaded per the reactor's per-worker execution model.
type Pool interface {
	// Alloc returns a zeroed slice of length n carved out of the arena's
	// current chunk, growing the arena with a fresh chunk if needed.
	Alloc(n int) []byte

	// AllocString copies s into arena-owned memory and returns the copy,
	// useful for retaining header values beyond the lifetime of the read
	// buffer they were parsed from.
	AllocString(s string) string

	// OnCleanup registers fn to run when Release is called. Cleanups run in
	// LIFO order, mirroring the order in which nested resources were opened.
	OnCleanup(fn func())

	// Release runs every registered cleanup (LIFO) and returns the arena's
	// chunks to its backing freelist, if any. Release is idempotent; calling
	// it twice is a no-op. A panic inside a cleanup is recovered, logged by
	// returning an errors.Error wrapping ErrorCleanupPanic, and does not
	// prevent the remaining cleanups from running.
	Release() errors.Error

	// Reset releases all chunks and cleanups but keeps the Pool usable,
	// allowing a pooled Pool instance to be recycled between requests
	// without a fresh allocation of the Pool struct itself.
	Reset() errors.Error

	// Closed reports whether Release has already run.
	Closed() bool

	// Len returns the number of bytes handed out by Alloc/AllocString across
	// all chunks since the last Reset, for diagnostics and tests.
	Len() int
}
