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

package proxyglue

import (
	"fmt"

	liberr "github.com/nabbar/zfproxy/errors"

	"github.com/nabbar/zfproxy/upstream"
)

// OutputFilter transforms one chunk of bytes as it passes from the
// upstream pipe (C9) to the downstream connection, spec.md §3's "an
// output filter function" on the upstream pipe state. Filters compose
// left to right; any filter may shrink, grow, or reject a chunk.
type OutputFilter func(chunk []byte) ([]byte, error)

// FilterChain wraps a downstream upstream.Writer with an ordered list of
// OutputFilter passes, realizing spec.md §1's out-of-scope "per-module
// content handlers (auto-indexing, chunked output filtering, ...)" as a
// concrete, composable Go decorator around the write side of the pipe —
// Pipe itself stays filter-agnostic; wrapping Pipe.Downstream with a
// FilterChain is how a caller installs filters without touching C9.
//
// Pipe.writeToDownstream tracks a buffer's flush position by the byte
// count Write returns, measured against the *original, unfiltered* chunk
// it handed in (spec.md §4.4's busy-buffer bookkeeping assumes an
// identity transform). A filter that resizes data (chunked framing,
// compression) breaks that assumption, so FilterChain absorbs the
// resized bytes into its own pending buffer rather than ever reporting a
// filtered-length count upstream: once the original chunk has been fully
// handed to a filter successfully, it is considered consumed from the
// pipe's point of view even if Next hasn't accepted all the filtered
// bytes yet.
type FilterChain struct {
	Next    upstream.Writer
	Filters []OutputFilter

	pending []byte
}

// Write implements upstream.Writer. If a prior call left filtered bytes
// undelivered, Write first tries to drain them; p is not touched (and
// ErrWouldBlock is returned with n=0) until pending is empty, since
// accepting new input while old output is stuck would grow pending
// without bound. Once drained, p runs through every filter in order and
// the result is handed to Next, buffering any remainder; Write reports
// len(p) as soon as the original chunk has been consumed into either
// Next or pending.
func (f *FilterChain) Write(p []byte) (int, error) {
	if len(f.pending) > 0 {
		if !f.drain() {
			return 0, upstream.ErrWouldBlock
		}
	}

	chunk := p
	for _, filt := range f.Filters {
		out, err := filt(chunk)
		if err != nil {
			return 0, liberr.New(uint16(ErrorFilterChainAborted), err.Error())
		}
		chunk = out
	}

	if len(chunk) == 0 {
		return len(p), nil
	}

	f.pending = append(f.pending, chunk...)
	f.drain()
	return len(p), nil
}

// drain tries to flush f.pending to Next, trimming whatever was accepted.
// Returns true once pending is fully empty.
func (f *FilterChain) drain() bool {
	for len(f.pending) > 0 {
		n, err := f.Next.Write(f.pending)
		if n > 0 {
			f.pending = f.pending[n:]
		}
		if err != nil {
			return len(f.pending) == 0
		}
		if n == 0 {
			return false
		}
	}
	return true
}

// ChunkedEncodeFilter renders each chunk as one HTTP/1.1 chunked-transfer
// framing unit ("<hex-size>\r\n<data>\r\n"), the Go-native stand-in for
// spec.md's out-of-scope "chunked output filtering" content handler. The
// final empty-chunk terminator is the caller's responsibility (emitted
// once UpstreamEOF is observed) via ChunkedTrailer.
func ChunkedEncodeFilter(chunk []byte) ([]byte, error) {
	if len(chunk) == 0 {
		return nil, nil
	}
	head := fmt.Sprintf("%x\r\n", len(chunk))
	out := make([]byte, 0, len(head)+len(chunk)+2)
	out = append(out, head...)
	out = append(out, chunk...)
	out = append(out, '\r', '\n')
	return out, nil
}

// ChunkedTrailer is the fixed terminating sequence of a chunked body: a
// zero-size chunk, an empty trailer section, and the final CRLF.
var ChunkedTrailer = []byte("0\r\n\r\n")
