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

package arena

import (
	"fmt"

	liberr "github.com/nabbar/zfproxy/errors"
)

const defaultChunkSize = 4096

type chunk struct {
	buf []byte
	off int
}

type pool struct {
	chunkSize int
	chunks    []*chunk
	cleanups  []func()
	closed    bool
	total     int
}

// New returns a Pool whose chunks grow in increments of chunkSize bytes. A
// chunkSize <= 0 uses a 4KiB default, matching the teacher's connection read
// buffer default order of magnitude.
func New(chunkSize int) Pool {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &pool{
		chunkSize: chunkSize,
	}
}

func (p *pool) Alloc(n int) []byte {
	if p.closed || n <= 0 {
		return nil
	}

	if n > p.chunkSize {
		c := &chunk{buf: make([]byte, n)}
		c.off = n
		p.chunks = append(p.chunks, c)
		p.total += n
		return c.buf
	}

	if len(p.chunks) == 0 || p.chunks[len(p.chunks)-1].off+n > p.chunkSize {
		p.chunks = append(p.chunks, &chunk{buf: make([]byte, p.chunkSize)})
	}

	last := p.chunks[len(p.chunks)-1]
	b := last.buf[last.off : last.off+n]
	last.off += n
	p.total += n

	return b
}

func (p *pool) AllocString(s string) string {
	if s == "" {
		return ""
	}

	b := p.Alloc(len(s))
	if b == nil {
		return s
	}

	copy(b, s)

	return string(b)
}

func (p *pool) OnCleanup(fn func()) {
	if fn == nil || p.closed {
		return
	}

	p.cleanups = append(p.cleanups, fn)
}

func (p *pool) Release() liberr.Error {
	if p.closed {
		return nil
	}

	p.closed = true

	return p.runCleanups()
}

func (p *pool) Reset() liberr.Error {
	e := p.runCleanups()

	p.chunks = nil
	p.cleanups = nil
	p.total = 0
	p.closed = false

	return e
}

func (p *pool) Closed() bool {
	return p.closed
}

func (p *pool) Len() int {
	return p.total
}

func (p *pool) runCleanups() (err liberr.Error) {
	for i := len(p.cleanups) - 1; i >= 0; i-- {
		fn := p.cleanups[i]
		if fn == nil {
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					e := liberr.New(uint16(ErrorCleanupPanic), fmt.Sprintf("%v", r))
					if err == nil {
						err = e
					} else {
						err.Add(e)
					}
				}
			}()

			fn()
		}()
	}

	return err
}
