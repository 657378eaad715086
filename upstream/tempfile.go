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

package upstream

import (
	liberr "github.com/nabbar/zfproxy/errors"

	"github.com/nabbar/zfproxy/bufchain"
)

// TempFile is the single growing spill file of spec.md §4.4 "Temp-file
// spillover": a ceiling bounds total size, and once the tail of what has
// been sent downstream catches up with the write offset, the offset may
// cyclically rewind to zero.
type TempFile struct {
	File        bufchain.FileRef
	Ceiling     int64
	writeOffset int64
}

// NewTempFile wraps f as a spill target bounded by ceiling bytes
// (max_temp_file_size).
func NewTempFile(f bufchain.FileRef, ceiling int64) *TempFile {
	return &TempFile{File: f, Ceiling: ceiling}
}

// Spill appends data at the current write offset and returns a
// KindFileRegion buffer describing its extent.
func (t *TempFile) Spill(data []byte) (*bufchain.Buffer, liberr.Error) {
	if t.writeOffset+int64(len(data)) > t.Ceiling {
		return nil, liberr.New(uint16(ErrorSpillOverflow), "spill exceeds max_temp_file_size")
	}

	n, err := t.File.WriteAt(data, t.writeOffset)
	if err != nil {
		return nil, liberr.New(uint16(ErrorSpillWrite), err.Error())
	}

	start := t.writeOffset
	t.writeOffset += int64(n)

	return bufchain.NewFileRegion(t.File, start, t.writeOffset), nil
}

// MaybeRewind cyclically rewinds the write offset to zero once the last
// file-backed buffer sent downstream has been fully drained (its
// FileLast equals the current write offset), bounding disk usage per
// spec.md §4.4.
func (t *TempFile) MaybeRewind(lastSentFileLast int64) {
	if lastSentFileLast == t.writeOffset {
		t.writeOffset = 0
	}
}

// WriteOffset reports the current append position, mostly for tests.
func (t *TempFile) WriteOffset() int64 {
	return t.writeOffset
}

func (p *Pipe) spillRoom() int64 {
	if p.Temp == nil {
		return 0
	}
	return p.Temp.Ceiling - p.Temp.writeOffset
}

// spillOldestOut moves the front Out buffer to temp-file storage,
// freeing its raw memory back to Free, per spec.md §4.4 "Spilled buffers
// carry in_file=true, temp_file=true ... their shadow raw buffers are
// returned to the free list." If Threaded is set, production wiring
// would hand this write to a worker pool and return ResultAgain from
// Pump until a completion event flips Writing back off (spec.md §4.4
// "Thread offload"); this port performs the write inline and only
// documents that seam, since no real disk-bound worker pool exists in
// this test harness.
func (p *Pipe) spillOldestOut() liberr.Error {
	if p.Temp == nil || p.Out.Empty() {
		return nil
	}

	b := p.Out.PopFront()
	data := append([]byte(nil), b.Data[b.Pos:b.Last]...)

	if p.Threaded {
		p.Writing = true
	}

	fb, err := p.Temp.Spill(data)
	if err != nil {
		p.Out.PushBack(b)
		return err
	}

	fb.Flags |= bufchain.FlagTempFile | bufchain.FlagInFile
	p.Out.PushBack(fb)
	p.recycle(b)

	if p.Threaded {
		p.Writing = false
	}

	return nil
}
