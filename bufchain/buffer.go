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

// Package bufchain implements spec.md C6: ref-counted byte buffers and the
// chains of them the upstream pipe (C9) threads between upstream and
// downstream. Four buffer kinds coexist (memory, file-region, shadow, sync)
// per spec.md §3 "Buffer", and a shadow chain's terminal buffer is the sole
// releaser of the underlying memory — the Go realization of spec.md §9's
// "reference-counted byte storage; non-owning views carry the count" row.
package bufchain

import "sync/atomic"

// Kind identifies which of the four disjoint buffer kinds a Buffer is.
type Kind uint8

const (
	KindMemory Kind = iota
	KindFileRegion
	KindShadow
	KindSync
)

// Flag mirrors the buffer flags enumerated in spec.md §3.
type Flag uint16

const (
	FlagLastBuf Flag = 1 << iota
	FlagLastInChain
	FlagFlush
	FlagRecycled
	FlagTempFile
	FlagSync
	FlagMemory
	FlagTemporary
	FlagInFile
)

// refcount is the shared state behind a shadow chain: every shadow view
// increments it on creation, decrements it on Release, and the buffer whose
// Release call brings it to zero is the "last shadow" and runs onLastRelease.
type refcount struct {
	n             int32
	onLastRelease func()
}

// Buffer is one node of a chain. Pos/Last index into Data for KindMemory and
// KindShadow buffers (shadow buffers alias another buffer's Data slice
// in-place rather than copying); FilePos/FileLast describe a KindFileRegion
// buffer's extent in File.
type Buffer struct {
	Kind  Kind
	Flags Flag

	Data []byte
	Pos  int
	Last int

	File     FileRef
	FilePos  int64
	FileLast int64

	next *Buffer

	ref *refcount // non-nil only for KindShadow buffers

	released    int32  // guards against double counting this view's release
	pendingLast func() // OnLastRelease callback registered before the first Shadow
}

// FileRef is the minimal file handle contract a file-region buffer needs;
// *os.File and the temp-file spillover handle in package upstream both
// satisfy it.
type FileRef interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
}

// NewMemory wraps data as an owning KindMemory buffer spanning [pos:last].
func NewMemory(data []byte, pos, last int) *Buffer {
	return &Buffer{Kind: KindMemory, Flags: FlagMemory, Data: data, Pos: pos, Last: last}
}

// NewFileRegion describes bytes living in f at [filePos:fileLast).
func NewFileRegion(f FileRef, filePos, fileLast int64) *Buffer {
	return &Buffer{Kind: KindFileRegion, Flags: FlagInFile, File: f, FilePos: filePos, FileLast: fileLast}
}

// NewSync returns a zero-length signaling buffer (e.g. to carry FlagFlush
// or FlagLastBuf through a chain with no payload of its own).
func NewSync() *Buffer {
	return &Buffer{Kind: KindSync, Flags: FlagSync}
}

// Len reports the buffer's byte extent regardless of kind.
func (b *Buffer) Len() int64 {
	switch b.Kind {
	case KindFileRegion:
		return b.FileLast - b.FilePos
	case KindSync:
		return 0
	default:
		return int64(b.Last - b.Pos)
	}
}

// Shadow returns a new KindShadow buffer aliasing b's memory over the same
// [pos:last) window, participating in a shared refcount with every other
// shadow taken from b (or from another shadow of b — shadows chain
// transitively to the same underlying refcount). The first call on a plain
// KindMemory buffer converts b itself into a counted member of the chain
// (counting as reference 1) so the raw buffer is only recycled once every
// shadow, including the caller's own continued use of b, has released.
func (b *Buffer) Shadow() *Buffer {
	r := b.ref
	if r == nil {
		r = &refcount{n: 1, onLastRelease: b.pendingLast} // the original owner counts as one reference
		b.ref = r
		b.Kind = KindShadow
		b.Flags |= FlagMemory
	}

	atomic.AddInt32(&r.n, 1)

	return &Buffer{
		Kind:  KindShadow,
		Flags: b.Flags &^ FlagLastBuf &^ FlagLastInChain,
		Data:  b.Data,
		Pos:   b.Pos,
		Last:  b.Last,
		ref:   r,
	}
}

// OnLastRelease registers the callback run when the shadow chain's last
// outstanding reference is released. A callback registered before the
// first Shadow call is kept and attached to the refcount that call creates.
func (b *Buffer) OnLastRelease(fn func()) {
	if b.ref != nil {
		b.ref.onLastRelease = fn
	} else {
		b.pendingLast = fn
	}
}

// RefCount returns the shadow chain's current outstanding reference count,
// or 0 if b never had Shadow called on it.
func (b *Buffer) RefCount() int32 {
	if b.ref == nil {
		return 0
	}
	return atomic.LoadInt32(&b.ref.n)
}

// Release decrements the shadow chain's refcount exactly once per Buffer
// (idempotent — a second call is a no-op, not a double-decrement), running
// onLastRelease when the count reaches zero. Buffers with no shadow
// refcount (plain memory/file-region/sync buffers with no Shadow() ever
// taken) are no-ops.
func (b *Buffer) Release() {
	if b.ref == nil {
		return
	}

	if !atomic.CompareAndSwapInt32(&b.released, 0, 1) {
		return // already released this view
	}

	if atomic.AddInt32(&b.ref.n, -1) == 0 {
		b.Flags |= FlagLastInChain
		if b.ref.onLastRelease != nil {
			b.ref.onLastRelease()
		}
	}
}
