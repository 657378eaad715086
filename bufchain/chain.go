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

package bufchain

// Chain is a singly linked FIFO of *Buffer, the building block for the
// upstream pipe's {in, out, busy, free} lists (spec.md §3 "Upstream pipe
// state").
type Chain struct {
	head, tail *Buffer
	n          int
}

// Len returns the number of buffers currently linked.
func (c *Chain) Len() int {
	return c.n
}

// Empty reports whether the chain has no buffers.
func (c *Chain) Empty() bool {
	return c.head == nil
}

// PushBack appends b (and whatever b.next already chains to) to the tail.
func (c *Chain) PushBack(b *Buffer) {
	if b == nil {
		return
	}

	if c.tail != nil {
		c.tail.next = b
	} else {
		c.head = b
	}

	last := b
	c.n++
	for last.next != nil {
		last = last.next
		c.n++
	}

	c.tail = last
}

// PopFront removes and returns the head buffer, or nil if empty.
func (c *Chain) PopFront() *Buffer {
	if c.head == nil {
		return nil
	}

	b := c.head
	c.head = b.next
	if c.head == nil {
		c.tail = nil
	}
	b.next = nil
	c.n--

	return b
}

// Front returns the head buffer without removing it, or nil if empty.
func (c *Chain) Front() *Buffer {
	return c.head
}

// Each calls fn for every buffer from head to tail. fn must not mutate the
// chain; use PopFront/PushBack for that.
func (c *Chain) Each(fn func(b *Buffer)) {
	for b := c.head; b != nil; b = b.next {
		fn(b)
	}
}

// TotalLen sums Len() across every linked buffer, i.e. the chain's payload
// size in bytes (the number of buffers is reported by Len).
func (c *Chain) TotalLen() int64 {
	var total int64
	c.Each(func(b *Buffer) { total += b.Len() })
	return total
}

// MoveAllTo appends every buffer in c to dst and empties c, used by the
// pipe's compaction helper to shuffle sent buffers from out to busy, etc.
func (c *Chain) MoveAllTo(dst *Chain) {
	if c.head == nil {
		return
	}

	dst.PushBack(c.head)
	c.head, c.tail, c.n = nil, nil, 0
}
