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

package reactor

import (
	liberr "github.com/nabbar/zfproxy/errors"
	"github.com/nabbar/zfproxy/arena"
	"github.com/nabbar/zfproxy/rbtree"
)

type slot struct {
	conn Conn
	gen  uint32
	used bool
}

// Pool is the fixed-capacity per-worker connection pool described in
// spec.md §3 "Connection" and §4.1: a free-list threaded through
// pre-allocated slots, plus an LRU of reusable (idle keepalive) connections
// that Drain evicts from when the pool is exhausted.
type Pool struct {
	slots    []slot
	free     []uint32 // stack of free slot indices
	fdIndex  map[int]uint32
	reusable *rbtree.Queue[uint32]

	arenaChunkBytes int
}

// NewPool allocates a pool of exactly capacity connection slots. capacity
// corresponds to the `worker_connections` directive.
func NewPool(capacity int, arenaChunkBytes int) *Pool {
	p := &Pool{
		slots:           make([]slot, capacity),
		free:            make([]uint32, 0, capacity),
		fdIndex:         make(map[int]uint32, capacity),
		reusable:        rbtree.NewQueue[uint32](),
		arenaChunkBytes: arenaChunkBytes,
	}

	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, uint32(i))
	}

	return p
}

// Capacity returns the total number of slots.
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// FreeCount returns the number of currently unused slots.
func (p *Pool) FreeCount() int {
	return len(p.free)
}

// ReusableCount returns the number of connections currently eligible for
// eviction (on the reusable LRU).
func (p *Pool) ReusableCount() int {
	return p.reusable.Len()
}

// AcquireConnection draws a slot for fd, zeroing it except the slot's
// generation counter (which is incremented, invalidating any stale handle
// still referencing the slot's previous occupant — the (slot, generation)
// analogue of spec.md §4.1's instance-flip trick). If the pool is
// exhausted, the caller should invoke Drain and retry before surfacing
// ErrorSlotExhaustion.
func (p *Pool) AcquireConnection(fd int) (*Conn, liberr.Error) {
	if len(p.free) == 0 {
		return nil, liberr.New(uint16(ErrorSlotExhaustion), "")
	}

	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := &p.slots[idx]
	s.gen++
	s.used = true
	s.conn.reset()
	s.conn.handle = Handle{Slot: idx, Gen: s.gen}
	s.conn.Fd = fd
	s.conn.Arena = arena.New(p.arenaChunkBytes)

	p.fdIndex[fd] = idx

	return &s.conn, nil
}

// Validate reports whether h still refers to the slot's current occupant,
// i.e. whether an epoll event carrying this handle is not stale.
func (p *Pool) Validate(h Handle) bool {
	if int(h.Slot) >= len(p.slots) {
		return false
	}

	s := &p.slots[h.Slot]

	return s.used && s.gen == h.Gen
}

// Lookup returns the live connection for h, or nil if h is stale.
func (p *Pool) Lookup(h Handle) *Conn {
	if !p.Validate(h) {
		return nil
	}

	return &p.slots[h.Slot].conn
}

// ReleaseConnection returns the slot to the free list and clears the
// fd→slot index, per spec.md §4.1 `release_connection`.
func (p *Pool) ReleaseConnection(c *Conn) {
	h := c.handle

	if !p.Validate(h) {
		return
	}

	s := &p.slots[h.Slot]

	if s.conn.lru != nil {
		p.reusable.Remove(s.conn.lru)
		s.conn.lru = nil
	}

	delete(p.fdIndex, s.conn.Fd)

	s.used = false
	s.conn.reset()

	p.free = append(p.free, h.Slot)
}

// MarkReusable atomically moves c in/out of the reusable-connection LRU, per
// spec.md §4.1 `mark_reusable`.
func (p *Pool) MarkReusable(c *Conn, yes bool) {
	if !p.Validate(c.handle) {
		return
	}

	if yes {
		c.SetFlag(FlagReusable)
		if c.lru == nil {
			c.lru = p.reusable.PushFront(c.handle.Slot)
		} else {
			p.reusable.MoveToFront(c.lru)
		}
		return
	}

	c.ClearFlag(FlagReusable)
	if c.lru != nil {
		p.reusable.Remove(c.lru)
		c.lru = nil
	}
}

// Drain evicts up to min(32, reusable/8) connections from the tail of the
// reusable LRU by invoking their read handler with FlagClose set, per
// spec.md §3 "When the pool is exhausted, the reactor evicts up to
// min(32, reusable/8) connections...yielding at least one slot". It returns
// the number of connections whose close was invoked. The caller is expected
// to retry AcquireConnection afterward; eviction runs the handler
// synchronously so a slot is free by the time Drain returns if the handler
// cooperates (as every reactor-owned handler must, per spec.md §5).
func (p *Pool) Drain() int {
	budget := p.reusable.Len() / 8
	if budget > 32 {
		budget = 32
	}
	if budget == 0 && p.reusable.Len() > 0 {
		budget = 1
	}

	evicted := 0

	for i := 0; i < budget; i++ {
		n := p.reusable.Back()
		if n == nil {
			break
		}

		slotIdx := n.Value
		s := &p.slots[slotIdx]

		if !s.used {
			p.reusable.Remove(n)
			continue
		}

		c := &s.conn
		c.SetFlag(FlagClose)

		if c.ReadHandler != nil {
			c.ReadHandler(c)
		} else {
			// No handler registered (e.g. unit test harness): emulate the
			// synthetic close directly so the slot still frees up.
			p.ReleaseConnection(c)
		}

		evicted++
	}

	return evicted
}
