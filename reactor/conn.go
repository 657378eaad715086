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

// Package reactor implements spec.md C5, the per-worker connection pool and
// accept protocol built on top of the poller (C4). Connections are drawn
// from a fixed-capacity slot array; a (slot, generation) Handle replaces the
// original "instance flip" trick (spec.md §9 DESIGN NOTES row 3) so a stale
// kernel event carrying a recycled fd's old generation is discarded cheaply
// instead of risking a use-after-free.
package reactor

import (
	"net"
	"sync/atomic"

	"github.com/nabbar/zfproxy/arena"
	"github.com/nabbar/zfproxy/rbtree"
)

// Flag is a bitmask of per-connection state flags, spec.md §3 "Connection".
type Flag uint8

const (
	FlagShared Flag = 1 << iota
	FlagReusable
	FlagIdle
	FlagClose
	FlagPipeline
)

// Handle identifies a connection slot at a specific generation. A Handle
// obtained before a slot was recycled will fail Pool.Validate once the slot
// has moved to a new generation, even if the slot index is reused for an
// unrelated fd.
type Handle struct {
	Slot uint32
	Gen  uint32
}

// Conn is the per-connection state spec.md §3 describes: an fd, an arena
// whose lifetime matches the connection, the peer address, and the flags
// governing pooling/reuse/pipelining decisions.
type Conn struct {
	handle Handle

	Fd    int
	Arena arena.Pool
	Local net.Addr
	Peer  net.Addr

	flags uint32 // atomic bitmask of Flag

	lru *rbtree.QNode[uint32] // non-nil while linked into the reusable LRU

	ReadHandler  func(c *Conn)
	WriteHandler func(c *Conn)
}

// Handle returns the (slot, generation) identifying this connection.
func (c *Conn) Handle() Handle {
	return c.handle
}

// SetFlag/ClearFlag/HasFlag give atomic access to the flag bitmask, since a
// connection's flags may be touched both from the reactor's own goroutine
// and, for FlagClose, from a synthetic-close issued during Drain.
func (c *Conn) SetFlag(f Flag) {
	for {
		old := atomic.LoadUint32(&c.flags)
		n := old | uint32(f)
		if atomic.CompareAndSwapUint32(&c.flags, old, n) {
			return
		}
	}
}

func (c *Conn) ClearFlag(f Flag) {
	for {
		old := atomic.LoadUint32(&c.flags)
		n := old &^ uint32(f)
		if atomic.CompareAndSwapUint32(&c.flags, old, n) {
			return
		}
	}
}

func (c *Conn) HasFlag(f Flag) bool {
	return atomic.LoadUint32(&c.flags)&uint32(f) != 0
}

func (c *Conn) reset() {
	c.Fd = -1
	c.Arena = nil
	c.Local = nil
	c.Peer = nil
	c.flags = 0
	c.lru = nil
	c.ReadHandler = nil
	c.WriteHandler = nil
}
