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

// Package timerwheel implements the single per-worker rb-tree of pending
// timers described in spec.md §5 "Timers": one tree keyed by monotonic
// millisecond deadline, each event owning at most one timer slot, with a
// lazy-update rule that skips tree churn for re-adds within 300ms of the
// existing deadline.
package timerwheel

import (
	"sync"

	"github.com/nabbar/zfproxy/rbtree"
)

// LazyWindowMillis is the window under which re-adding an already scheduled
// timer is a no-op, per spec.md §3 "Timer" and §8's round-trip law.
const LazyWindowMillis int64 = 300

// Event is anything that can be scheduled; Fire is invoked by Wheel.Expire
// once the event's deadline has passed (the wheel only ever produces
// expirations).
type Event interface {
	Fire()
}

// handle is the per-event bookkeeping the Wheel needs: which tree node (if
// any) currently represents this event, and its last-armed deadline so the
// lazy-update rule has something to compare against.
type handle struct {
	node     *rbtree.Node[Event]
	deadline int64
	seq      uint64
}

// Wheel is a per-worker monotonic-msec keyed timer tree. Every method takes
// the Wheel's own mutex, so concurrent calls are safe; Expire releases it
// before calling Fire.
type Wheel struct {
	mu   sync.Mutex
	tree *rbtree.Tree[Event]
	byEv map[Event]*handle
	seq  uint64
}

// New returns an empty Wheel.
func New() *Wheel {
	return &Wheel{
		tree: rbtree.New[Event](),
		byEv: make(map[Event]*handle),
	}
}

// Add schedules ev to fire at deadlineMillis (monotonic milliseconds, e.g.
// from a monotonic clock source shared by the caller). If ev is already
// scheduled and the new deadline is within LazyWindowMillis of the existing
// one, the call is a no-op — this is the "add_timer lazy update" rule.
func (w *Wheel) Add(ev Event, deadlineMillis int64) {
	if ev == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if h, ok := w.byEv[ev]; ok {
		delta := deadlineMillis - h.deadline
		if delta < 0 {
			delta = -delta
		}
		if delta < LazyWindowMillis {
			return
		}
		w.tree.Delete(h.node)
		h.deadline = deadlineMillis
		h.seq = w.nextSeq()
		h.node = w.tree.Insert(uint64(deadlineMillis), h.seq, ev)
		return
	}

	h := &handle{deadline: deadlineMillis, seq: w.nextSeq()}
	h.node = w.tree.Insert(uint64(deadlineMillis), h.seq, ev)
	w.byEv[ev] = h
}

func (w *Wheel) nextSeq() uint64 {
	w.seq++
	return w.seq
}

// Cancel removes ev's timer slot, if any. Idempotent.
func (w *Wheel) Cancel(ev Event) {
	if ev == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	h, ok := w.byEv[ev]
	if !ok {
		return
	}

	w.tree.Delete(h.node)
	delete(w.byEv, ev)
}

// Len returns the number of currently armed timers.
func (w *Wheel) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.tree.Len()
}

// NextDeadline returns the millisecond deadline of the earliest armed timer
// and true, or (0, false) if no timers are armed. The reactor's event loop
// uses this to size its next poll timeout.
func (w *Wheel) NextDeadline() (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := w.tree.Min()
	if n == nil {
		return 0, false
	}

	return int64(n.Key), true
}

// Expire fires (and removes) every timer whose deadline is <= nowMillis, in
// deadline order, and returns how many fired.
func (w *Wheel) Expire(nowMillis int64) int {
	w.mu.Lock()

	var due []Event

	for n := w.tree.Min(); n != nil && int64(n.Key) <= nowMillis; n = w.tree.Min() {
		due = append(due, n.Value)
		w.tree.Delete(n)
		delete(w.byEv, n.Value)
	}

	w.mu.Unlock()

	for _, ev := range due {
		ev.Fire()
	}

	return len(due)
}
