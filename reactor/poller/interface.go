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

// Package poller wraps the kernel readiness notification facility (epoll on
// Linux) behind a small, portable interface: register/modify/remove a file
// descriptor's interest set, and block for a batch of ready events. This is
// spec.md C4, "Event demultiplexer", the leaf the connection reactor (C5) is
// built on.
package poller

import "time"

// Interest is a bitmask of readiness conditions to watch for.
type Interest uint32

const (
	// Readable watches for incoming data or a pending accept.
	Readable Interest = 1 << iota
	// Writable watches for buffer space becoming available.
	Writable
	// EdgeTriggered requests edge- rather than level-triggered notification,
	// used for the exclusive-accept re-arm cadence in spec.md §4.1.
	EdgeTriggered
)

// Event reports one fd's readiness after Wait returns.
type Event struct {
	// Data is the opaque value supplied at Add/Modify time — the reactor
	// stores a packed (slot, generation) connection handle here so a stale
	// event against a recycled fd can be detected and discarded cheaply.
	Data uint64

	Readable bool
	Writable bool
	HangUp   bool
	Err      bool
}

// Poller is the portable facade over the kernel demultiplexer.
type Poller interface {
	// Add registers fd with the given interest set and opaque userdata.
	Add(fd int, interest Interest, data uint64) error

	// Modify changes fd's interest set / userdata without removing it.
	Modify(fd int, interest Interest, data uint64) error

	// Remove unregisters fd. It is not an error to remove an fd that was
	// already closed out from under the poller by the OS.
	Remove(fd int) error

	// Wait blocks until at least one registered fd is ready, the timeout
	// elapses, or the poller is closed, appending ready events to dst and
	// returning the extended slice. A nil timeout blocks indefinitely.
	Wait(dst []Event, timeout *time.Duration) ([]Event, error)

	// Close releases the underlying kernel resource. Subsequent calls
	// return ErrorClosed.
	Close() error
}
