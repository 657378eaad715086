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

import "sync"

// MutexState is one state of the per-worker accept mutex state machine
// described in spec.md §4.1.
type MutexState int

const (
	StateIdle MutexState = iota
	StateHeld
	StateAccepting
)

// AcceptMutex arbitrates which worker is allowed to accept new connections
// when listeners are shared rather than cloned per-worker (reuseport). In
// this Go port workers share an address space (spec.md §5 / SPEC_FULL.md
// §5), so the "shared-memory lock" becomes a plain sync.Mutex — documented
// as an intentional simplification, not a behavior change, since the
// original's only requirement is mutual exclusion among workers.
type AcceptMutex struct {
	mu    sync.Mutex
	held  bool
	state MutexState

	connectionN     int
	acceptDisabled  int
	acceptedSinceArm int
}

// NewAcceptMutex configures the mutex for a worker with the given total
// connection-slot count (`worker_connections`), used to compute
// accept_disabled.
func NewAcceptMutex(connectionN int) *AcceptMutex {
	return &AcceptMutex{connectionN: connectionN, state: StateIdle}
}

// RecomputeAcceptDisabled updates accept_disabled = connection_n/8 -
// free_connection_n, per spec.md §4.1. A positive value means the worker
// should abstain from locking this cycle.
func (m *AcceptMutex) RecomputeAcceptDisabled(freeConnectionN int) {
	m.acceptDisabled = m.connectionN/8 - freeConnectionN
}

// ShouldAbstain reports whether the worker should skip try-lock this cycle,
// decrementing the abstention counter by one as it does (spec.md §4.1:
// "while positive the worker abstains...decrementing by 1 per event cycle").
func (m *AcceptMutex) ShouldAbstain() bool {
	if m.acceptDisabled <= 0 {
		return false
	}

	m.acceptDisabled--

	return true
}

// TryLock attempts IDLE -> HELD. Returns true if this worker now holds the
// mutex and should enable accept events.
func (m *AcceptMutex) TryLock() bool {
	m.mu.Lock()
	if m.held {
		m.mu.Unlock()
		m.state = StateIdle
		return false
	}

	m.held = true
	m.mu.Unlock()

	m.state = StateHeld
	m.acceptedSinceArm = 0

	return true
}

// EnableAccepting transitions HELD -> ACCEPTING once accept events are
// actually armed on the listen sockets.
func (m *AcceptMutex) EnableAccepting() {
	if m.state == StateHeld {
		m.state = StateAccepting
	}
}

// OnAccept records an accepted connection; every 16 accepts (spec.md §4.1
// "Edge-triggered exclusive accept...periodically re-armed every 16
// accepted connections") the caller should re-arm its edge-triggered accept
// registration. OnAccept returns true when a re-arm is due.
func (m *AcceptMutex) OnAccept() (rearmDue bool) {
	m.acceptedSinceArm++
	if m.acceptedSinceArm >= 16 {
		m.acceptedSinceArm = 0
		return true
	}
	return false
}

// Unlock releases the mutex and transitions back to IDLE. It does not
// touch the accept event registration.
func (m *AcceptMutex) Unlock() {
	m.mu.Lock()
	m.held = false
	m.mu.Unlock()

	m.state = StateIdle
}

// State returns the current MutexState, for tests/diagnostics.
func (m *AcceptMutex) State() MutexState {
	return m.state
}
