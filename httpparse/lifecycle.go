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

package httpparse

// Action is the outcome of running a request's rc through the
// finalization switch, spec.md §4.2 "Request finalization".
type Action int

const (
	ActionCloseNow Action = iota
	ActionRerunPhases
	ActionSpecialResponse
	ActionInstallWriteHandler
	ActionSwapActiveWriter
	ActionPostParentReexamine
	ActionFinalizeConnection
)

// isSpecialResponse reports whether rc is one of the codes that trigger
// the canned special-response generator: the 4xx/5xx family, plus 201 and
// 204 (spec.md §4.2).
func isSpecialResponse(rc int) bool {
	if rc == 201 || rc == 204 {
		return true
	}
	return rc >= 400 && rc < 600
}

// FinalizeRequest runs req.RC through the finalization switch and reports
// which action the caller (the reactor's write handler) must take next.
// Buffered reports whether the request still has unflushed output (the
// output chain's "busy"/"out" lists are non-empty) — the upstream pipe
// (C9) owns that state and passes it in rather than httpparse reaching
// into it.
func FinalizeRequest(req *Request, buffered bool) Action {
	switch {
	case req.RC == Done:
		return ActionCloseNow

	case req.RC == Declined:
		return ActionRerunPhases

	case isSpecialResponse(req.RC):
		return ActionSpecialResponse

	case req.Parent != nil && buffered:
		return ActionInstallWriteHandler

	case req.Parent != nil && req.ActiveWriter:
		return ActionSwapActiveWriter

	case req.Parent != nil:
		req.Done = true
		return ActionPostParentReexamine

	default:
		return ActionFinalizeConnection
	}
}

// ConnDecision is finalize_connection's outcome, spec.md §4.2.
type ConnDecision int

const (
	ConnTerminate ConnDecision = iota
	ConnKeepAlive
	ConnLingeringClose
)

// ConnEligibility carries the facts finalize_connection needs: whether an
// unrecoverable error occurred, whether the connection otherwise qualifies
// for keepalive (request fully read, no Connection: close, under the
// keepalive request-count ceiling), and whether the worker is exiting.
type ConnEligibility struct {
	Error             bool
	KeepAliveEligible bool
	WorkerExiting     bool
}

// FinalizeConnection decides among terminate / keepalive / lingering
// close, spec.md §4.2 "finalize_connection decides among...".
func FinalizeConnection(e ConnEligibility) ConnDecision {
	if e.Error {
		return ConnTerminate
	}
	if e.KeepAliveEligible && !e.WorkerExiting {
		return ConnKeepAlive
	}
	return ConnLingeringClose
}

// KeepAliveTransition resets p for the next request on the same
// connection and returns any bytes already read that belong to that next
// request — the pipelined fast path of spec.md §4.2 "Pipelined data
// already in the buffer fast-paths directly to a new request." The
// request arena itself is destroyed by the caller (arena.Pool.Release);
// httpparse only owns the header-buffer state. The returned bytes are NOT
// retained in the reset buffer — the caller must Feed them back into the
// now-reset parser to continue the fast path, since they may first need
// copying into the connection's fresh request arena.
func KeepAliveTransition(p *Parser) []byte {
	pending := append([]byte(nil), p.Pending()...)
	p.Reset()
	return pending
}
