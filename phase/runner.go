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

package phase

import "github.com/nabbar/zfproxy/httpparse"

// Phase enumerates the fixed processing order of spec.md §4.3.
type Phase int

const (
	PostRead Phase = iota
	ServerRewrite
	FindConfig
	Rewrite
	PostRewrite
	PreAccess
	Access
	PostAccess
	PreContent
	Content
	Log
)

// Order is the declared phase sequence, spec.md §4.3.
var Order = []Phase{
	PostRead, ServerRewrite, FindConfig, Rewrite, PostRewrite,
	PreAccess, Access, PostAccess, PreContent, Content, Log,
}

// Result codes a Handler may return, spec.md §4.3. Any value ≥ 200 is
// treated as an HTTP status that triggers finalization (special-response
// territory is owned by httpparse.FinalizeRequest once the runner hands
// rc back to it).
const (
	OK       = httpparse.OK
	Declined = httpparse.Declined
	Again    = httpparse.Again
	Done     = httpparse.Done
)

// Handler is one phase's unit of work. req carries whatever request state
// handlers need to inspect/mutate; the runner itself is state-agnostic
// about request internals.
type Handler func(req *httpparse.Request) int

// Runner holds the handler chain for every phase and a resumable cursor
// so a Handler returning Again can be re-entered at the same position
// once the event it's waiting on fires — spec.md §4.3 "DECLINED means
// next handler; OK typically means jump past this phase; any status ...
// triggers finalization".
type Runner struct {
	handlers map[Phase][]Handler

	// cursor resumes a suspended Run: phase index into Order, and
	// handler index within that phase's slice.
	phaseIdx   int
	handlerIdx int
}

// NewRunner returns an empty Runner ready for Register calls.
func NewRunner() *Runner {
	return &Runner{handlers: make(map[Phase][]Handler)}
}

// Register appends h to p's handler chain, in registration order.
func (r *Runner) Register(p Phase, h Handler) {
	r.handlers[p] = append(r.handlers[p], h)
}

// Reset rewinds the resumption cursor to the start of the phase list, for
// a fresh request or an explicit DECLINED-style full rerun.
func (r *Runner) Reset() {
	r.phaseIdx = 0
	r.handlerIdx = 0
}

// Run advances req through the phase list starting from the resumption
// cursor. It returns:
//   - OK once every phase's handlers have run to completion (caller
//     proceeds to logging/finalization as the OK path),
//   - Again if a handler suspended (the cursor is left pointing at that
//     exact handler so a later Run call resumes there),
//   - any other value (an HTTP status, or Done) as soon as a handler
//     returns it, for the caller to hand to httpparse.FinalizeRequest.
//
// DECLINED is handled internally: it never escapes to the caller, it just
// advances to the next handler in the current phase.
func (r *Runner) Run(req *httpparse.Request) int {
	for r.phaseIdx < len(Order) {
		p := Order[r.phaseIdx]
		chain := r.handlers[p]

		for r.handlerIdx < len(chain) {
			rc := chain[r.handlerIdx](req)

			switch rc {
			case Declined:
				r.handlerIdx++
				continue
			case Again:
				return Again
			case OK:
				// OK jumps past the remainder of this phase.
				r.handlerIdx = len(chain)
			default:
				return rc
			}
		}

		r.phaseIdx++
		r.handlerIdx = 0
	}

	return OK
}
