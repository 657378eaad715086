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

// Package httpparse implements spec.md C7: a strictly streaming HTTP/1.x
// request-line and header parser with large-header-buffer escalation, a
// header dispatch table, and the request/connection finalization switch of
// spec.md §4.2.
package httpparse

// RequestLine holds the parsed first line of an HTTP/1.x request. Minor<0
// marks an HTTP/0.9 simple request (no protocol token present at all).
type RequestLine struct {
	Method string
	URI    string
	Major  int
	Minor  int
}

// HTTP09 reports whether the request line carried no protocol token.
func (r RequestLine) HTTP09() bool {
	return r.Major == 0 && r.Minor < 0
}

// Headers is the parsed header set. Known headers land in dedicated fields
// (spec.md §4.2 "Header table": per-header specialized handlers for Host,
// Connection, Transfer-Encoding, User-Agent); everything else accumulates
// in Generic, keyed by lower-cased header name, preserving arrival order
// per value the way process_header_line appends to a linked list.
type Headers struct {
	Host             string
	hostSeen         bool
	Connection       string
	KeepAlive        bool
	Close            bool
	TransferEncoding string
	Chunked          bool
	ContentLength    int64
	HasContentLength bool
	contentLenSeen   bool
	UserAgent        string
	userAgentSeen    bool
	IsBot            bool
	IsMSIE           bool
	Cookies          []string
	Generic          map[string][]string
}

func newHeaders() *Headers {
	return &Headers{Generic: make(map[string][]string)}
}

// Get returns the first value of a generic (not dedicated-field) header,
// matching nginx's "unknown headers go on the generic list" behavior.
func (h *Headers) Get(name string) (string, bool) {
	v, ok := h.Generic[name]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Request is one HTTP/1.x request as produced by the Parser. It carries no
// body bytes — the body is consumed separately by the upstream pipe (C9)
// once phases (C8) have run, per spec.md §4.2/§4.4 data flow.
type Request struct {
	Line    RequestLine
	Headers *Headers

	// RC is the phase/finalization return code driving FinalizeRequest,
	// spec.md §4.2 "A request's rc (return code) drives a finalization
	// switch".
	RC int

	// Subrequests queued against this request via PostSubrequest,
	// drained by the reactor between I/O callbacks (spec.md §4.2
	// "Subrequest posting").
	posted *postedNode

	// Parent is non-nil for a subrequest; ActiveWriter tracks which of
	// {parent, this} currently owns the downstream write handler.
	Parent       *Request
	ActiveWriter bool
	Done         bool
}

func newRequest() *Request {
	return &Request{Headers: newHeaders()}
}

// Return codes for phase handlers and the finalization switch, spec.md
// §4.2/§4.3.
const (
	OK       = 0
	Declined = -5
	Again    = -2
	Done     = -4
	Error    = -1
)

type postedNode struct {
	req  *Request
	next *postedNode
}

// PostSubrequest appends sr to main's posted-request queue. main must be
// the top-level request (posting is always relative to the connection's
// main request, per spec.md's description of main->posted_requests).
func (r *Request) PostSubrequest(sr *Request) {
	n := &postedNode{req: sr}
	if r.posted == nil {
		r.posted = n
		return
	}
	last := r.posted
	for last.next != nil {
		last = last.next
	}
	last.next = n
}

// DrainPosted removes and returns every queued subrequest in FIFO order,
// emptying the queue. Call between I/O callbacks, per spec.md §4.2.
func (r *Request) DrainPosted() []*Request {
	var out []*Request
	for n := r.posted; n != nil; n = n.next {
		out = append(out, n.req)
	}
	r.posted = nil
	return out
}
