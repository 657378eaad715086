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

import (
	"bytes"
	"strconv"
	"strings"

	liberr "github.com/nabbar/zfproxy/errors"
)

type phase uint8

const (
	phaseRequestLine phase = iota
	phaseHeaderLine
	phaseHeadersDone
)

// allowedMethods is the request-line method whitelist. CONNECT and TRACE
// are recognized but rejected with 405, per spec.md §6 "CONNECT and
// TRACE -> 405".
var allowedMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true, "DELETE": true,
	"OPTIONS": true, "PATCH": true, "CONNECT": true, "TRACE": true,
}

var disallowedMethods = map[string]bool{"CONNECT": true, "TRACE": true}

// Config sizes the parser's buffer pool, spec.md §4.2 "Buffer escalation".
type Config struct {
	// ClientHeaderBufferSize is the connection buffer used for the
	// request line and the start of the header block.
	ClientHeaderBufferSize int

	// LargeBufferSize and LargeBufferNum bound the on-demand large-
	// header buffer pool: up to LargeBufferNum buffers of
	// LargeBufferSize bytes may be allocated per request.
	LargeBufferSize int
	LargeBufferNum  int
}

// DefaultConfig mirrors nginx's stock client_header_buffer_size /
// large_client_header_buffers defaults.
func DefaultConfig() Config {
	return Config{
		ClientHeaderBufferSize: 1024,
		LargeBufferSize:        8192,
		LargeBufferNum:         4,
	}
}

// Parser is a strictly streaming request-line + header parser: Feed may be
// called with arbitrarily small or large chunks, and a partial line at a
// buffer boundary causes escalation to a larger buffer with the unfinished
// line copied to its base (spec.md §4.2). Unlike the original's raw
// pointers into the connection buffer, this port tracks offsets into the
// active []byte — growing to a new buffer is "rebasing" by resetting the
// offset to zero, with no pointer arithmetic required.
type Parser struct {
	cfg Config

	bufs []([]byte)
	cur  []byte

	filled    int
	lineStart int
	scanFrom  int

	phase phase
	req   *Request
}

// New returns a Parser ready to consume one request's bytes.
func New(cfg Config) *Parser {
	p := &Parser{cfg: cfg, req: newRequest()}
	p.bufs = [][]byte{make([]byte, cfg.ClientHeaderBufferSize)}
	p.cur = p.bufs[0]
	return p
}

// Reset reuses the parser (and its already-allocated connection buffer)
// for the next request on a keepalive connection, per spec.md §4.2
// "Keepalive transition": only the connection buffer survives, any large
// buffers allocated for the previous request are dropped.
func (p *Parser) Reset() {
	p.bufs = p.bufs[:1]
	p.cur = p.bufs[0]
	p.filled = 0
	p.lineStart = 0
	p.scanFrom = 0
	p.phase = phaseRequestLine
	p.req = newRequest()
}

// Pending returns the bytes already consumed by Feed that are not yet part
// of a completed line — e.g. the start of a
// pipelined second request, which should be handed to a fresh Parser/Reset
// fast-path rather than re-read from the socket (spec.md §4.2).
func (p *Parser) Pending() []byte {
	return p.cur[p.lineStart:p.filled]
}

// Feed consumes data incrementally. It returns (request, true, nil) once
// the full request line and header block have been parsed; (nil, false,
// nil) if more data is needed; or a non-nil error (carrying an HTTP status
// via Status(err.GetCode())) on a protocol violation or buffer exhaustion.
func (p *Parser) Feed(data []byte) (*Request, bool, liberr.Error) {
	for len(data) > 0 {
		space := len(p.cur) - p.filled
		if space == 0 {
			if err := p.escalate(); err != nil {
				return nil, false, err
			}
			space = len(p.cur) - p.filled
		}

		n := space
		if n > len(data) {
			n = len(data)
		}
		copy(p.cur[p.filled:p.filled+n], data[:n])
		p.filled += n
		data = data[n:]

		for {
			rel := bytes.IndexByte(p.cur[p.scanFrom:p.filled], '\n')
			if rel < 0 {
				p.scanFrom = p.filled
				break
			}

			idx := p.scanFrom + rel
			line := p.cur[p.lineStart : idx+1]
			p.lineStart = idx + 1
			p.scanFrom = idx + 1

			req, done, err := p.handleLine(line)
			if err != nil {
				return nil, false, err
			}
			if done {
				return req, true, nil
			}
		}
	}

	return nil, false, nil
}

func (p *Parser) escalate() liberr.Error {
	if len(p.bufs)-1 >= p.cfg.LargeBufferNum {
		return p.overflowError()
	}

	next := make([]byte, p.cfg.LargeBufferSize)
	tail := p.cur[p.lineStart:p.filled]
	if len(tail) > len(next) {
		return p.overflowError()
	}

	copy(next, tail)
	p.bufs = append(p.bufs, next)
	p.cur = next
	p.filled = len(tail)
	p.lineStart = 0
	p.scanFrom = 0

	return nil
}

func (p *Parser) overflowError() liberr.Error {
	if p.phase == phaseRequestLine {
		return liberr.New(uint16(ErrorRequestLineTooLong), "request line too long")
	}
	return liberr.New(uint16(ErrorHeaderTooLarge), "cumulative header size too large")
}

func trimCRLF(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line
}

func (p *Parser) handleLine(raw []byte) (*Request, bool, liberr.Error) {
	line := trimCRLF(raw)

	switch p.phase {
	case phaseRequestLine:
		if len(line) == 0 {
			return nil, false, nil // tolerate leading blank lines
		}
		rl, err := parseRequestLine(line)
		if err != nil {
			return nil, false, err
		}
		p.req.Line = rl
		p.phase = phaseHeaderLine
		if rl.HTTP09() {
			p.phase = phaseHeadersDone
			return p.finishHeaders()
		}
		return nil, false, nil

	case phaseHeaderLine:
		if len(line) == 0 {
			p.phase = phaseHeadersDone
			return p.finishHeaders()
		}

		name, value, ok := splitHeaderLine(line)
		if !ok {
			return nil, false, liberr.New(uint16(ErrorMalformedHeaderLine), string(line))
		}

		if err := dispatchHeader(p.req, name, value); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	return nil, false, nil
}

func (p *Parser) finishHeaders() (*Request, bool, liberr.Error) {
	if p.req.Line.Major >= 1 && p.req.Line.Minor >= 1 && p.req.Headers.Host == "" {
		return nil, false, liberr.New(uint16(ErrorMissingHost), "Host header required on HTTP/1.1")
	}
	if disallowedMethods[p.req.Line.Method] {
		return nil, false, liberr.New(uint16(ErrorMethodNotAllowed), p.req.Line.Method+" not allowed")
	}
	return p.req, true, nil
}

func splitHeaderLine(line []byte) (name, value string, ok bool) {
	idx := bytes.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	name = string(bytes.TrimSpace(line[:idx]))
	value = string(bytes.TrimSpace(line[idx+1:]))
	if name == "" {
		return "", "", false
	}
	return name, value, true
}

// parseRequestLine parses "METHOD SP URI [SP HTTP/M.m]". A missing
// protocol token is accepted as HTTP/0.9, spec.md §6 "HTTP/0.9 accepted if
// detected (simple request line)".
func parseRequestLine(line []byte) (RequestLine, liberr.Error) {
	fields := strings.Fields(string(line))

	switch len(fields) {
	case 2:
		if !allowedMethods[fields[0]] {
			return RequestLine{}, liberr.New(uint16(ErrorInvalidMethod), fields[0])
		}
		return RequestLine{Method: fields[0], URI: fields[1], Major: 0, Minor: -1}, nil

	case 3:
		if !allowedMethods[fields[0]] {
			return RequestLine{}, liberr.New(uint16(ErrorInvalidMethod), fields[0])
		}
		major, minor, err := parseProtocol(fields[2])
		if err != nil {
			return RequestLine{}, err
		}
		return RequestLine{Method: fields[0], URI: fields[1], Major: major, Minor: minor}, nil

	default:
		return RequestLine{}, liberr.New(uint16(ErrorMalformedRequestLine), string(line))
	}
}

func parseProtocol(tok string) (int, int, liberr.Error) {
	const prefix = "HTTP/"
	if !strings.HasPrefix(tok, prefix) {
		return 0, 0, liberr.New(uint16(ErrorMalformedRequestLine), tok)
	}

	rest := strings.TrimPrefix(tok, prefix)
	parts := strings.SplitN(rest, ".", 2)
	if len(parts) != 2 {
		return 0, 0, liberr.New(uint16(ErrorMalformedRequestLine), tok)
	}

	major, e1 := strconv.Atoi(parts[0])
	minor, e2 := strconv.Atoi(parts[1])
	if e1 != nil || e2 != nil {
		return 0, 0, liberr.New(uint16(ErrorMalformedRequestLine), tok)
	}

	return major, minor, nil
}
