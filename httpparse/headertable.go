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
	"strconv"
	"strings"

	liberr "github.com/nabbar/zfproxy/errors"
)

// headerKind mirrors spec.md §4.2's three handler kinds for the fixed
// header hash table.
type headerKind uint8

const (
	kindLine   headerKind = iota // process_header_line: append to the generic list
	kindUnique                   // process_unique_header_line: 400 on duplicate
	kindSpecial
)

type headerEntry struct {
	kind    headerKind
	handler func(req *Request, value string) liberr.Error
}

// headerTable is the fixed hash table of known header names. Lookups are
// case-insensitive; unknown names fall through to the generic list.
var headerTable = map[string]headerEntry{
	"host":              {kind: kindSpecial, handler: handleHost},
	"connection":        {kind: kindSpecial, handler: handleConnection},
	"transfer-encoding": {kind: kindSpecial, handler: handleTransferEncoding},
	"content-length":    {kind: kindUnique, handler: handleContentLength},
	"user-agent":        {kind: kindSpecial, handler: handleUserAgent},
	"cookie":            {kind: kindLine, handler: handleCookie},
}

// dispatchHeader routes one parsed (name, value) pair through the header
// table, per spec.md §4.2 "Header table".
func dispatchHeader(req *Request, name, value string) liberr.Error {
	lname := strings.ToLower(name)

	if entry, ok := headerTable[lname]; ok {
		return entry.handler(req, value)
	}

	req.Headers.Generic[lname] = append(req.Headers.Generic[lname], value)
	return nil
}

func handleHost(req *Request, value string) liberr.Error {
	h := req.Headers
	if h.hostSeen {
		return liberr.New(uint16(ErrorDuplicateHeader), "duplicate Host header")
	}
	h.hostSeen = true
	h.Host = value
	return nil
}

func handleConnection(req *Request, value string) liberr.Error {
	h := req.Headers
	h.Connection = value

	for _, tok := range strings.Split(value, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "close":
			h.Close = true
		case "keep-alive":
			h.KeepAlive = true
		}
	}

	return nil
}

func handleTransferEncoding(req *Request, value string) liberr.Error {
	h := req.Headers
	h.TransferEncoding = value

	if !strings.EqualFold(strings.TrimSpace(value), "chunked") {
		return liberr.New(uint16(ErrorUnsupportedTransferEncoding), "unsupported transfer-encoding: "+value)
	}
	h.Chunked = true

	if h.contentLenSeen {
		return liberr.New(uint16(ErrorChunkedConflict), "Transfer-Encoding with Content-Length")
	}

	return nil
}

func handleContentLength(req *Request, value string) liberr.Error {
	h := req.Headers
	if h.contentLenSeen {
		return liberr.New(uint16(ErrorDuplicateHeader), "duplicate Content-Length header")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || n < 0 {
		return liberr.New(uint16(ErrorMalformedHeaderLine), "invalid Content-Length: "+value)
	}

	h.contentLenSeen = true
	h.HasContentLength = true
	h.ContentLength = n

	if h.Chunked {
		return liberr.New(uint16(ErrorChunkedConflict), "Content-Length with Transfer-Encoding")
	}

	return nil
}

func handleUserAgent(req *Request, value string) liberr.Error {
	h := req.Headers
	if h.userAgentSeen {
		return liberr.New(uint16(ErrorDuplicateHeader), "duplicate User-Agent header")
	}
	h.userAgentSeen = true
	h.UserAgent = value

	lower := strings.ToLower(value)
	h.IsMSIE = strings.Contains(lower, "msie") || strings.Contains(lower, "trident")
	h.IsBot = strings.Contains(lower, "bot") || strings.Contains(lower, "spider") || strings.Contains(lower, "crawler")

	return nil
}

func handleCookie(req *Request, value string) liberr.Error {
	req.Headers.Cookies = append(req.Headers.Cookies, value)
	return nil
}
