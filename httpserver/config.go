/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package httpserver

import (
	"crypto/tls"
	"time"
)

// Config describes one listener the pool binds, mirroring the teacher's
// httpserver.ServerConfig field set trimmed to what a zfproxy worker front
// door actually needs (listen address, timeouts, http2 tuning, TLS).
type Config struct {
	Name   string
	Listen string

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	TLSConfig *tls.Config

	// DisableHTTP2 forces plain HTTP/1.x and h2c negotiation off; set
	// for listeners the operator wants to keep off the http2 fast path
	// (rare, kept for parity with the teacher's per-server opt-out).
	DisableHTTP2 bool

	MaxConcurrentStreams        uint32
	MaxUploadBufferPerConnection int32
	MaxUploadBufferPerStream     int32
}

func (c Config) validate() bool {
	return c.Listen != ""
}
