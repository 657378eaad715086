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
	"net/http"
	"sync"

	liberr "github.com/nabbar/zfproxy/errors"
)

type pool struct {
	mu sync.RWMutex
	m  map[string]Server
	h  http.Handler
}

// NewPool returns an empty bind-address-keyed Server registry, matching
// the teacher's httpserver/pool.Pool shape. handler is the http.Handler
// every Server in the pool is started with.
func NewPool(handler http.Handler) Pool {
	return &pool{m: make(map[string]Server), h: handler}
}

func (p *pool) Store(s Server) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[s.GetBindable()] = s
}

func (p *pool) Get(bindAddress string) Server {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.m[bindAddress]
}

func (p *pool) Walk(fn func(bindAddress string, s Server) bool) {
	p.mu.RLock()
	snap := make(map[string]Server, len(p.m))
	for k, v := range p.m {
		snap[k] = v
	}
	p.mu.RUnlock()

	for k, v := range snap {
		if !fn(k, v) {
			return
		}
	}
}

func (p *pool) StartAll() liberr.Error {
	var firstErr liberr.Error

	p.Walk(func(_ string, s Server) bool {
		if s.IsRunning() {
			return true
		}
		if e := s.Listen(p.h); e != nil && firstErr == nil {
			firstErr = e
		}
		return true
	})

	if firstErr != nil {
		return firstErr
	}
	if p.count() == 0 {
		return ErrorServerNotFound.Error(nil)
	}
	return nil
}

func (p *pool) count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

func (p *pool) ShutdownAll() {
	p.Walk(func(_ string, s Server) bool {
		_ = s.Shutdown()
		return true
	})
}
