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

	liberr "github.com/nabbar/zfproxy/errors"
	liblog "github.com/nabbar/zfproxy/logger"
)

// Server is one named, independently startable/stoppable http.Server bound
// to a single address, matching the teacher's httpserver.Server shape.
type Server interface {
	GetName() string
	GetBindable() string
	IsTLS() bool
	IsRunning() bool

	SetLogger(fct liblog.FuncLog)

	Listen(handler http.Handler) liberr.Error
	Shutdown() liberr.Error
}

// Pool is a bind-address-keyed registry of Server, matching the teacher's
// httpserver/pool.Pool shape.
type Pool interface {
	Store(s Server)
	Get(bindAddress string) Server
	Walk(fn func(bindAddress string, s Server) bool)

	StartAll() liberr.Error
	ShutdownAll()
}
