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
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	liberr "github.com/nabbar/zfproxy/errors"
	liblog "github.com/nabbar/zfproxy/logger"
	loglvl "github.com/nabbar/zfproxy/logger/level"
)

type server struct {
	cfg Config

	mu  sync.Mutex
	log liblog.FuncLog
	srv *http.Server
	run atomic.Bool
}

// New builds a Server from cfg. handler is attached at Listen time, not
// construction time, so a pool can swap handlers on reload without
// rebuilding every registered Server.
func New(cfg Config) Server {
	return &server{cfg: cfg}
}

func (s *server) GetName() string {
	return s.cfg.Name
}

func (s *server) GetBindable() string {
	return s.cfg.Listen
}

func (s *server) IsTLS() bool {
	return s.cfg.TLSConfig != nil
}

func (s *server) IsRunning() bool {
	return s.run.Load()
}

func (s *server) SetLogger(fct liblog.FuncLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = fct
}

func (s *server) logger() liblog.Logger {
	s.mu.Lock()
	fn := s.log
	s.mu.Unlock()

	if fn == nil {
		return liblog.New(loglvl.ErrorLevel)
	}
	return fn()
}

// Listen configures and starts the underlying *http.Server in a background
// goroutine, negotiating HTTP/2 the way the teacher's server.Listen does:
// TLS-ALPN when a TLS config is set, h2c (HTTP/2 over cleartext, via
// golang.org/x/net/http2/h2c) otherwise, unless DisableHTTP2 opts out.
func (s *server) Listen(handler http.Handler) liberr.Error {
	if !s.cfg.validate() {
		return ErrorParamsInvalid.Error(nil)
	}
	if handler == nil {
		return ErrorParamsInvalid.Error(nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run.Load() {
		return ErrorAlreadyRunning.Error(nil)
	}

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    s.cfg.MaxHeaderBytes,
		TLSConfig:         s.cfg.TLSConfig,
	}

	if !s.cfg.DisableHTTP2 {
		h2cfg := &http2.Server{
			MaxConcurrentStreams:         s.cfg.MaxConcurrentStreams,
			IdleTimeout:                  s.cfg.IdleTimeout,
			MaxUploadBufferPerConnection: s.cfg.MaxUploadBufferPerConnection,
			MaxUploadBufferPerStream:     s.cfg.MaxUploadBufferPerStream,
		}

		if srv.TLSConfig != nil {
			if e := http2.ConfigureServer(srv, h2cfg); e != nil {
				return ErrorHTTP2Configure.Error(e)
			}
		} else {
			srv.Handler = h2c.NewHandler(handler, h2cfg)
		}
	}

	ln, e := net.Listen("tcp", s.cfg.Listen)
	if e != nil {
		return ErrorListen.Error(e)
	}

	s.srv = srv
	s.run.Store(true)

	go func() {
		defer s.run.Store(false)

		var serveErr error
		if srv.TLSConfig != nil {
			serveErr = srv.ServeTLS(ln, "", "")
		} else {
			serveErr = srv.Serve(ln)
		}

		if serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger().Error("http server %q stopped: %v", nil, s.cfg.Name, serveErr)
		}
	}()

	return nil
}

func (s *server) Shutdown() liberr.Error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if e := srv.Shutdown(context.Background()); e != nil {
		return ErrorListen.Error(e)
	}
	return nil
}
