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

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	zcache "github.com/nabbar/zfproxy/diskcache"

	zcfg "github.com/nabbar/zfproxy/config"
	zerr "github.com/nabbar/zfproxy/errors"
	zhttp "github.com/nabbar/zfproxy/httpserver"
	zlog "github.com/nabbar/zfproxy/logger"
	zstatic "github.com/nabbar/zfproxy/static"

	libctx "github.com/nabbar/zfproxy/context"
)

// zone bundles one cache zone's storage, bookkeeping index and
// background loader/manager schedulers, per spec.md §4.7.
type zone struct {
	store   *zcache.Store
	index   *zcache.Zone
	loader  *zcache.Scheduler
	manager *zcache.Scheduler
}

// server is the composition root: it owns the cache zones, the static
// content handler, the reverse-proxy fallback and the front-door pool.
type server struct {
	log   zlog.Logger
	pool  zhttp.Pool
	zones map[string]*zone
}

// newServer wires every SPEC_FULL.md component a worker needs from a
// frozen directive snapshot: cache zones, the static/try_files content
// handler, upstream reverse-proxying, and the httpserver front door.
func newServer(ctx context.Context, snapshot libctx.Config[string], log zlog.Logger) (*server, zerr.Error) {
	srv := &server{log: log, zones: make(map[string]*zone)}

	for _, z := range zcfg.Cache(snapshot) {
		if e := srv.bringUpZone(ctx, z); e != nil {
			return nil, e
		}
	}

	var roots []string
	if wd, e := os.Getwd(); e == nil {
		roots = []string{wd}
	}
	content := zstatic.New(ctx, os.DirFS("/"), roots...)
	content.RegisterLogger(log)

	handler := newFrontDoor(content, zcfg.Upstream(snapshot), log)

	srv.pool = zhttp.NewPool(handler)

	for i, l := range zcfg.Listen(snapshot) {
		name := fmt.Sprintf("listener-%d", i)
		s := zhttp.New(zhttp.Config{
			Name:              name,
			Listen:            l.Address,
			ReadHeaderTimeout: 10 * time.Second,
		})
		s.SetLogger(func() zlog.Logger { return log })
		srv.pool.Store(s)
	}

	return srv, nil
}

// bringUpZone parses the `levels` directive ("1:2" style), builds the
// Store/Zone pair and starts the loader (once) and manager (periodic)
// schedulers, matching spec.md §4.7 "a fresh worker always starts cold".
func (s *server) bringUpZone(ctx context.Context, d zcfg.CacheZoneDirective) zerr.Error {
	levels := parseLevels(d.Levels)

	store := zcache.NewStore(d.Path, levels)
	idx := zcache.NewZone(d.MaxSize, 0, d.MinFree, 4096, 1)

	z := &zone{store: store, index: idx}

	loader := zcache.NewLoader(idx, store, zcache.LoaderConfig{
		LoaderFiles:     nonZero(d.LoaderFiles, 64),
		LoaderSleep:     nonZeroDur(d.LoaderSleep, 10*time.Millisecond),
		LoaderThreshold: nonZeroDur(d.LoaderThreshold, 200*time.Millisecond),
	})
	z.loader = zcache.NewScheduler(func(now int64) time.Duration {
		d, done, _ := loader.RunOnce()
		if done {
			z.loader.Stop()
		}
		return d
	}, func() int64 { return time.Now().Unix() })

	manager := zcache.NewManager(idx, zcache.ManagerConfig{
		ManagerFiles:     nonZero(d.ManagerFiles, 64),
		ManagerSleep:     nonZeroDur(d.ManagerSleep, time.Second),
		ManagerThreshold: nonZeroDur(d.ManagerThreshold, 200*time.Millisecond),
	})
	z.manager = zcache.NewScheduler(manager.RunOnce, func() int64 { return time.Now().Unix() })

	z.loader.Start(ctx)
	z.manager.Start(ctx)

	s.zones[d.KeysZoneName] = z
	s.log.Info("cache zone %q ready at %s", nil, d.KeysZoneName, d.Path)

	return nil
}

// Serve starts every listener in the pool. Each listener runs its own
// accept loop in a background goroutine (httpserver.Server.Listen), so
// Serve itself returns as soon as they are all launched; the errgroup in
// main blocks on the paired shutdown-signal goroutine instead.
func (s *server) Serve() error {
	if e := s.pool.StartAll(); e != nil {
		return e
	}
	return nil
}

// Shutdown drains every listener in the pool. The zone schedulers are
// tied to ctx passed into newServer and stop on their own once it's
// canceled, so only the front door needs an explicit teardown here.
func (s *server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pool.ShutdownAll()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseLevels(spec string) []int {
	if spec == "" {
		return nil
	}
	out := make([]int, 0, 2)
	n := 0
	has := false
	for _, r := range spec {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			has = true
			continue
		}
		if has {
			out = append(out, n)
		}
		n, has = 0, false
	}
	if has {
		out = append(out, n)
	}
	return out
}

func nonZero(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroDur(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
