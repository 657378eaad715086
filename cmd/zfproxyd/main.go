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

// Command zfproxyd is the composition root: it loads a directive file
// (config.Directives), freezes it into a context.Config[string] snapshot,
// wires the disk cache zones (diskcache), the static origin with its
// try_files rule (static, proxyglue) and the front door (httpserver), then
// serves until told to stop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	zconfig "github.com/nabbar/zfproxy/config"
	zlog "github.com/nabbar/zfproxy/logger"
	loglvl "github.com/nabbar/zfproxy/logger/level"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "zfproxy.yaml", "path to the directive file")
	flag.Parse()

	directives, err := zconfig.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "zfproxyd: loading config:", err.Error())
		os.Exit(1)
	}

	log := buildLogger(directives.Log)
	snapshot := zconfig.Freeze(directives)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, buildErr := newServer(ctx, snapshot, log)
	if buildErr != nil {
		log.Fatal("building server: %s", nil, buildErr.Error())
		os.Exit(1)
	}

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		return srv.Serve()
	})

	grp.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, draining connections", nil)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		return srv.Shutdown(shutdownCtx)
	})

	if e := grp.Wait(); e != nil && e != context.Canceled {
		log.Error("worker group exited with error: %s", nil, e.Error())
		os.Exit(1)
	}
}

func buildLogger(d zconfig.LogDirective) zlog.Logger {
	lvl, ok := parseLevel(d.Level)
	if !ok {
		lvl = loglvl.InfoLevel
	}

	l := zlog.New(lvl)

	if d.Stdout || (!d.Stdout && d.FilePath == "" && d.SyslogTag == "") {
		_ = l.AddHook(zlog.NewHookStdout(d.StdoutColor))
	}

	if d.FilePath != "" {
		if h, e := zlog.NewHookFile(d.FilePath); e == nil {
			_ = l.AddHook(h)
		}
	}

	if d.SyslogTag != "" {
		if h, e := zlog.NewHookSyslog(d.SyslogTag); e == nil {
			_ = l.AddHook(h)
		}
	}

	return l
}

func parseLevel(s string) (loglvl.Level, bool) {
	if s == "" {
		return loglvl.InfoLevel, false
	}
	lvl := loglvl.Parse(s)
	return lvl, true
}
