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
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync/atomic"

	zcfg "github.com/nabbar/zfproxy/config"
	zlog "github.com/nabbar/zfproxy/logger"
	zglue "github.com/nabbar/zfproxy/proxyglue"
	zstatic "github.com/nabbar/zfproxy/static"
)

// frontDoor is the Content-phase decision httpserver.Pool's listeners
// dispatch every request to: try_files against the static origin first
// (spec.md §1's try_files contract, realized by proxyglue.TryFilesRule),
// falling back to round-robin reverse-proxying to an upstream group when
// no candidate resolves, spec.md §5's "Upstream".
type frontDoor struct {
	content zstatic.Static
	rule    zglue.TryFilesRule
	groups  map[string]*upstreamGroup
	first   *upstreamGroup
	log     zlog.Logger
}

// upstreamGroup is one config.UpstreamDirective reduced to a set of
// reverse proxies plus a round-robin cursor.
type upstreamGroup struct {
	proxies []*httputil.ReverseProxy
	next    uint32
}

func (g *upstreamGroup) pick() *httputil.ReverseProxy {
	n := atomic.AddUint32(&g.next, 1)
	return g.proxies[int(n)%len(g.proxies)]
}

// newFrontDoor builds the handler httpserver.New listens with. Every
// upstream directive becomes a named group a request selects by its
// first path segment (e.g. "/app/..." routes to the "app" group),
// falling back to the first configured group when the path carries no
// recognizable prefix.
func newFrontDoor(content zstatic.Static, upstreams []zcfg.UpstreamDirective, log zlog.Logger) http.Handler {
	fd := &frontDoor{
		content: content,
		rule:    zglue.TryFilesRule{Candidates: []string{"$uri", "$uri/index.html"}},
		groups:  make(map[string]*upstreamGroup, len(upstreams)),
		log:     log,
	}

	for _, u := range upstreams {
		g := &upstreamGroup{}
		for _, addr := range u.Addresses {
			g.proxies = append(g.proxies, httputil.NewSingleHostReverseProxy(&url.URL{
				Scheme: "http",
				Host:   addr,
			}))
		}
		if len(g.proxies) > 0 {
			fd.groups[u.Name] = g
			if fd.first == nil {
				fd.first = g
			}
		}
	}

	return fd
}

func (fd *frontDoor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if path, err := fd.rule.Resolve(fd.content, r.URL.Path); err == nil {
		if fd.serveStatic(w, path) {
			return
		}
	}

	if g := fd.selectGroup(r.URL.Path); g != nil {
		g.pick().ServeHTTP(w, r)
		return
	}

	http.NotFound(w, r)
}

// serveStatic streams path out of the static origin. It reports false
// (falling through to the upstream path) on any lookup failure instead
// of writing a response, so a cache miss never forecloses the proxy
// fallback.
func (fd *frontDoor) serveStatic(w http.ResponseWriter, path string) bool {
	f, err := fd.content.Find(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", contentTypeFor(path))
	if _, err := io.Copy(w, f); err != nil {
		fd.log.Warning("streaming %q to client: %s", nil, path, err.Error())
	}
	return true
}

func (fd *frontDoor) selectGroup(path string) *upstreamGroup {
	if len(fd.groups) == 0 {
		return nil
	}

	name := firstSegment(path)
	if g, ok := fd.groups[name]; ok {
		return g
	}

	return fd.first
}

func firstSegment(path string) string {
	path = trimLeadingSlash(path)
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return path
}

func trimLeadingSlash(path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path[1:]
	}
	return path
}

func contentTypeFor(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			switch path[i:] {
			case ".html", ".htm":
				return "text/html; charset=utf-8"
			case ".css":
				return "text/css; charset=utf-8"
			case ".js":
				return "application/javascript; charset=utf-8"
			case ".json":
				return "application/json; charset=utf-8"
			case ".png":
				return "image/png"
			case ".jpg", ".jpeg":
				return "image/jpeg"
			case ".svg":
				return "image/svg+xml"
			}
			break
		}
		if path[i] == '/' {
			break
		}
	}
	return "application/octet-stream"
}
