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

package static

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	ginsdk "github.com/gin-gonic/gin"
)

// RegisterRouter mounts this handler's file tree at route on engine (no
// group prefix), forwarding middlewares ahead of the file-serving handler.
func (s *staticHandler) RegisterRouter(engine *ginsdk.Engine, route string, middlewares ...ginsdk.HandlerFunc) {
	s.mount(engine, "", route, middlewares...)
}

// RegisterRouterInGroup mounts this handler's file tree at group+route.
func (s *staticHandler) RegisterRouterInGroup(engine *ginsdk.Engine, route, group string, middlewares ...ginsdk.HandlerFunc) {
	s.mount(engine, group, route, middlewares...)
}

func (s *staticHandler) mount(engine *ginsdk.Engine, group, route string, middlewares ...ginsdk.HandlerFunc) {
	full := group + route

	handlers := make([]ginsdk.HandlerFunc, 0, len(middlewares)+1)
	handlers = append(handlers, middlewares...)
	handlers = append(handlers, s.serveHandler(group, route))

	// The bare route (no wildcard remainder) and the "*filepath" catch-all
	// are registered separately rather than also registering route+"/" as
	// its own static path: gin's tree rejects a static node and a wildcard
	// node sharing the same path segment, and an empty filepath ("/") is
	// already distinguishable inside serveHandler.
	engine.GET(full, handlers...)
	engine.GET(full+"/*filepath", handlers...)
}

// serveHandler resolves one request against index/redirect/specific
// overrides first, then falls back to serving the matched file from the
// embedded tree, spec.md's static-origin content-handler contract.
func (s *staticHandler) serveHandler(group, route string) ginsdk.HandlerFunc {
	return func(c *ginsdk.Context) {
		rel := c.Param("filepath")

		lookupRoute := route
		subPath := ""
		switch rel {
		case "", "/":
			if rel == "/" {
				lookupRoute = route + "/"
			}
		default:
			subPath = strings.TrimPrefix(rel, "/")
		}

		if h := s.GetSpecific(group, lookupRoute); h != nil {
			h(c)
			return
		}

		if dst := s.GetRedirect(group, lookupRoute); dst != "" {
			c.Redirect(http.StatusFound, dst)
			return
		}

		var filePath string
		if subPath == "" {
			filePath = s.GetIndex(group, lookupRoute)
			if filePath == "" {
				c.Status(http.StatusNotFound)
				return
			}
		} else {
			if !s.IsPathSafe(subPath) {
				c.Status(http.StatusForbidden)
				return
			}
			filePath = path.Join(s.root, subPath)
		}

		rc, err := s.Find(filePath)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		defer func() { _ = rc.Close() }()

		if ct := mime.TypeByExtension(path.Ext(filePath)); ct != "" {
			c.Header("Content-Type", ct)
		}
		if s.IsDownload(filePath) {
			c.Header("Content-Disposition", "attachment; filename=\""+path.Base(filePath)+"\"")
		}

		c.Status(http.StatusOK)
		_, _ = io.Copy(c.Writer, rc)
	}
}
