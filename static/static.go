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
	"context"
	"io"
	"io/fs"
	"os"
	"sync"

	ginsdk "github.com/gin-gonic/gin"

	liblog "github.com/nabbar/zfproxy/logger"
)

// Static is the content handler a worker's phase runner (C8) and proxy glue
// (C12, via the FileProbe structural interface) dispatch to for a location
// whose content source is the local/embedded file tree rather than an
// upstream. It bundles file lookup, per-path behavior overrides, path
// security, and gin route registration behind one value.
type Static interface {
	RegisterLogger(log liblog.Logger)

	Has(path string) bool
	Info(path string) (os.FileInfo, error)
	Find(path string) (io.ReadCloser, error)
	List(rootPath string) ([]string, error)
	Map(fct func(pathFile string, inf os.FileInfo) error) error
	Temp(path string) (TempFile, error)
	UseTempForFileSize(size int64)

	SetDownload(path string, enabled bool)
	IsDownload(path string) bool

	SetIndex(group, route, pathFile string)
	GetIndex(group, route string) string
	IsIndex(pathFile string) bool
	IsIndexForRoute(pathFile, group, route string) bool

	SetRedirect(srcGroup, srcRoute, dstGroup, dstRoute string)
	GetRedirect(group, route string) string
	IsRedirect(group, route string) bool

	SetSpecific(group, route string, handler ginsdk.HandlerFunc)
	GetSpecific(group, route string) ginsdk.HandlerFunc

	SetPathSecurity(cfg PathSecurityConfig)
	GetPathSecurity() PathSecurityConfig
	IsPathSafe(path string) bool

	RegisterRouter(engine *ginsdk.Engine, route string, middlewares ...ginsdk.HandlerFunc)
	RegisterRouterInGroup(engine *ginsdk.Engine, route, group string, middlewares ...ginsdk.HandlerFunc)
}

// TempFile is the subset of file/progress.Progress Temp needs to expose:
// an io.ReadCloser the caller can tell apart from a regular handle so it
// knows whether to CloseDelete or just Close.
type TempFile interface {
	io.ReadCloser
	IsTemp() bool
	CloseDelete() error
}

type staticHandler struct {
	ctx  context.Context
	fsys fs.FS
	root string

	log liblog.Logger

	mu       sync.RWMutex
	download map[string]bool
	index    map[string]string            // "group\x00route" -> pathFile
	indexRev map[string]map[string]bool   // pathFile -> set of "group\x00route"
	redirect map[string]string            // "group\x00route" -> "group/route"
	specific map[string]ginsdk.HandlerFunc // "group\x00route" -> handler
	security PathSecurityConfig

	tempThreshold int64
}

// New builds a Static handler over fsys. roots[0], when present, is the
// subtree prefix every route-relative request path is joined against
// before being resolved in fsys (e.g. "testdata" so a route's "/x.html"
// resolves to "testdata/x.html"); Find/Has/Info/List/Map/Temp themselves
// always take a path already relative to fsys, matching the embedded-FS
// convention the teacher's embed-backed packages use throughout.
func New(ctx context.Context, fsys fs.FS, roots ...string) Static {
	root := ""
	if len(roots) > 0 {
		root = roots[0]
	}

	return &staticHandler{
		ctx:      ctx,
		fsys:     fsys,
		root:     root,
		download: make(map[string]bool),
		index:    make(map[string]string),
		indexRev: make(map[string]map[string]bool),
		redirect: make(map[string]string),
		specific: make(map[string]ginsdk.HandlerFunc),
		security: PathSecurityConfig{},
	}
}

func (s *staticHandler) RegisterLogger(log liblog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = log
}

func routeKey(group, route string) string {
	return group + "\x00" + route
}

func (s *staticHandler) SetDownload(path string, enabled bool) {
	if path == "" || !s.Has(path) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.download[path] = enabled
}

func (s *staticHandler) IsDownload(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.download[path]
}

func (s *staticHandler) SetIndex(group, route, pathFile string) {
	if pathFile == "" || !s.Has(pathFile) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := routeKey(group, route)
	s.index[key] = pathFile

	if s.indexRev[pathFile] == nil {
		s.indexRev[pathFile] = make(map[string]bool)
	}
	s.indexRev[pathFile][key] = true
}

func (s *staticHandler) GetIndex(group, route string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index[routeKey(group, route)]
}

func (s *staticHandler) IsIndex(pathFile string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.indexRev[pathFile]) > 0
}

func (s *staticHandler) IsIndexForRoute(pathFile, group, route string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexRev[pathFile][routeKey(group, route)]
}

func (s *staticHandler) SetRedirect(srcGroup, srcRoute, dstGroup, dstRoute string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirect[routeKey(srcGroup, srcRoute)] = dstGroup + dstRoute
}

func (s *staticHandler) GetRedirect(group, route string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.redirect[routeKey(group, route)]
}

func (s *staticHandler) IsRedirect(group, route string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.redirect[routeKey(group, route)]
	return ok
}

func (s *staticHandler) SetSpecific(group, route string, handler ginsdk.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specific[routeKey(group, route)] = handler
}

func (s *staticHandler) GetSpecific(group, route string) ginsdk.HandlerFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.specific[routeKey(group, route)]
}
