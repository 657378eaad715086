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

package diskcache

import (
	"encoding/hex"
	"io/fs"
	"path/filepath"
	"regexp"
	"time"

	liberr "github.com/nabbar/zfproxy/errors"
)

// LoaderConfig mirrors the `loader_files`/`loader_sleep`/
// `loader_threshold` zone directives of spec.md §6.
type LoaderConfig struct {
	LoaderFiles     int
	LoaderSleep     time.Duration
	LoaderThreshold time.Duration
}

var tempSuffix = regexp.MustCompile(`\.\d{10}$`)

// Loader walks a zone's on-disk tree once at worker start, per spec.md
// §4.7 paragraph 3, rebuilding index nodes for files the in-memory zone
// doesn't know about yet (a fresh worker always starts cold). It is
// resumable: RunOnce processes up to LoaderFiles entries (or until
// LoaderThreshold wall time elapses) and returns the sleep before the
// next call, exactly mirroring Manager.RunOnce's shape.
type Loader struct {
	Zone  *Zone
	Store *Store
	Cfg   LoaderConfig

	pending []string
	walked  bool
}

// NewLoader returns a Loader for zone z backed by store s.
func NewLoader(z *Zone, s *Store, cfg LoaderConfig) *Loader {
	return &Loader{Zone: z, Store: s, Cfg: cfg}
}

// RunOnce walks the directory tree on its first call (building the
// pending-file list), then drains it LoaderFiles entries at a time on
// this and subsequent calls. Returns the sleep duration, and true once
// the zone's cold flag has been cleared.
func (l *Loader) RunOnce() (time.Duration, bool, liberr.Error) {
	if !l.walked {
		if err := l.walk(); err != nil {
			return l.Cfg.LoaderSleep, false, err
		}
		l.walked = true
	}

	started := time.Now()
	files := 0

	for len(l.pending) > 0 {
		if l.Cfg.LoaderFiles > 0 && files >= l.Cfg.LoaderFiles {
			break
		}
		if l.Cfg.LoaderThreshold > 0 && time.Since(started) >= l.Cfg.LoaderThreshold {
			break
		}

		path := l.pending[0]
		l.pending = l.pending[1:]
		l.loadOne(path)
		files++
	}

	if len(l.pending) == 0 {
		l.Zone.Cold = false
		return 0, true, nil
	}

	if l.Cfg.LoaderSleep > 0 {
		return l.Cfg.LoaderSleep, false, nil
	}
	return time.Millisecond, false, nil
}

func (l *Loader) walk() liberr.Error {
	err := filepath.WalkDir(l.Store.Base, func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if d.IsDir() {
			return nil
		}
		if tempSuffix.MatchString(d.Name()) {
			return nil
		}
		if _, ok := parseHexKey(d.Name()); ok {
			l.pending = append(l.pending, path)
		}
		return nil
	})
	if err != nil {
		return liberr.New(uint16(ErrorLoaderWalk), err.Error())
	}
	return nil
}

// parseHexKey implements "the filename's last 2×key-len characters parse
// as hex" (spec.md §4.7): MD5 keys are 16 bytes, so the last 32 hex
// characters of the basename must decode cleanly.
func parseHexKey(name string) (Key, bool) {
	if len(name) < 32 {
		return Key{}, false
	}
	tail := name[len(name)-32:]
	raw, err := hex.DecodeString(tail)
	if err != nil || len(raw) != 16 {
		return Key{}, false
	}
	var k Key
	copy(k.MD5[:], raw)
	return k, true
}

func (l *Loader) loadOne(path string) {
	k, ok := parseHexKey(filepath.Base(path))
	if !ok {
		return
	}

	key, tie := k.TreeKey()

	l.Zone.mu.Lock()
	defer l.Zone.mu.Unlock()

	if l.Zone.tree.Find(key, tie) != nil {
		return
	}

	e := &IndexNode{Key: k, Exists: true, Expire: 0}
	e.node = l.Zone.tree.Insert(key, tie, e)
	e.lru = l.Zone.lru.PushFront(e)
}
