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

package config

import (
	"strconv"

	libctx "github.com/nabbar/zfproxy/context"
)

// Snapshot keys under which Freeze stores each directive group in the
// frozen context.Config[string], the glossary's "Directive snapshot".
const (
	KeyListen   = "listen"
	KeyCache    = "cache_zone"
	KeyUpstream = "upstream"
	KeyLog      = "log"
	KeyWorkers  = "workers"
)

// Freeze copies d's directive groups into a brand new, independent
// context.Config[string] snapshot: the Go-native analogue of ngx_cycle,
// an immutable value outstanding requests keep referencing across a
// reload until their own generation is drained. Grounded on the
// teacher's context.Config[T] Clone/Merge/Walk shape (see DESIGN.md).
func Freeze(d *Directives) libctx.Config[string] {
	cfg := libctx.New[string](nil)

	cfg.Store(KeyListen, d.Listen)
	cfg.Store(KeyCache, d.Cache)
	cfg.Store(KeyUpstream, d.Upstream)
	cfg.Store(KeyLog, d.Log)
	cfg.Store(KeyWorkers, d.Workers)

	for i, l := range d.Listen {
		cfg.Store(KeyListen+"["+strconv.Itoa(i)+"]", l)
	}
	for i, z := range d.Cache {
		cfg.Store(KeyCache+"["+strconv.Itoa(i)+"]", z)
	}

	return cfg
}

// Listen extracts the Listen directive slice back out of a frozen
// snapshot, for callers that only hold the context.Config[string] (e.g.
// after a reload swap).
func Listen(cfg libctx.Config[string]) []ListenDirective {
	v, ok := cfg.Load(KeyListen)
	if !ok {
		return nil
	}
	l, _ := v.([]ListenDirective)
	return l
}

// Cache extracts the cache zone directive slice back out of a frozen
// snapshot.
func Cache(cfg libctx.Config[string]) []CacheZoneDirective {
	v, ok := cfg.Load(KeyCache)
	if !ok {
		return nil
	}
	c, _ := v.([]CacheZoneDirective)
	return c
}

// Upstream extracts the upstream directive slice back out of a frozen
// snapshot.
func Upstream(cfg libctx.Config[string]) []UpstreamDirective {
	v, ok := cfg.Load(KeyUpstream)
	if !ok {
		return nil
	}
	u, _ := v.([]UpstreamDirective)
	return u
}

// Log extracts the log directive back out of a frozen snapshot.
func Log(cfg libctx.Config[string]) LogDirective {
	v, ok := cfg.Load(KeyLog)
	if !ok {
		return LogDirective{}
	}
	l, _ := v.(LogDirective)
	return l
}
