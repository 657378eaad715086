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

package logger

import (
	"fmt"
	"os"
	"sync"
)

// hookFile appends entries to a plain log file, rotated externally
// (logrotate, the cache zone's own disk-pressure signal, ...) — the
// teacher's hookfile kept only the append-and-flush core, since the
// heavier aggregation/compaction machinery has no SPEC_FULL.md consumer.
type hookFile struct {
	mu sync.Mutex
	f  *os.File
}

// NewHookFile opens (creating if needed) path in append mode for the
// access/error log destination an operator points a worker process at.
func NewHookFile(path string) (Hook, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, ErrorOpenFile.Error(err)
	}
	return &hookFile{f: f}, nil
}

func (h *hookFile) Write(e Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	line := fmt.Sprintf("[%s] %s", e.Level.Code(), e.Message)
	if e.Data != nil {
		line += fmt.Sprintf(" data=%v", e.Data)
	}
	for k, v := range e.Fields {
		line += fmt.Sprintf(" %s=%v", k, v)
	}

	_, err := fmt.Fprintln(h.f, line)
	return err
}

func (h *hookFile) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.f.Close()
}
