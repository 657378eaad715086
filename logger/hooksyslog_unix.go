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

//go:build !windows

package logger

import (
	"log/syslog"
	"sync"

	loglvl "github.com/nabbar/zfproxy/logger/level"
)

// hookSyslog forwards entries to the local syslog daemon, the teacher's
// third console-adjacent hook alongside stdout/file.
type hookSyslog struct {
	mu sync.Mutex
	w  *syslog.Writer
}

// NewHookSyslog dials the local syslog daemon under the given facility/tag.
func NewHookSyslog(tag string) (Hook, error) {
	w, err := syslog.New(syslog.LOG_DAEMON, tag)
	if err != nil {
		return nil, ErrorSyslogDial.Error(err)
	}
	return &hookSyslog{w: w}, nil
}

func (h *hookSyslog) Write(e Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e.Level {
	case loglvl.DebugLevel:
		return h.w.Debug(e.Message)
	case loglvl.InfoLevel:
		return h.w.Info(e.Message)
	case loglvl.WarnLevel:
		return h.w.Warning(e.Message)
	case loglvl.ErrorLevel:
		return h.w.Err(e.Message)
	case loglvl.FatalLevel, loglvl.PanicLevel:
		return h.w.Crit(e.Message)
	default:
		return h.w.Info(e.Message)
	}
}

func (h *hookSyslog) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w.Close()
}
