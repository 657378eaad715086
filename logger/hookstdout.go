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
	"io"
	"sync"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"

	loglvl "github.com/nabbar/zfproxy/logger/level"
)

// hookStdout is the teacher's console sink, kept for local/dev runs: it
// colorizes each level's prefix via fatih/color and writes through
// go-colorable so ANSI codes render correctly on Windows consoles too.
type hookStdout struct {
	mu  sync.Mutex
	out io.Writer
	clr bool
}

// NewHookStdout writes colorized entries to stdout. Set color=false for
// plain text (e.g. when stdout is redirected to a file operators will grep).
func NewHookStdout(clr bool) Hook {
	return &hookStdout{
		out: colorable.NewColorableStdout(),
		clr: clr,
	}
}

func levelColor(lvl loglvl.Level) *color.Color {
	switch lvl {
	case loglvl.DebugLevel:
		return color.New(color.FgCyan)
	case loglvl.InfoLevel:
		return color.New(color.FgGreen)
	case loglvl.WarnLevel:
		return color.New(color.FgYellow)
	case loglvl.ErrorLevel:
		return color.New(color.FgRed)
	case loglvl.FatalLevel, loglvl.PanicLevel:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.Reset)
	}
}

func (h *hookStdout) Write(e Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	prefix := "[" + e.Level.Code() + "]"
	if h.clr {
		prefix = levelColor(e.Level).Sprint(prefix)
	}

	line := fmt.Sprintf("%s %s", prefix, e.Message)
	if e.Data != nil {
		line += fmt.Sprintf(" data=%v", e.Data)
	}
	for k, v := range e.Fields {
		line += fmt.Sprintf(" %s=%v", k, v)
	}

	_, err := fmt.Fprintln(h.out, line)
	return err
}

func (h *hookStdout) Close() error {
	return nil
}
