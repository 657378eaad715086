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
	"io"

	"github.com/sirupsen/logrus"
)

// hookLogrus fans entries out through a logrus.Logger, the alternate
// structured sink an operator can point at a JSON aggregator instead of
// this package's own plain-text hookstdout/hookfile formatting.
type hookLogrus struct {
	log *logrus.Logger
}

// NewHookLogrus wraps w with a JSON-formatting logrus.Logger.
func NewHookLogrus(w io.Writer) Hook {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	return &hookLogrus{log: l}
}

func (h *hookLogrus) Write(e Entry) error {
	entry := h.log.WithFields(logrus.Fields(e.Fields))
	if e.Data != nil {
		entry = entry.WithField("data", e.Data)
	}
	entry.Log(e.Level.Logrus(), e.Message)
	return nil
}

func (h *hookLogrus) Close() error {
	return nil
}
