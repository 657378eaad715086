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
	jww "github.com/spf13/jwalterweatherman"

	loglvl "github.com/nabbar/zfproxy/logger/level"
)

// SetSPF13Level points log's threshold outputs at this Logger so
// third-party code still emitting through jwalterweatherman (viper's
// transitive default) lands in the same sinks, at the given floor.
func SetSPF13Level(l Logger, lvl loglvl.Level, nb *jww.Notepad) {
	if l == nil || nb == nil {
		return
	}

	w := &jwwWriter{l: l}
	nb.SetLogThreshold(jwwThreshold(lvl))
	nb.SetStdoutThreshold(jwwThreshold(lvl))
	nb.SetLogOutput(w)
}

func jwwThreshold(lvl loglvl.Level) jww.Threshold {
	switch lvl {
	case loglvl.DebugLevel:
		return jww.LevelTrace
	case loglvl.InfoLevel:
		return jww.LevelInfo
	case loglvl.WarnLevel:
		return jww.LevelWarn
	case loglvl.ErrorLevel:
		return jww.LevelError
	case loglvl.FatalLevel, loglvl.PanicLevel:
		return jww.LevelCritical
	default:
		return jww.LevelInfo
	}
}

type jwwWriter struct{ l Logger }

func (w *jwwWriter) Write(p []byte) (int, error) {
	w.l.Info(string(p), nil)
	return len(p), nil
}
