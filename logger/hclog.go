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
	"log"

	"github.com/hashicorp/go-hclog"

	loglvl "github.com/nabbar/zfproxy/logger/level"
)

// _hclog bridges hashicorp/go-hclog's interface onto this package's
// Logger, the same adapter shape the teacher uses to let third-party
// libraries that expect an hclog.Logger (e.g. plugin RPC transports)
// share this process's log sinks instead of opening their own.
type _hclog struct {
	l    FuncLog
	name string
	args []interface{}
}

// NewHCLog wraps fn (a Logger factory, allowing late binding / hot swap)
// as an hclog.Logger.
func NewHCLog(fn FuncLog) hclog.Logger {
	return &_hclog{l: fn}
}

func (o *_hclog) logger() Logger {
	if o.l == nil {
		return nil
	}
	return o.l()
}

func (o *_hclog) Log(level hclog.Level, msg string, args ...interface{}) {
	lg := o.logger()
	if lg == nil {
		return
	}

	switch level {
	case hclog.NoLevel, hclog.Off:
		return
	case hclog.Trace, hclog.Debug:
		lg.Debug(msg, nil, args...)
	case hclog.Info:
		lg.Info(msg, nil, args...)
	case hclog.Warn:
		lg.Warning(msg, nil, args...)
	case hclog.Error:
		lg.Error(msg, nil, args...)
	}
}

func (o *_hclog) Trace(msg string, args ...interface{}) { o.Log(hclog.Trace, msg, args...) }
func (o *_hclog) Debug(msg string, args ...interface{}) { o.Log(hclog.Debug, msg, args...) }
func (o *_hclog) Info(msg string, args ...interface{})  { o.Log(hclog.Info, msg, args...) }
func (o *_hclog) Warn(msg string, args ...interface{})  { o.Log(hclog.Warn, msg, args...) }
func (o *_hclog) Error(msg string, args ...interface{}) { o.Log(hclog.Error, msg, args...) }

func (o *_hclog) IsTrace() bool { return true }
func (o *_hclog) IsDebug() bool { return true }
func (o *_hclog) IsInfo() bool  { return true }
func (o *_hclog) IsWarn() bool  { return true }
func (o *_hclog) IsError() bool { return true }

func (o *_hclog) ImpliedArgs() []interface{} { return o.args }

func (o *_hclog) With(args ...interface{}) hclog.Logger {
	return &_hclog{l: o.l, name: o.name, args: append(append([]interface{}{}, o.args...), args...)}
}

func (o *_hclog) Name() string { return o.name }

func (o *_hclog) Named(name string) hclog.Logger {
	n := name
	if o.name != "" {
		n = o.name + "." + name
	}
	return &_hclog{l: o.l, name: n, args: o.args}
}

func (o *_hclog) ResetNamed(name string) hclog.Logger {
	return &_hclog{l: o.l, name: name, args: o.args}
}

func (o *_hclog) SetLevel(level hclog.Level) {
	lg := o.logger()
	if lg == nil {
		return
	}
	switch level {
	case hclog.Trace, hclog.Debug:
		lg.SetLevel(loglvl.DebugLevel)
	case hclog.Info:
		lg.SetLevel(loglvl.InfoLevel)
	case hclog.Warn:
		lg.SetLevel(loglvl.WarnLevel)
	case hclog.Error:
		lg.SetLevel(loglvl.ErrorLevel)
	}
}

func (o *_hclog) GetLevel() hclog.Level {
	lg := o.logger()
	if lg == nil {
		return hclog.NoLevel
	}
	switch lg.GetLevel() {
	case loglvl.DebugLevel:
		return hclog.Debug
	case loglvl.InfoLevel:
		return hclog.Info
	case loglvl.WarnLevel:
		return hclog.Warn
	case loglvl.ErrorLevel:
		return hclog.Error
	default:
		return hclog.NoLevel
	}
}

func (o *_hclog) StandardLogger(opt *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(o.StandardWriter(opt), "", 0)
}

func (o *_hclog) StandardWriter(opt *hclog.StandardLoggerOptions) io.Writer {
	return hclogWriter{o}
}

type hclogWriter struct{ o *_hclog }

func (w hclogWriter) Write(p []byte) (int, error) {
	w.o.Info(fmt.Sprintf("%s", p))
	return len(p), nil
}
