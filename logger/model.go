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
	"context"
	"fmt"
	"sync"

	loglvl "github.com/nabbar/zfproxy/logger/level"
)

// Hook receives every entry accepted by the logger's level filter and is
// responsible for delivering it to one destination (console, file,
// syslog, ...). Write must be safe for concurrent use.
type Hook interface {
	Write(entry Entry) error
	Close() error
}

// Entry is one structured log record. Fields carries caller-supplied
// key/value context (e.g. request id, upstream name) alongside the
// logger's own default fields.
type Entry struct {
	Level   loglvl.Level
	Message string
	Data    interface{}
	Fields  map[string]interface{}
}

// FuncLog returns a Logger instance, used for late-bound dependency
// injection (e.g. bridging into hclog before the real logger exists).
type FuncLog func() Logger

// Logger is the leveled logging facade every component (reactor, phase
// runner, upstream pipe, disk cache, proxy glue, static handler) logs
// through. A Logger fans each accepted entry out to every registered Hook.
type Logger interface {
	SetLevel(lvl loglvl.Level)
	GetLevel() loglvl.Level

	SetFields(fields map[string]interface{})
	GetFields() map[string]interface{}

	AddHook(h Hook) error

	Debug(message string, data interface{}, args ...interface{})
	Info(message string, data interface{}, args ...interface{})
	Warning(message string, data interface{}, args ...interface{})
	Error(message string, data interface{}, args ...interface{})
	Fatal(message string, data interface{}, args ...interface{})
	Panic(message string, data interface{}, args ...interface{})

	// LogErrorCtxf logs a formatted error-level message carrying ctx's
	// deadline/cancellation state as a field, matching the
	// ErrorLevel.LogErrorCtxf shape components are written against.
	LogErrorCtxf(ctx context.Context, format string, args ...interface{})

	Clone() Logger
}

type logModel struct {
	mu     sync.RWMutex
	level  loglvl.Level
	fields map[string]interface{}
	hooks  []Hook
}

// New builds a Logger at the given minimal level with no hooks attached;
// callers add hookstdout/hookfile/hooksyslog/hooklogrus (or a custom Hook)
// via AddHook.
func New(lvl loglvl.Level) Logger {
	return &logModel{
		level:  lvl,
		fields: make(map[string]interface{}),
	}
}

func (l *logModel) SetLevel(lvl loglvl.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lvl
}

func (l *logModel) GetLevel() loglvl.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *logModel) SetFields(fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fields = fields
}

func (l *logModel) GetFields() map[string]interface{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fields
}

func (l *logModel) AddHook(h Hook) error {
	if h == nil {
		return ErrorNilHook.Error(nil)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, h)
	return nil
}

func (l *logModel) entry(lvl loglvl.Level, message string, data interface{}, args ...interface{}) Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}

	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}

	return Entry{Level: lvl, Message: message, Data: data, Fields: fields}
}

func (l *logModel) dispatch(e Entry) {
	l.mu.RLock()
	if e.Level > l.level {
		l.mu.RUnlock()
		return
	}
	hooks := make([]Hook, len(l.hooks))
	copy(hooks, l.hooks)
	l.mu.RUnlock()

	for _, h := range hooks {
		_ = h.Write(e)
	}
}

func (l *logModel) Debug(message string, data interface{}, args ...interface{}) {
	l.dispatch(l.entry(loglvl.DebugLevel, message, data, args...))
}

func (l *logModel) Info(message string, data interface{}, args ...interface{}) {
	l.dispatch(l.entry(loglvl.InfoLevel, message, data, args...))
}

func (l *logModel) Warning(message string, data interface{}, args ...interface{}) {
	l.dispatch(l.entry(loglvl.WarnLevel, message, data, args...))
}

func (l *logModel) Error(message string, data interface{}, args ...interface{}) {
	l.dispatch(l.entry(loglvl.ErrorLevel, message, data, args...))
}

func (l *logModel) Fatal(message string, data interface{}, args ...interface{}) {
	l.dispatch(l.entry(loglvl.FatalLevel, message, data, args...))
}

func (l *logModel) Panic(message string, data interface{}, args ...interface{}) {
	l.dispatch(l.entry(loglvl.PanicLevel, message, data, args...))
}

func (l *logModel) LogErrorCtxf(ctx context.Context, format string, args ...interface{}) {
	var data interface{}
	if err := ctx.Err(); err != nil {
		data = err
	}
	l.dispatch(l.entry(loglvl.ErrorLevel, format, data, args...))
}

func (l *logModel) Clone() Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	hooks := make([]Hook, len(l.hooks))
	copy(hooks, l.hooks)

	return &logModel{
		level:  l.level,
		fields: fields,
		hooks:  hooks,
	}
}
