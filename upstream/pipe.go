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

package upstream

import (
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/nabbar/zfproxy/bufchain"
)

// Result is the pump's/write_to_downstream's outcome, spec.md §4.4.
type Result int

const (
	ResultOK Result = iota
	ResultBusy
	ResultAbort
	ResultAgain
)

// Reader is the non-blocking upstream source: Read returns (0,
// ErrWouldBlock) rather than blocking when no data is currently
// available, mirroring the reactor's non-blocking-fd discipline
// (spec.md §5 "Handlers must never block synchronously on I/O").
type Reader interface {
	Read(p []byte) (int, error)
}

// Writer is the non-blocking downstream sink, same WOULDBLOCK contract.
type Writer interface {
	Write(p []byte) (int, error)
}

// Pipe threads bytes from Upstream to Downstream through the {in, out,
// busy, free} buffer chains of spec.md §4.4, recycling raw buffers via
// Free once fully flushed.
type Pipe struct {
	Upstream   Reader
	Downstream Writer

	In, Out, Busy, Free *bufchain.Chain

	BufSize  int
	MaxBufs  int
	BusySize int64

	allocated int

	// Limiter replaces the original's manual
	// "limit_rate*(now-start+1)-bytes_read" accounting with a
	// golang.org/x/time/rate token bucket (SPEC_FULL.md §4.4
	// substitution) — nil means unlimited.
	Limiter *rate.Limiter

	// CachingEnabled mirrors "if caching is enabled ... spill the
	// current in-memory buffers to the temp file and reuse" — when
	// true, readUpstream spills to Temp instead of blocking once the
	// buffer budget (MaxBufs) is exhausted and downstream isn't ready
	// to drain.
	CachingEnabled  bool
	Temp            *TempFile
	MaxTempFileSize int64

	// DownstreamReady is set by the caller before Pump when the
	// downstream write event is ready, letting readUpstream prefer
	// draining downstream over growing memory.
	DownstreamReady bool

	// Threaded enables the thread-offload seam documented on
	// spillOldestOut; Writing flips true for the duration of an
	// offloaded spill write.
	Threaded bool
	Writing  bool

	// RateDeferral is set by readUpstream when the rate limiter defers
	// a read; the caller (reactor) arms a timer for this duration and
	// re-enters Pump on expiry, per spec.md §4.4 "a negative result
	// defers the read with a timer" — the pipe only reports the
	// duration, it does not own a timer itself.
	RateDeferral time.Duration

	UpstreamEOF    bool
	DownstreamDone bool
}

// NewPipe returns a Pipe with its four chains initialized.
func NewPipe(up Reader, down Writer, bufSize, maxBufs int, busySize int64) *Pipe {
	return &Pipe{
		Upstream: up, Downstream: down,
		In: &bufchain.Chain{}, Out: &bufchain.Chain{}, Busy: &bufchain.Chain{}, Free: &bufchain.Chain{},
		BufSize: bufSize, MaxBufs: maxBufs, BusySize: busySize,
	}
}

// Pump runs the core loop of spec.md §4.4: write whatever is pending,
// then read more from upstream until neither progress nor a blocked-on-
// downstream signal remains.
func (p *Pipe) Pump(doWrite bool) (Result, error) {
	for {
		if doWrite {
			res, err := p.writeToDownstream()
			if err != nil {
				return ResultAbort, err
			}
			if res == ResultBusy {
				return ResultOK, nil
			}
		}

		if p.Writing {
			return ResultAgain, nil
		}

		n, blocked, err := p.readUpstream()
		if err == ErrAbort {
			return ResultAbort, err
		}
		if err != nil {
			return ResultAbort, err
		}

		if n == 0 && !blocked {
			break
		}
		doWrite = true
	}

	return ResultOK, nil
}

// acquireBuffer returns a writable raw buffer in the priority order of
// spec.md §4.4: a free recycled buffer; else a freshly allocated one up
// to MaxBufs; else nil (caller decides blocked-on-downstream vs spill).
func (p *Pipe) acquireBuffer() []byte {
	if !p.Free.Empty() {
		b := p.Free.PopFront()
		return b.Data[:cap(b.Data)]
	}
	if p.allocated < p.MaxBufs {
		p.allocated++
		return make([]byte, p.BufSize)
	}
	return nil
}

func (p *Pipe) recycle(b *bufchain.Buffer) {
	b.Pos, b.Last = 0, 0
	p.Free.PushBack(b)
}

// readUpstream implements spec.md §4.4 "read_upstream".
func (p *Pipe) readUpstream() (n int, blocked bool, err error) {
	raw := p.acquireBuffer()
	if raw == nil {
		if p.DownstreamReady {
			return 0, true, nil
		}
		if p.CachingEnabled && p.spillRoom() > 0 {
			if err := p.spillOldestOut(); err != nil {
				return 0, false, err
			}
			return 0, true, nil
		}
		return 0, false, nil
	}

	want := len(raw)
	if p.Limiter != nil {
		allowed, wait := p.reserveRead(want)
		if allowed == 0 {
			// Deferred, not blocked: unlike the DownstreamReady/spill
			// cases above, nothing else can make progress until the
			// timer the caller arms from RateDeferral fires, so Pump
			// must break out of its loop rather than spin on it.
			p.recycle(bufchain.NewMemory(raw, 0, 0))
			p.RateDeferral = wait
			return 0, false, nil
		}
		raw = raw[:allowed]
	}

	read, rerr := p.Upstream.Read(raw)
	if rerr == ErrWouldBlock {
		p.recycle(bufchain.NewMemory(raw, 0, 0))
		return 0, false, nil
	}
	if rerr != nil && rerr != io.EOF {
		return 0, false, ErrAbort
	}

	if read > 0 {
		p.In.PushBack(bufchain.NewMemory(raw, 0, read))
		p.In.MoveAllTo(p.Out)
	} else if read < len(raw) {
		p.recycle(bufchain.NewMemory(raw, 0, 0))
	}

	if rerr == io.EOF {
		p.UpstreamEOF = true
	}

	return read, false, nil
}

// reserveRead asks the limiter for n bytes' worth of tokens right now.
// If the bucket can't satisfy it immediately, the reservation is
// canceled and the caller is told how long to wait — the "negative
// result defers the read with a timer" behavior of spec.md §4.4,
// reimplemented atop a standard token bucket instead of the original's
// manual linear formula.
func (p *Pipe) reserveRead(n int) (allowed int, wait time.Duration) {
	if burst := p.Limiter.Burst(); burst > 0 && n > burst {
		n = burst
	}
	r := p.Limiter.ReserveN(time.Now(), n)
	if !r.OK() {
		return 0, time.Second
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return 0, d
	}
	return n, 0
}

// writeToDownstream implements spec.md §4.4 "write_to_downstream": walks
// Out up to BusySize bytes in flight, flushing fully-written buffers to
// Free for recycling. Partially written buffers stay at the front of Out
// for the next call.
func (p *Pipe) writeToDownstream() (Result, error) {
	var sent int64

	for !p.Out.Empty() && sent < p.BusySize {
		b := p.Out.Front()
		pending := b.Data[b.Pos:b.Last]

		n, err := p.Downstream.Write(pending)
		if err == ErrWouldBlock {
			return ResultBusy, nil
		}
		if err != nil {
			return ResultAbort, err
		}

		b.Pos += n
		sent += int64(n)

		if b.Pos >= b.Last {
			p.Out.PopFront()
			p.recycle(b)
		} else {
			break // partial write; stop, the buffer stays at the front
		}
	}

	if p.UpstreamEOF && p.Out.Empty() {
		for !p.Out.Empty() {
			b := p.Out.PopFront()
			b.Flags &^= bufchain.FlagRecycled
			p.recycle(b)
		}
		for !p.In.Empty() {
			b := p.In.PopFront()
			b.Flags &^= bufchain.FlagRecycled
			p.recycle(b)
		}
		p.DownstreamDone = true
	}

	if p.Out.Empty() {
		return ResultOK, nil
	}
	return ResultBusy, nil
}
