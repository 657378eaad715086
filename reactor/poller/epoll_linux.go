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

//go:build linux

package poller

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/zfproxy/errors"
)

type epollPoller struct {
	mu     sync.Mutex
	fd     int
	closed bool
}

// New returns a Poller backed by epoll_create1/epoll_ctl/epoll_wait.
func New() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, liberr.New(uint16(ErrorCreate), err.Error())
	}

	return &epollPoller{fd: fd}, nil
}

func toEpollEvents(i Interest) uint32 {
	var ev uint32

	if i&Readable != 0 {
		ev |= unix.EPOLLIN
	}
	if i&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	if i&EdgeTriggered != 0 {
		ev |= unix.EPOLLET
	}

	ev |= unix.EPOLLRDHUP

	return ev
}

func (p *epollPoller) Add(fd int, interest Interest, data uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return liberr.New(uint16(ErrorClosed), "")
	}

	ev := &unix.EpollEvent{Events: toEpollEvents(interest)}
	setEpollData(ev, data)

	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return liberr.New(uint16(ErrorRegister), err.Error())
	}

	return nil
}

func (p *epollPoller) Modify(fd int, interest Interest, data uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return liberr.New(uint16(ErrorClosed), "")
	}

	ev := &unix.EpollEvent{Events: toEpollEvents(interest)}
	setEpollData(ev, data)

	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		return liberr.New(uint16(ErrorModify), err.Error())
	}

	return nil
}

func (p *epollPoller) Remove(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return liberr.New(uint16(ErrorClosed), "")
	}

	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		// Already-closed fds are routinely removed out from under us by the
		// kernel; EBADF here is expected and not surfaced as an error.
		if err == unix.EBADF || err == unix.ENOENT {
			return nil
		}
		return liberr.New(uint16(ErrorRemove), err.Error())
	}

	return nil
}

func (p *epollPoller) Wait(dst []Event, timeout *time.Duration) ([]Event, error) {
	p.mu.Lock()
	fd := p.fd
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return dst, liberr.New(uint16(ErrorClosed), "")
	}

	ms := -1
	if timeout != nil {
		ms = int(timeout.Milliseconds())
		if ms < 0 {
			ms = 0
		}
	}

	raw := make([]unix.EpollEvent, 128)

	n, err := unix.EpollWait(fd, raw, ms)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, liberr.New(uint16(ErrorWait), err.Error())
	}

	for i := 0; i < n; i++ {
		e := raw[i]
		dst = append(dst, Event{
			Data:     epollData(&e),
			Readable: e.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0,
			Writable: e.Events&unix.EPOLLOUT != 0,
			HangUp:   e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			Err:      e.Events&unix.EPOLLERR != 0,
		})
	}

	return dst, nil
}

func (p *epollPoller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	return unix.Close(p.fd)
}
