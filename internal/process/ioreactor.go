// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
	"time"
)

// IdleTimeout bounds how long a Monitor blocks on one read before checking
// for cancellation; it does not bound how long output capture can run
// overall.
const IdleTimeout = 200 * time.Millisecond

// Monitor consumes bytes from a pipe or PTY read end, mirroring them to
// Mirror (the real terminal) while accumulating them into an internal
// buffer up to MaxCapture bytes. It runs its read loop on its own
// goroutine started by Run; Wait blocks until the source hits EOF/EIO or
// Stop is called.
type Monitor struct {
	Source     *os.File
	Mirror     io.Writer
	MaxCapture int

	mu       sync.Mutex
	captured bytes.Buffer
	stopped  bool
	done     chan struct{}
}

// Run starts the monitor's read loop on a new goroutine and returns
// immediately; the orchestrator's evaluation loop is never blocked by it.
func (m *Monitor) Run() {
	m.done = make(chan struct{})
	go m.loop()
}

func (m *Monitor) loop() {
	defer close(m.done)

	buf := make([]byte, 4096)
	for {
		if m.isStopped() {
			return
		}
		_ = m.Source.SetReadDeadline(time.Now().Add(IdleTimeout))
		n, err := m.Source.Read(buf)
		if n > 0 {
			m.append(buf[:n])
			if m.Mirror != nil {
				_, _ = m.Mirror.Write(buf[:n])
			}
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				// Idle tick: no data this pass, loop to recheck Stop.
				continue
			}
			// EOF or EIO (the slave side of a PTY closing surfaces as
			// EIO rather than io.EOF): the source is done.
			return
		}
	}
}

func (m *Monitor) append(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MaxCapture > 0 && m.captured.Len()+len(b) > m.MaxCapture {
		room := m.MaxCapture - m.captured.Len()
		if room > 0 {
			m.captured.Write(b[:room])
		}
		return
	}
	m.captured.Write(b)
}

func (m *Monitor) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Stop signals the read loop to exit at its next idle tick without
// waiting for EOF; used when a foreground job is interrupted.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

// Wait blocks until the read loop has exited.
func (m *Monitor) Wait() {
	<-m.done
}

// Captured returns the bytes accumulated so far.
func (m *Monitor) Captured() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.captured.Bytes()...)
}
