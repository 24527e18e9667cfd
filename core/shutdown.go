package core

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// InterruptNotice is written to the server's stdout when an interrupt arrives.
const InterruptNotice = "\nSIGINT received. Server shutting down.\n"

// Shutdown is the process-wide flag that stops the accept loop and the
// active session. It only ever moves from running to stopped.
type Shutdown struct {
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// NewShutdown creates a flag in the running state.
func NewShutdown() *Shutdown {
	return &Shutdown{done: make(chan struct{})}
}

// Stop marks the flag stopped. It returns true for the call that caused the
// transition.
func (s *Shutdown) Stop() bool {
	changed := false
	s.once.Do(func() {
		s.stopped.Store(true)
		close(s.done)
		changed = true
	})
	return changed
}

// Stopped reports whether Stop has been called.
func (s *Shutdown) Stopped() bool {
	return s.stopped.Load()
}

// Done is closed when the flag is stopped.
func (s *Shutdown) Done() <-chan struct{} {
	return s.done
}

// HandleInterrupts stops the flag and writes InterruptNotice to w when the
// process receives SIGINT or SIGTERM. The returned func releases the
// handler.
func (s *Shutdown) HandleInterrupts(w io.Writer) (release func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	quit := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			s.Stop()
			_, _ = io.WriteString(w, InterruptNotice)
		case <-quit:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(quit)
		})
	}
}
