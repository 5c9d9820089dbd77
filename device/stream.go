package device

import (
	"sync"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// Stream is an in-order command queue. Commands are executed by a single
// dispatcher goroutine, so a command starts only after the previous one
// retired. Launch and Host may be called from multiple goroutines.
type Stream struct {
	pool    *workerpool.Pool
	cmds    chan func()
	onClose func()

	mu        sync.Mutex
	retiredCh *sync.Cond
	submitted uint64
	retired   uint64
	closed    bool
	done      chan struct{}
}

func newStream(p *workerpool.Pool, depth int, onClose func()) *Stream {
	s := &Stream{
		pool:    p,
		cmds:    make(chan func(), depth),
		onClose: onClose,
		done:    make(chan struct{}),
	}
	s.retiredCh = sync.NewCond(&s.mu)
	go s.dispatch()
	return s
}

func (s *Stream) dispatch() {
	defer close(s.done)
	for cmd := range s.cmds {
		cmd()
		s.mu.Lock()
		s.retired++
		s.retiredCh.Broadcast()
		s.mu.Unlock()
	}
}

func (s *Stream) enqueue(cmd func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStreamClosed
	}
	s.submitted++
	s.mu.Unlock()

	// Send outside the lock so a full queue does not stall the dispatcher's
	// bookkeeping. Close waits for in-flight senders through submitted.
	s.cmds <- cmd
	return nil
}

// Launch validates cfg and queues kernel for execution over its grid.
func (s *Stream) Launch(cfg LaunchConfig, kernel Kernel) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.enqueue(func() {
		run(s.pool, cfg, kernel)
	})
}

// Host queues fn to run on the dispatcher after all earlier commands and
// before all later ones.
func (s *Stream) Host(fn func()) error {
	return s.enqueue(fn)
}

// Synchronize blocks until every command submitted before the call retired.
func (s *Stream) Synchronize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.submitted
	for s.retired < target {
		s.retiredCh.Wait()
	}
	return nil
}

// Close drains the queue and stops the dispatcher. Further submissions
// fail with ErrStreamClosed.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	target := s.submitted
	for s.retired < target {
		s.retiredCh.Wait()
	}
	s.mu.Unlock()

	close(s.cmds)
	<-s.done
	if s.onClose != nil {
		s.onClose()
	}
	return nil
}
