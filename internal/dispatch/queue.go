// Package dispatch provides the serialized FIFO execution queue that the
// loader uses as its callback "home" queue. Work submitted with Async runs
// on a single worker goroutine in strict submission order, which gives the
// caller a total order over every presentation-affecting step routed
// through the same queue.
package dispatch

import "sync"

// Serial executes submitted functions one at a time, in submission order,
// on a dedicated worker goroutine. It is safe for concurrent use.
type Serial struct {
	mu      sync.Mutex
	cond    *sync.Cond
	backlog []func()
	closed  bool
	done    chan struct{}
}

// NewSerial creates a serial queue and starts its worker goroutine.
func NewSerial() *Serial {
	s := &Serial{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Async enqueues fn for execution after all previously submitted work.
// It never blocks on the work itself. Submitting to a closed queue or
// submitting a nil function is a no-op.
func (s *Serial) Async(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.backlog = append(s.backlog, fn)
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *Serial) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.backlog) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.backlog) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.backlog[0]
		s.backlog = s.backlog[1:]
		s.mu.Unlock()

		fn()
	}
}

// Close drains all already-submitted work, stops the worker goroutine, and
// waits for it to exit. Work submitted after Close is dropped.
// Close must not be called from a function running on the queue itself.
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
	<-s.done
}
