package runtime

import "sync"

// RunState is the run flag shared by the reader, the UI side and the process.
// It starts running and can be stopped exactly once.
type RunState struct {
	mu      sync.Mutex
	running bool
	done    chan struct{}
}

func NewRunState() *RunState {
	return &RunState{running: true, done: make(chan struct{})}
}

func (s *RunState) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop flips the flag to false. Only the call that actually flips it returns true.
func (s *RunState) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.running = false
	close(s.done)
	return true
}

// Done is closed once the flag is stopped.
func (s *RunState) Done() <-chan struct{} {
	return s.done
}
