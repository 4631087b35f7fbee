package transcript

import (
	"sync"
	"time"
)

const DefaultScrollDelay = 100 * time.Millisecond

// Scroller runs a scroll callback after a short delay so the surface can
// settle first. Requests made while one is pending are folded into it.
type Scroller struct {
	delay  time.Duration
	scroll func()

	mu      sync.Mutex
	pending bool
}

func NewScroller(delay time.Duration, scroll func()) *Scroller {
	return &Scroller{
		delay:  delay,
		scroll: scroll,
	}
}

func (s *Scroller) Schedule() {
	if s.delay <= 0 {
		s.scroll()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return
	}
	s.pending = true

	time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
		s.scroll()
	})
}
