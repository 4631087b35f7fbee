package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/internal/service/ui"
)

const (
	promptReady   = ">>> "
	promptPending = "... "
)

// terminalSurface prints units below the readline prompt. The terminal
// keeps the newest output at the bottom, so scrolling only redraws the
// prompt line.
type terminalSurface struct {
	mu        sync.Mutex
	out       io.Writer
	width     func() int
	refresh   func()
	setPrompt func(string)
}

func (s *terminalSurface) Append(unit transcript.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "%s\n\n", ui.FormatUnit(unit, s.width()))
	return err
}

func (s *terminalSurface) ScrollToEnd() {
	if s.refresh != nil {
		s.refresh()
	}
}

func (s *terminalSurface) SetPending(pending bool) {
	if s.setPrompt == nil {
		return
	}
	if pending {
		s.setPrompt(promptPending)
		return
	}
	s.setPrompt(promptReady)
}
