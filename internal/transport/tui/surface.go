package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
)

type unitMsg struct{ unit transcript.Unit }
type scrollMsg struct{}
type pendingMsg bool

// programSurface forwards surface calls into the Bubble Tea event loop.
// The model owns the visible log; nothing here touches it directly.
type programSurface struct {
	send func(tea.Msg)
}

func (s *programSurface) Append(unit transcript.Unit) error {
	s.send(unitMsg{unit: unit})
	return nil
}

func (s *programSurface) ScrollToEnd() {
	s.send(scrollMsg{})
}

func (s *programSurface) SetPending(pending bool) {
	s.send(pendingMsg(pending))
}
