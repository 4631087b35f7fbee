package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/history"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/pkg/conv"
	"github.com/sandevgo/tuskchat/pkg/log"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is still pending")
)

type State int

const (
	StateIdle State = iota
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Session drives one conversation: it records both sides of every turn in
// its history and renders them on its surface. At most one exchange is in
// flight at a time.
type Session struct {
	history   *history.Store
	renderer  *transcript.Renderer
	exchanger core.Exchanger

	mu    sync.Mutex
	state State
}

func NewSession(h *history.Store, r *transcript.Renderer, ex core.Exchanger) *Session {
	return &Session{
		history:   h,
		renderer:  r,
		exchanger: ex,
	}
}

// NewSurfaceSession wires a fresh history and renderer to surface.
func NewSurfaceSession(surface transcript.Surface, ex core.Exchanger, opts ...transcript.Option) *Session {
	return NewSession(history.NewStore(), transcript.NewRenderer(surface, opts...), ex)
}

// Submit runs one turn: record and show the user message, wait for the
// reply and record and show it too. Failed exchanges arrive as the fallback
// text and are treated like any other reply. Once the exchange has started
// it runs to completion even if ctx is cancelled.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	logger := log.FromCtx(ctx)
	ctx = context.WithoutCancel(ctx)

	s.history.Append(core.RoleUser, text)
	s.renderer.Render(ctx, conv.Parse(text), core.RoleUser)

	s.renderer.SetPending(true)
	reply := s.exchanger.Exchange(ctx, text, s.history.Snapshot())
	s.renderer.SetPending(false)

	s.history.Append(core.RoleAssistant, reply)
	s.renderer.Render(ctx, conv.Parse(reply), core.RoleAssistant)

	logger.Debug().Int("history", s.history.Len()).Msg("turn completed")
	return nil
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSending {
		return ErrBusy
	}
	s.state = StateSending
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a snapshot of the conversation so far.
func (s *Session) History() []core.Message {
	return s.history.Snapshot()
}
