package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/pkg/log"
)

// Chat is the full-screen terminal chat.
type Chat struct {
	program *tea.Program
}

func NewChat(ctx context.Context, cfg *config.AppConfig, ex core.Exchanger) *Chat {
	c := &Chat{}
	surface := &programSurface{send: func(msg tea.Msg) { c.program.Send(msg) }}
	session := chat.NewSurfaceSession(surface, ex,
		transcript.WithScrollDelay(cfg.GetScrollDelay()),
		transcript.WithTimestampLayout(cfg.GetTimestampLayout()),
	)

	submit := func(text string) tea.Cmd {
		return func() tea.Msg {
			err := session.Submit(ctx, text)
			if err != nil {
				log.FromCtx(ctx).Debug().Err(err).Msg("submit rejected")
			}
			return submitDoneMsg{err: err}
		}
	}

	c.program = tea.NewProgram(newModel(submit), tea.WithAltScreen(), tea.WithContext(ctx))
	return c
}

func (c *Chat) Run() error {
	_, err := c.program.Run()
	return err
}
