package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type ReadLine struct {
	cfg     *config.AppConfig
	session *chat.Session
	rl      *readline.Instance
}

func NewReadLine(cfg *config.AppConfig, ex core.Exchanger) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptReady,
		HistoryFile:     cfg.GetInputHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	surface := &terminalSurface{
		out:       rl.Stdout(),
		width:     readline.GetScreenWidth,
		refresh:   rl.Refresh,
		setPrompt: rl.SetPrompt,
	}

	return &ReadLine{
		cfg: cfg,
		session: chat.NewSurfaceSession(surface, ex,
			transcript.WithScrollDelay(cfg.GetScrollDelay()),
			transcript.WithTimestampLayout(cfg.GetTimestampLayout()),
		),
		rl: rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("endpoint", r.cfg.GetEndpointURL()).Msg("ReadLine chat started. Type 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if strings.TrimSpace(line) == "exit" {
			return nil
		}

		if err := r.session.Submit(ctx, line); err != nil {
			if errors.Is(err, chat.ErrEmptyMessage) {
				continue
			}
			logger.Error().Err(err).Msg("submit failed")
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
