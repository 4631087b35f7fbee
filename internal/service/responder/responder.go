package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/retry"
)

var ErrNoMessage = errors.New("no message provided")

type PromptBuilder interface {
	Build() []core.Message
}

// Responder answers chat requests with the configured AI provider. It is the
// server side of the exchange protocol.
type Responder struct {
	ai       core.AIProvider
	prompt   PromptBuilder
	tools    core.ToolProvider
	turns    core.TurnRepository
	retrier  *retry.Retrier
	provider string
	now      func() time.Time
}

type Option func(*Responder)

// WithTurnLog records every answered exchange in repo.
func WithTurnLog(repo core.TurnRepository) Option {
	return func(r *Responder) { r.turns = repo }
}

// WithTools lets the model call the tools offered by tp before answering.
func WithTools(tp core.ToolProvider) Option {
	return func(r *Responder) { r.tools = tp }
}

func WithRetrier(rt *retry.Retrier) Option {
	return func(r *Responder) { r.retrier = rt }
}

// WithProviderName sets the provider label stored in the turn log.
func WithProviderName(name string) Option {
	return func(r *Responder) { r.provider = name }
}

func NewResponder(ai core.AIProvider, prompt PromptBuilder, opts ...Option) *Responder {
	cfg := retry.NewDefaultConfig()
	cfg.MaxRetries = 0

	r := &Responder{
		ai:      ai,
		prompt:  prompt,
		retrier: retry.NewRetrier(cfg),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond produces the assistant reply for message given the conversation
// so far. history may already end with message; it is not sent twice.
func (r *Responder) Respond(ctx context.Context, message string, history []core.Message) (string, error) {
	logger := log.FromCtx(ctx)

	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrNoMessage
	}

	messages := r.buildMessages(message, history)

	reply, err := r.complete(ctx, messages)
	if err != nil {
		return "", err
	}

	if r.turns != nil {
		turn := core.StoredTurn{
			Message:    message,
			Reply:      reply.Content,
			HistoryLen: len(history),
			Provider:   r.provider,
			CreatedAt:  r.now(),
		}
		if err := r.turns.AddTurn(ctx, turn); err != nil {
			logger.Error().Err(err).Msg("failed to record turn")
		}
	}

	logger.Debug().
		Int("history", len(history)).
		Int("reply_len", len(reply.Content)).
		Msg("responded")
	return reply.Content, nil
}

// complete asks the model for a reply, running the tools it calls and
// feeding their results back until it answers with text.
func (r *Responder) complete(ctx context.Context, messages []core.Message) (core.Message, error) {
	logger := log.FromCtx(ctx)

	var tools []core.Tool
	if r.tools != nil {
		var err error
		if tools, err = r.tools.GetTools(ctx); err != nil {
			return core.Message{}, fmt.Errorf("failed to list tools: %w", err)
		}
	}

	rt := r.retrier.WithNotify(func(attempt int, err error, delay time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("llm request failed, retrying")
	})

	for round := 0; ; round++ {
		var reply core.Message
		err := rt.Do(ctx, func() error {
			var err error
			reply, err = r.ai.Chat(ctx, messages, tools)
			if err != nil && ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return err
		})
		if err != nil {
			return core.Message{}, fmt.Errorf("ai chat error: %w", err)
		}

		if len(reply.ToolCalls) == 0 || r.tools == nil {
			return reply, nil
		}
		if round >= maxToolRounds {
			return core.Message{}, ErrTooManyToolRounds
		}

		messages = append(messages, reply)
		messages = append(messages, r.runTools(ctx, reply.ToolCalls)...)
	}
}

func (r *Responder) buildMessages(message string, history []core.Message) []core.Message {
	messages := r.prompt.Build()
	for _, m := range history {
		if m.Role == core.RoleSystem || m.Role == core.RoleTool {
			continue
		}
		m.ToolCalls, m.ToolCallID = nil, ""
		messages = append(messages, m)
	}

	if n := len(history); n > 0 && history[n-1].Role == core.RoleUser && strings.TrimSpace(history[n-1].Content) == message {
		return messages
	}
	return append(messages, core.Message{Role: core.RoleUser, Content: message})
}

// Exchange answers in-process, the way a remote responder would over HTTP:
// any failure becomes core.FallbackMessage.
func (r *Responder) Exchange(ctx context.Context, message string, history []core.Message) string {
	reply, err := r.Respond(ctx, message, history)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("local exchange failed, using fallback reply")
		return core.FallbackMessage
	}
	return reply
}
