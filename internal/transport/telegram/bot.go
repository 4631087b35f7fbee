package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	baseContextKey = "base_context"
	busyReply      = "Still waiting for the previous reply, please hold on."
)

type Bot struct {
	bot       *tele.Bot
	exchanger core.Exchanger
	ownerID   int64
	opts      []transcript.Option

	mu       sync.Mutex
	sessions map[int64]*chat.Session
}

func NewBot(
	ctx context.Context,
	cfg core.TelegramConfig,
	surfaceCfg core.SurfaceConfig,
	ex core.Exchanger,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.GetTelegramToken(),
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:       b,
		exchanger: ex,
		ownerID:   cfg.GetTelegramOwnerID(),
		opts: []transcript.Option{
			transcript.WithScrollDelay(0),
			transcript.WithTimestampLayout(surfaceCfg.GetTimestampLayout()),
		},
		sessions: make(map[int64]*chat.Session),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner when one is configured
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || !bot.allowed(c.Sender().ID) {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Int64("owner", b.ownerID).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) allowed(senderID int64) bool {
	return b.ownerID == 0 || senderID == b.ownerID
}

func (b *Bot) session(ctx context.Context, chatID int64, recipient tele.Recipient) *chat.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[chatID]
	if !ok {
		s = chat.NewSurfaceSession(newChatSurface(ctx, b.bot, recipient), b.exchanger, b.opts...)
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx).With().Int64("chat", c.Chat().ID).Logger()
	ctx = logger.WithContext(ctx)

	err := b.session(ctx, c.Chat().ID, c.Chat()).Submit(ctx, c.Text())
	switch {
	case err == nil, errors.Is(err, chat.ErrEmptyMessage):
		return nil
	case errors.Is(err, chat.ErrBusy):
		return c.Send(busyReply)
	default:
		logger.Error().Err(err).Msg("submit failed")
		return nil
	}
}
