package config

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"TUSKCHAT_RUNTIME_PATH" envDefault:".tuskchat"`
	ListenAddr  string `env:"TUSKCHAT_LISTEN_ADDR" envDefault:":5000"`

	// Exchange client. An empty endpoint points at the local responder on
	// ListenAddr.
	EndpointURL     string        `env:"TUSKCHAT_ENDPOINT"`
	ExchangeTimeout time.Duration `env:"TUSKCHAT_EXCHANGE_TIMEOUT" envDefault:"60s"`

	// Surfaces
	ScrollDelay     time.Duration `env:"TUSKCHAT_SCROLL_DELAY" envDefault:"100ms"`
	TimestampLayout string        `env:"TUSKCHAT_TIMESTAMP_LAYOUT" envDefault:"3:04 PM"`

	// Service Flags
	EnableResponder bool `env:"ENABLE_RESPONDER" envDefault:"true"`
	EnableWeb       bool `env:"ENABLE_WEB" envDefault:"true"`
	EnableTelegram  bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableTurnLog   bool `env:"ENABLE_TURN_LOG" envDefault:"true"`
	EnableInventory bool `env:"ENABLE_INVENTORY" envDefault:"true"`
}

func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("failed to parse App config: %w", err)
	}
	if !filepath.IsAbs(c.RuntimePath) {
		c.RuntimePath = GetRuntimePath()
	}
	if c.EndpointURL == "" {
		c.EndpointURL = localEndpoint(c.ListenAddr)
	}
	return c, nil
}

// localEndpoint is the chat API URL of a responder listening on addr.
// Wildcard hosts are reached through localhost.
func localEndpoint(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = "", strings.TrimPrefix(addr, ":")
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	if port == "" {
		port = "5000"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api/chat"
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "tuskchat.db")
}

func (c AppConfig) GetEnvPath() string {
	return EnvPath(c.RuntimePath)
}

func (c AppConfig) GetLogPath() string {
	return LogPath(c.RuntimePath)
}

func (c AppConfig) GetInputHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}

func (c AppConfig) GetEndpointURL() string {
	return c.EndpointURL
}

func (c AppConfig) GetExchangeTimeout() time.Duration {
	return c.ExchangeTimeout
}

func (c AppConfig) GetScrollDelay() time.Duration {
	return c.ScrollDelay
}

func (c AppConfig) GetTimestampLayout() string {
	return c.TimestampLayout
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
