package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/providers/exchange"
	"github.com/sandevgo/tuskchat/internal/providers/llm"
	"github.com/sandevgo/tuskchat/internal/providers/tools"
	"github.com/sandevgo/tuskchat/internal/service/responder"
	"github.com/sandevgo/tuskchat/internal/storage/sqlite"
	"github.com/sandevgo/tuskchat/internal/transport/telegram"
	"github.com/sandevgo/tuskchat/internal/transport/web"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/retry"
	"github.com/sandevgo/tuskchat/pkg/srv"
)

// NewServices builds everything `serve` runs: the responder with its prompt
// watcher, turn log and inventory, the web server and the Telegram bot.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)

	// 2. Responder
	deps := web.Deps{}
	if appCfg.EnableResponder {
		rd, err := initResponder(ctx, appCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize responder")
		}
		services = append(services, rd.services...)
		deps.Responder = rd.responder
		if rd.turns != nil {
			deps.Turns = rd.turns
		}
		if rd.cars != nil {
			deps.Cars = rd.cars
		}
	}

	// 3. Chat surfaces talk to the responder over the exchange protocol
	ex := exchange.NewClientFromConfig(appCfg)
	if appCfg.EnableWeb {
		deps.Exchanger = ex
	}

	// 4. Transports
	if deps.Responder != nil || deps.Exchanger != nil {
		services = append(services, web.NewServer(ctx, appCfg, deps))
	}

	if appCfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, appCfg, ex)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	if len(services) == 0 {
		logger.Fatal().Msg("nothing to serve: enable the responder, the web page or telegram")
	}
	return services
}

type responderDeps struct {
	responder *responder.Responder
	services  []srv.Service
	turns     *sqlite.TurnsRepo
	cars      *sqlite.CarsRepo
}

// initResponder wires the LLM provider, the hot-reloaded system prompt and,
// when enabled, the sqlite turn log and car inventory tools. The returned
// services must be started and shut down along with whatever uses the
// responder.
func initResponder(ctx context.Context, appCfg *config.AppConfig) (*responderDeps, error) {
	rd := &responderDeps{}

	respCfg := config.NewResponderConfig(ctx)
	ai, err := llm.NewProvider(ctx, respCfg)
	if err != nil {
		return nil, err
	}

	prompt, err := responder.NewPromptWatcher(appCfg.GetSystemPath())
	if err != nil {
		return nil, err
	}
	rd.services = append(rd.services, prompt)

	retryCfg := retry.NewDefaultConfig()
	retryCfg.MaxRetries = max(respCfg.MaxRetries, 0)

	opts := []responder.Option{
		responder.WithRetrier(retry.NewRetrier(retryCfg)),
		responder.WithProviderName(respCfg.GetProvider()),
	}

	if appCfg.EnableTurnLog || appCfg.EnableInventory {
		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			prompt.Shutdown(ctx)
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		rd.services = append(rd.services, srv.NewCleanup(db.Close))

		if appCfg.EnableTurnLog {
			rd.turns = sqlite.NewTurnsRepo(db)
			opts = append(opts, responder.WithTurnLog(rd.turns))
		}
		if appCfg.EnableInventory {
			rd.cars = sqlite.NewCarsRepo(db)
			reg := tools.NewRegistry()
			if err := tools.RegisterCarTools(reg, rd.cars); err != nil {
				prompt.Shutdown(ctx)
				db.Close()
				return nil, fmt.Errorf("failed to register car tools: %w", err)
			}
			opts = append(opts, responder.WithTools(reg))
		}
	}

	log.FromCtx(ctx).Info().
		Str("provider", respCfg.GetProvider()).
		Str("model", respCfg.GetModel()).
		Bool("turn_log", rd.turns != nil).
		Bool("inventory", rd.cars != nil).
		Msg("responder ready")

	rd.responder = responder.NewResponder(ai, prompt, opts...)
	return rd, nil
}

// initExchanger picks how interactive chats reach a responder: in-process
// when local is set, otherwise over HTTP to the configured endpoint.
func initExchanger(ctx context.Context, appCfg *config.AppConfig, local bool) (core.Exchanger, []srv.Service, error) {
	if !local {
		return exchange.NewClientFromConfig(appCfg), nil, nil
	}
	rd, err := initResponder(ctx, appCfg)
	if err != nil {
		return nil, nil, err
	}
	return rd.responder, rd.services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
