package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/transport/cli"
	"github.com/sandevgo/tuskchat/internal/transport/tui"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/srv"
	"github.com/spf13/cobra"
)

var (
	local bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat on the command line",
	Long: `Opens a line-based chat. Replies come from the responder at TUSKCHAT_ENDPOINT,
or from an in-process responder with --local.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context(), func(ctx context.Context, cfg *config.AppConfig, ex core.Exchanger) error {
			rl, err := cli.NewReadLine(cfg, ex)
			if err != nil {
				return err
			}
			defer rl.Shutdown(ctx)
			return rl.Start(ctx)
		})
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Chat in a full-screen terminal window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context(), func(ctx context.Context, cfg *config.AppConfig, ex core.Exchanger) error {
			return tui.NewChat(ctx, cfg, ex).Run()
		})
	},
}

// runInteractive sets up logging to the runtime log file, so the terminal
// stays reserved for the conversation, then runs fn with an exchanger.
func runInteractive(parent context.Context, fn func(context.Context, *config.AppConfig, core.Exchanger) error) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	runtimePath := config.GetRuntimePath()
	ctx, flushLog, err := log.NewContextWithFileLogger(ctx, isDebug(), config.LogPath(runtimePath))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer flushLog()

	if err := initEnv(ctx, runtimePath); err != nil {
		return err
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return err
	}

	ex, services, err := initExchanger(ctx, appCfg, local)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	srv.StartServices(runCtx, services)

	err = fn(runCtx, appCfg, ex)

	cancel()
	srv.ShutdownServices(runCtx, services)
	return err
}

func init() {
	for _, cmd := range []*cobra.Command{chatCmd, tuiCmd} {
		cmd.Flags().BoolVarP(&local, "local", "l", false, "answer with an in-process responder instead of TUSKCHAT_ENDPOINT")
		rootCmd.AddCommand(cmd)
	}
}
