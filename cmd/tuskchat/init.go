package main

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/service/installer"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/spf13/cobra"
)

var (
	force    bool
	defaults bool
)

var initCmd = &cobra.Command{
	Use:          "init",
	Short:        "Create the runtime directory, .env and SYSTEM.md",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()
		state := installer.NewInstallState(runtimePath, force)

		if defaults {
			installer.Finalize(state)
			envPath, err := installer.SaveEnv(state)
			if err != nil {
				return err
			}
			if err := installer.InitializeFiles(state); err != nil {
				return err
			}
			logger.Info().Str("path", envPath).Msg("wrote default configuration")
		} else {
			// run wizard (includes save step)
			if _, err := installer.RunWizard(state); err != nil {
				if errors.Is(err, installer.ErrInterrupted) {
					logger.Warn().Msg("setup cancelled, nothing was written")
					return nil
				}
				return err
			}
		}

		// Load the newly created .env file so the values can be checked right away
		envPath := config.EnvPath(runtimePath)
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		} else if _, err := config.LoadResponderConfig(); err != nil {
			return fmt.Errorf("written configuration does not parse: %w", err)
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! Run 'tuskchat serve' and 'tuskchat chat'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing .env and SYSTEM.md")
	initCmd.Flags().BoolVar(&defaults, "defaults", false, "skip the wizard and write the echo provider defaults")
	rootCmd.AddCommand(initCmd)
}
