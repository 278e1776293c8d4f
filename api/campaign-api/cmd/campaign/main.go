// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	envPath string

	appConfig *config.AppConfig
	logger    commons.Logger
)

var rootCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Outbound voice campaign runner",
	Long: `Places batched outbound calls through Twilio or Vonage, tracks every
call through provider callbacks and exports the results.

Configuration is read from .env (or ENV_PATH) and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envPath != "" {
			if err := os.Setenv("ENV_PATH", envPath); err != nil {
				return err
			}
		}
		v, err := config.InitConfig()
		if err != nil {
			return err
		}
		appConfig, err = config.GetApplicationConfig(v)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		opts := []commons.LoggerOption{
			commons.Name(appConfig.Name),
			commons.Level(appConfig.LogLevel),
			commons.Path(appConfig.LogFile),
		}
		if utils.FromEnvironmentStr(appConfig.Env).IsProduction() {
			opts = append(opts, commons.EnableProduction())
		}
		logger, err = commons.NewApplicationLogger(opts...)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the control API and provider webhooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := newApplication(ctx, appConfig, logger)
		if err != nil {
			return err
		}
		return app.serve(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envPath, "env-path", "", "path to the .env configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dialCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
