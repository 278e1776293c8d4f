// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	internal_contacts "github.com/rapidaai/campaign/api/campaign-api/internal/contacts"
	internal_dispatcher "github.com/rapidaai/campaign/api/campaign-api/internal/dispatcher"
	"github.com/spf13/cobra"
)

var (
	dialCSV       string
	dialSheetID   string
	dialWorksheet string
	dialBatchSize int
	dialWait      time.Duration
	dialOut       string
)

var dialCmd = &cobra.Command{
	Use:   "dial",
	Short: "Run one campaign from the command line",
	Long: `Loads contacts from a CSV file or a Google Sheet, places the calls and
keeps serving provider webhooks for --wait so results can be collected.
The results table is written as CSV to --out (stdout by default).

Examples:
  campaign dial --csv contacts.csv --batch-size 20 --wait 10m
  campaign dial --sheet-id 1AbC --worksheet Leads --out results.csv`,
	RunE: runDial,
}

func init() {
	dialCmd.Flags().StringVar(&dialCSV, "csv", "", "CSV file with a phone_number column")
	dialCmd.Flags().StringVar(&dialSheetID, "sheet-id", "", "Google Sheet id")
	dialCmd.Flags().StringVar(&dialWorksheet, "worksheet", internal_contacts.DefaultWorksheet, "Google Sheet worksheet name")
	dialCmd.Flags().IntVar(&dialBatchSize, "batch-size", 0, "calls per batch (defaults to CAMPAIGN__DEFAULT_BATCH_SIZE)")
	dialCmd.Flags().DurationVar(&dialWait, "wait", 5*time.Minute, "how long to keep collecting callbacks after dialing")
	dialCmd.Flags().StringVar(&dialOut, "out", "", "write the results CSV here instead of stdout")
	dialCmd.MarkFlagsMutuallyExclusive("csv", "sheet-id")
	dialCmd.MarkFlagsOneRequired("csv", "sheet-id")
}

func runDial(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	contacts, err := loadDialContacts(ctx, app)
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		return errors.New("no phone numbers found")
	}

	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()
	served := make(chan error, 1)
	go func() { served <- app.serve(serveCtx) }()

	opts := internal_dispatcher.OptionsFromConfig(appConfig.Campaign).WithBatchSize(dialBatchSize)
	summary := app.dispatcher.RunWithSummary(ctx, contacts, opts)
	if err := json.NewEncoder(cmd.ErrOrStderr()).Encode(summary); err != nil {
		return err
	}

	logger.Infof("collecting callbacks for %s", dialWait)
	select {
	case <-ctx.Done():
	case <-time.After(dialWait):
	case err := <-served:
		if err != nil {
			return err
		}
	}
	cancelServe()

	out := cmd.OutOrStdout()
	if dialOut != "" {
		f, err := os.Create(dialOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", dialOut, err)
		}
		defer f.Close()
		out = f
	}
	return app.reporter.WriteCSV(out)
}

func loadDialContacts(ctx context.Context, app *application) ([]internal_contacts.Contact, error) {
	if dialSheetID != "" {
		if app.sheets == nil {
			return nil, errors.New("GOOGLE_CREDENTIALS_FILE is required for --sheet-id")
		}
		return app.sheets.Source(dialSheetID, dialWorksheet).Load(ctx)
	}
	f, err := os.Open(dialCSV)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialCSV, err)
	}
	defer f.Close()
	return internal_contacts.NewCSVSource(app.logger, f).Load(ctx)
}
