// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	campaignApi "github.com/rapidaai/campaign/api/campaign-api/api/campaign"
	internal_callback "github.com/rapidaai/campaign/api/campaign-api/internal/callback"
	internal_callregistry "github.com/rapidaai/campaign/api/campaign-api/internal/callregistry"
	internal_contacts "github.com/rapidaai/campaign/api/campaign-api/internal/contacts"
	internal_dispatcher "github.com/rapidaai/campaign/api/campaign-api/internal/dispatcher"
	internal_reporter "github.com/rapidaai/campaign/api/campaign-api/internal/reporter"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	internal_twilio_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony/twilio"
	internal_vonage_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony/vonage"
	campaign_routers "github.com/rapidaai/campaign/api/campaign-api/router"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/metrics"
	"github.com/rapidaai/campaign/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

// application owns every long-lived component of one process.
type application struct {
	cfg        *config.AppConfig
	logger     commons.Logger
	metrics    *metrics.Metrics
	registry   internal_callregistry.Registry
	gateway    internal_telephony.Gateway
	dispatcher *internal_dispatcher.Dispatcher
	reporter   *internal_reporter.Reporter
	ingestor   internal_callback.Ingestor
	sheets     *internal_contacts.SheetsReader
}

func newApplication(ctx context.Context, cfg *config.AppConfig, logger commons.Logger) (*application, error) {
	gateway, err := newGateway(cfg, logger)
	if err != nil {
		return nil, err
	}
	routes, err := campaign_routers.ProviderRoutes(cfg.TelephonyProvider)
	if err != nil {
		return nil, err
	}

	app := &application{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics.NewMetrics(),
		registry: internal_callregistry.NewRegistry(logger),
		gateway:  gateway,
	}
	app.metrics.TrackCalls(app.registry.Len)
	app.dispatcher = internal_dispatcher.NewDispatcher(logger, app.registry, gateway,
		internal_telephony.NewCallbackBuilder(cfg.BaseUrl, routes),
		internal_dispatcher.WithMetrics(app.metrics))
	app.reporter = internal_reporter.NewReporter(logger, app.registry)
	app.ingestor = internal_callback.NewIngestor(logger, app.registry, app.metrics)

	if !utils.IsEmpty(cfg.GoogleCredentialsFile) {
		app.sheets, err = internal_contacts.NewSheetsReader(ctx, logger, cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("google sheets: %w", err)
		}
	} else {
		logger.Warn("GOOGLE_CREDENTIALS_FILE is not set, google_sheet campaigns are disabled")
	}
	return app, nil
}

func newGateway(cfg *config.AppConfig, logger commons.Logger) (internal_telephony.Gateway, error) {
	switch cfg.TelephonyProvider {
	case config.ProviderTwilio:
		return internal_twilio_telephony.NewTwilio(logger, cfg.Twilio)
	case config.ProviderVonage:
		return internal_vonage_telephony.NewVonage(logger, cfg.Vonage)
	}
	return nil, fmt.Errorf("unsupported telephony provider %q", cfg.TelephonyProvider)
}

// engine registers every route. The sheets reader is passed only when set so
// the handler sees a nil interface rather than a typed nil.
func (app *application) engine() (*gin.Engine, error) {
	if utils.FromEnvironmentStr(app.cfg.Env).IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := campaign_routers.NewEngine(app.logger)
	campaign_routers.HealthCheckRoutes(app.cfg, engine, app.logger, app.gateway, app.metrics)

	var sheets campaignApi.SheetOpener
	if app.sheets != nil {
		sheets = app.sheets
	}
	if err := campaign_routers.CampaignApiRoute(app.cfg, engine, app.logger, app.dispatcher, app.reporter, sheets); err != nil {
		return nil, err
	}
	if err := campaign_routers.WebhookApiRoute(app.cfg, engine, app.logger, app.ingestor); err != nil {
		return nil, err
	}
	return engine, nil
}

// serve runs the HTTP server until ctx is done, then drains it.
func (app *application) serve(ctx context.Context) error {
	engine, err := app.engine()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              app.cfg.Address(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Infof("listening on %s, provider=%s, callbacks=%s", srv.Addr, app.gateway.Name(), app.cfg.BaseUrl)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
