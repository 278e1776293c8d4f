// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package campaign_routers

import (
	"github.com/gin-gonic/gin"
	campaignApi "github.com/rapidaai/campaign/api/campaign-api/api/campaign"
	internal_dispatcher "github.com/rapidaai/campaign/api/campaign-api/internal/dispatcher"
	internal_reporter "github.com/rapidaai/campaign/api/campaign-api/internal/reporter"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
)

func CampaignApiRoute(
	cfg *config.AppConfig,
	engine *gin.Engine,
	logger commons.Logger,
	dispatcher *internal_dispatcher.Dispatcher,
	reporter *internal_reporter.Reporter,
	sheets campaignApi.SheetOpener,
) error {
	logger.Info("CampaignApiRoute added to engine.")
	cApi := campaignApi.NewCampaignApi(cfg, logger, dispatcher, reporter, sheets)

	control := engine.Group("")
	if cfg.ControlRateLimit != "" {
		limit, err := RateLimit(cfg.ControlRateLimit)
		if err != nil {
			return err
		}
		control.Use(limit)
	}
	{
		control.POST("/make-calls", cApi.MakeCalls)
		control.POST("/cancel-calls", cApi.CancelCalls)
	}

	read := engine.Group("")
	{
		read.GET("/calls-status", cApi.CallsStatus)
		read.GET("/export-results", cApi.ExportResults)
	}
	return nil
}
