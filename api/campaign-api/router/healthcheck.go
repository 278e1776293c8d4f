// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package campaign_routers

import (
	"github.com/gin-gonic/gin"
	healthCheckApi "github.com/rapidaai/campaign/api/campaign-api/api/health"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/metrics"
)

func HealthCheckRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger, gateway internal_telephony.Gateway, m *metrics.Metrics) {
	logger.Info("Internal HealthCheckRoutes added to engine.")
	apiv1 := engine.Group("")
	hcApi := healthCheckApi.New(cfg, logger, gateway)
	{
		apiv1.GET("/readiness/", hcApi.Readiness)
		apiv1.GET("/healthz/", hcApi.Healthz)
		if m != nil {
			apiv1.GET("/metrics", gin.WrapH(m.Handler()))
		}
	}
}
