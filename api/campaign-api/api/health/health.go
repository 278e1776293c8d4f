// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package health_check_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
)

type HealthCheckApi struct {
	cfg     *config.AppConfig
	logger  commons.Logger
	gateway internal_telephony.Gateway
}

func New(cfg *config.AppConfig, logger commons.Logger, gateway internal_telephony.Gateway) *HealthCheckApi {
	return &HealthCheckApi{cfg: cfg, logger: logger, gateway: gateway}
}

// Readiness reports whether a telephony gateway is wired.
func (hApi *HealthCheckApi) Readiness(c *gin.Context) {
	if hApi.gateway == nil {
		hApi.logger.Warn("readiness check failed: no telephony gateway")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true, "provider": hApi.gateway.Name()})
}

func (hApi *HealthCheckApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"healthy": true, "service": hApi.cfg.Name, "version": hApi.cfg.Version})
}
