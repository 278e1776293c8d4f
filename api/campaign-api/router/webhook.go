// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package campaign_routers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	webhookApi "github.com/rapidaai/campaign/api/campaign-api/api/webhook"
	internal_callback "github.com/rapidaai/campaign/api/campaign-api/internal/callback"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	internal_twilio_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony/twilio"
	internal_vonage_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony/vonage"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
)

// ProviderRoutes returns the webhook paths of the configured provider.
func ProviderRoutes(provider string) (internal_telephony.Routes, error) {
	switch provider {
	case config.ProviderTwilio:
		return internal_twilio_telephony.Routes, nil
	case config.ProviderVonage:
		return internal_vonage_telephony.Routes, nil
	}
	return internal_telephony.Routes{}, fmt.Errorf("unsupported telephony provider %q", provider)
}

// WebhookApiRoute registers the callbacks of the configured provider only.
func WebhookApiRoute(
	cfg *config.AppConfig,
	engine *gin.Engine,
	logger commons.Logger,
	ingestor internal_callback.Ingestor,
) error {
	routes, err := ProviderRoutes(cfg.TelephonyProvider)
	if err != nil {
		return err
	}
	callbacks := internal_telephony.NewCallbackBuilder(cfg.BaseUrl, routes)

	switch cfg.TelephonyProvider {
	case config.ProviderTwilio:
		logger.Info("Twilio WebhookApiRoute added to engine.")
		tApi := webhookApi.NewTwilioWebhookApi(cfg, logger, ingestor, callbacks)
		hooks := engine.Group("")
		if cfg.Twilio.ValidateWebhooks {
			hooks.Use(webhookApi.TwilioSignature(cfg, logger))
		}
		{
			hooks.POST(routes.Answer, tApi.HandleCall)
			hooks.POST(routes.Gather, tApi.GatherResult)
			hooks.POST(routes.Status, tApi.CallStatus)
			hooks.POST(routes.Recording, tApi.RecordingCallback)
			hooks.POST(routes.Transcription, tApi.TranscriptionCallback)
		}

	case config.ProviderVonage:
		logger.Info("Vonage WebhookApiRoute added to engine.")
		vApi := webhookApi.NewVonageWebhookApi(cfg, logger, ingestor, callbacks)
		hooks := engine.Group("")
		{
			hooks.GET(routes.Answer, vApi.Answer)
			hooks.POST(routes.Answer, vApi.Answer)
			hooks.POST(routes.Status, vApi.Event)
			hooks.POST(routes.Gather, vApi.Input)
			hooks.POST(routes.Recording, vApi.Recording)
		}
	}
	return nil
}
