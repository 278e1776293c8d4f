// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package webhook_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	internal_callback "github.com/rapidaai/campaign/api/campaign-api/internal/callback"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	internal_vonage_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony/vonage"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
)

// VonageWebhookApi serves NCCOs and receives Vonage call events. Vonage
// posts JSON bodies keyed by the call uuid.
type VonageWebhookApi struct {
	cfg       *config.AppConfig
	logger    commons.Logger
	ingestor  internal_callback.Ingestor
	callbacks internal_telephony.CallbackBuilder
}

func NewVonageWebhookApi(
	cfg *config.AppConfig,
	logger commons.Logger,
	ingestor internal_callback.Ingestor,
	callbacks internal_telephony.CallbackBuilder,
) *VonageWebhookApi {
	return &VonageWebhookApi{cfg: cfg, logger: logger, ingestor: ingestor, callbacks: callbacks}
}

// Answer returns the NCCO for an answered call. Vonage appends uuid to the
// answer URL query.
//
// @Router /vonage/answer [get]
func (vApi *VonageWebhookApi) Answer(c *gin.Context) {
	ncco := internal_vonage_telephony.AnswerNCCO(
		c.Query("uuid"),
		internal_telephony.Greeting(vApi.cfg.CompanyName, c.Query("name")),
		c.Query("message"),
		vApi.callbacks.For("", ""),
	)
	c.JSON(http.StatusOK, ncco)
}

// Event receives call state changes.
//
// @Router /vonage/event [post]
func (vApi *VonageWebhookApi) Event(c *gin.Context) {
	var ev internal_vonage_telephony.CallEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		vApi.logger.Warnw("dropping malformed vonage event", "error", err)
		c.Status(http.StatusNoContent)
		return
	}
	if ev.RecordingURL != "" && ev.UUID != "" {
		vApi.ingestor.OnRecordingReady(c.Request.Context(), ev.UUID, ev.RecordingURL)
	}
	if status, ok := internal_vonage_telephony.NormaliseStatus(ev.Status); ok {
		vApi.logger.Infow("call status update", "call_sid", ev.UUID, "status", ev.Status)
		vApi.ingestor.OnStatus(c.Request.Context(), ev.UUID, status.String())
	} else if ev.Status != "" {
		vApi.logger.Debugf("ignoring vonage event %s for %s", ev.Status, ev.UUID)
	}
	c.Status(http.StatusNoContent)
}

// Input receives speech results and replies with a talk action.
//
// @Router /vonage/input [post]
func (vApi *VonageWebhookApi) Input(c *gin.Context) {
	var ev internal_vonage_telephony.InputEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		vApi.logger.Warnw("dropping malformed vonage input", "error", err)
	}
	classification := internal_callback.Unrecognized
	if text, ok := ev.BestResult(); ok && ev.UUID != "" {
		classification = vApi.ingestor.OnGatherResult(c.Request.Context(), ev.UUID, text)
	}
	c.JSON(http.StatusOK, internal_vonage_telephony.ReplyNCCO(internal_callback.ReplyLine(classification)))
}

// Recording receives the record action's event. The call uuid travels in
// the query since the event body only names the conversation.
//
// @Router /vonage/recording [post]
func (vApi *VonageWebhookApi) Recording(c *gin.Context) {
	var ev internal_vonage_telephony.CallEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		vApi.logger.Warnw("dropping malformed vonage recording event", "error", err)
		c.Status(http.StatusNoContent)
		return
	}
	callID := c.Query("uuid")
	if callID == "" {
		callID = ev.UUID
	}
	if ev.RecordingURL != "" {
		vApi.ingestor.OnRecordingReady(c.Request.Context(), callID, ev.RecordingURL)
	}
	c.Status(http.StatusNoContent)
}
