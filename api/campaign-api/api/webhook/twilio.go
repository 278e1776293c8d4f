// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package webhook_api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	internal_callback "github.com/rapidaai/campaign/api/campaign-api/internal/callback"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	internal_twilio_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony/twilio"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/twilio/twilio-go/client"
)

const twimlContentType = "application/xml"

// TwilioWebhookApi serves TwiML and receives Twilio call callbacks. Twilio
// posts form-encoded bodies keyed by CallSid.
type TwilioWebhookApi struct {
	cfg       *config.AppConfig
	logger    commons.Logger
	ingestor  internal_callback.Ingestor
	callbacks internal_telephony.CallbackBuilder
}

func NewTwilioWebhookApi(
	cfg *config.AppConfig,
	logger commons.Logger,
	ingestor internal_callback.Ingestor,
	callbacks internal_telephony.CallbackBuilder,
) *TwilioWebhookApi {
	return &TwilioWebhookApi{cfg: cfg, logger: logger, ingestor: ingestor, callbacks: callbacks}
}

// HandleCall returns the voice script for an answered call.
//
// @Router /handle-call [post]
func (tApi *TwilioWebhookApi) HandleCall(c *gin.Context) {
	name := c.Query("name")
	message := c.Query("message")
	xml, err := internal_twilio_telephony.VoiceScript(internal_twilio_telephony.Script{
		CompanyName: tApi.cfg.CompanyName,
		Name:        name,
		Message:     message,
		Callbacks:   tApi.callbacks.For("", ""),
	})
	if err != nil {
		tApi.logger.Errorf("unable to render voice script: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	tApi.logger.Debugf("serving voice script for call %s", c.PostForm("CallSid"))
	c.Data(http.StatusOK, twimlContentType, []byte(xml))
}

// GatherResult stores the spoken reply and answers it.
//
// @Router /gather-result [post]
func (tApi *TwilioWebhookApi) GatherResult(c *gin.Context) {
	callSid := c.PostForm("CallSid")
	classification := internal_callback.Unrecognized
	if speech := c.PostForm("SpeechResult"); strings.TrimSpace(speech) != "" {
		classification = tApi.ingestor.OnGatherResult(c.Request.Context(), callSid, speech)
	}
	xml, err := internal_twilio_telephony.ReplyScript(internal_callback.ReplyLine(classification), tApi.callbacks.For("", ""))
	if err != nil {
		tApi.logger.Errorf("unable to render reply script: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, twimlContentType, []byte(xml))
}

// @Router /call-status [post]
func (tApi *TwilioWebhookApi) CallStatus(c *gin.Context) {
	callSid, status := c.PostForm("CallSid"), c.PostForm("CallStatus")
	tApi.logger.Infow("call status update", "call_sid", callSid, "status", status)
	tApi.ingestor.OnStatus(c.Request.Context(), callSid, status)
	c.Status(http.StatusNoContent)
}

// RecordingCallback is the Record verb's action; it stores the URL and
// ends the call.
//
// @Router /recording-callback [post]
func (tApi *TwilioWebhookApi) RecordingCallback(c *gin.Context) {
	callSid, url := c.PostForm("CallSid"), c.PostForm("RecordingUrl")
	if url != "" {
		tApi.ingestor.OnRecordingReady(c.Request.Context(), callSid, url)
	}
	xml, err := internal_twilio_telephony.HangupScript()
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, twimlContentType, []byte(xml))
}

// @Router /transcription-callback [post]
func (tApi *TwilioWebhookApi) TranscriptionCallback(c *gin.Context) {
	callSid := c.PostForm("CallSid")
	if c.PostForm("TranscriptionStatus") == "failed" {
		tApi.logger.Warnw("transcription failed", "call_sid", callSid)
		c.Status(http.StatusNoContent)
		return
	}
	tApi.ingestor.OnTranscriptReady(c.Request.Context(), callSid, c.PostForm("TranscriptionText"))
	c.Status(http.StatusNoContent)
}

// TwilioSignature rejects requests whose X-Twilio-Signature does not match
// the configured auth token. The URL is rebuilt from BASE_URL because the
// service usually sits behind a tunnel or proxy.
func TwilioSignature(cfg *config.AppConfig, logger commons.Logger) gin.HandlerFunc {
	validator := client.NewRequestValidator(cfg.Twilio.AuthToken)
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		params := make(map[string]string, len(c.Request.PostForm))
		for key := range c.Request.PostForm {
			params[key] = c.Request.PostForm.Get(key)
		}
		url := cfg.CallbackURL(c.Request.URL.RequestURI())
		if !validator.Validate(url, params, c.GetHeader("X-Twilio-Signature")) {
			logger.Warnw("rejected webhook with invalid signature", "path", c.Request.URL.Path)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
