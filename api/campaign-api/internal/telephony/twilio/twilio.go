// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_twilio_telephony

import (
	"context"
	"fmt"

	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const ProviderName = "twilio"

// Webhook paths served for Twilio.
var Routes = internal_telephony.Routes{
	Answer:        "/handle-call",
	Status:        "/call-status",
	Recording:     "/recording-callback",
	Transcription: "/transcription-callback",
	Gather:        "/gather-result",
}

// status callback events requested on every call
var statusCallbackEvents = []string{"initiated", "ringing", "answered", "completed"}

// callsApi is the subset of the Twilio REST API the gateway uses.
type callsApi interface {
	CreateCall(params *openapi.CreateCallParams) (*openapi.ApiV2010Call, error)
	UpdateCall(sid string, params *openapi.UpdateCallParams) (*openapi.ApiV2010Call, error)
}

type twl struct {
	logger commons.Logger
	calls  callsApi
	from   string
}

func NewTwilio(logger commons.Logger, cfg config.TwilioConfig) (internal_telephony.Gateway, error) {
	clientParams, err := ClientParam(cfg)
	if err != nil {
		return nil, err
	}
	client := twilio.NewRestClientWithParams(*clientParams)
	return newTwilio(logger, client.Api, cfg.PhoneNumber), nil
}

func newTwilio(logger commons.Logger, calls callsApi, from string) *twl {
	return &twl{
		logger: logger,
		calls:  calls,
		from:   internal_telephony.E164(from),
	}
}

func ClientParam(cfg config.TwilioConfig) (*twilio.ClientParams, error) {
	if cfg.AccountSid == "" {
		return nil, fmt.Errorf("illegal twilio config account_sid is not found")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("illegal twilio config auth_token not found")
	}
	return &twilio.ClientParams{
		Username: cfg.AccountSid,
		Password: cfg.AuthToken,
	}, nil
}

func (tpc *twl) Name() string {
	return ProviderName
}

// Place creates a recorded call whose TwiML is fetched from the answer URL.
func (tpc *twl) Place(ctx context.Context, req internal_telephony.PlaceRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &openapi.CreateCallParams{}
	params.SetTo(internal_telephony.E164(req.To))
	params.SetFrom(tpc.from)
	params.SetUrl(req.Callbacks.Answer)
	params.SetMethod("POST")
	params.SetRecord(true)
	if req.Callbacks.Status != "" {
		params.SetStatusCallback(req.Callbacks.Status)
		params.SetStatusCallbackMethod("POST")
		params.SetStatusCallbackEvent(statusCallbackEvents)
	}

	resp, err := tpc.calls.CreateCall(params)
	if err != nil {
		return "", internal_telephony.ProviderError("create call", err)
	}
	if resp == nil || resp.Sid == nil || *resp.Sid == "" {
		return "", internal_telephony.ProviderError("create call", fmt.Errorf("empty call sid in response"))
	}
	tpc.logger.Debugf("twilio call created: call_sid=%s, to=%s", *resp.Sid, req.To)
	return *resp.Sid, nil
}

// Cancel ends a queued or ringing call. Twilio rejects the update for calls
// that are already in progress or finished.
func (tpc *twl) Cancel(ctx context.Context, callID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &openapi.UpdateCallParams{}
	params.SetStatus("canceled")
	if _, err := tpc.calls.UpdateCall(callID, params); err != nil {
		return internal_telephony.ProviderError("cancel call", err)
	}
	return nil
}
