// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_vonage_telephony

import (
	"context"
	"fmt"
	"os"
	"strings"

	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	vng "github.com/vonage/vonage-go-sdk"
)

const ProviderName = "vonage"

// Webhook paths served for Vonage. Vonage reports recordings through the
// record action's own event URL and has no inline transcription callback.
var Routes = internal_telephony.Routes{
	Answer:    "/vonage/answer",
	Status:    "/vonage/event",
	Recording: "/vonage/recording",
	Gather:    "/vonage/input",
}

// voiceApi is the subset of the Vonage voice client the gateway uses.
type voiceApi interface {
	CreateCall(opts vng.CreateCallOpts) (string, error)
	Hangup(uuid string) error
}

type voiceClient struct {
	client *vng.VoiceClient
}

func (vc voiceClient) CreateCall(opts vng.CreateCallOpts) (string, error) {
	result, _, err := vc.client.CreateCall(opts)
	if err != nil {
		return "", err
	}
	return result.Uuid, nil
}

func (vc voiceClient) Hangup(uuid string) error {
	_, _, err := vc.client.Hangup(uuid)
	return err
}

type vg struct {
	logger commons.Logger
	voice  voiceApi
	from   string
}

func NewVonage(logger commons.Logger, cfg config.VonageConfig) (internal_telephony.Gateway, error) {
	auth, err := Auth(cfg)
	if err != nil {
		return nil, err
	}
	return newVonage(logger, voiceClient{client: vng.NewVoiceClient(auth)}, cfg.PhoneNumber), nil
}

func newVonage(logger commons.Logger, voice voiceApi, from string) *vg {
	return &vg{
		logger: logger,
		voice:  voice,
		from:   strings.TrimPrefix(strings.TrimSpace(from), "+"),
	}
}

func Auth(cfg config.VonageConfig) (vng.Auth, error) {
	if cfg.ApplicationId == "" {
		return nil, fmt.Errorf("illegal vonage config application_id is not found")
	}
	privateKey, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("illegal vonage config private key: %w", err)
	}
	clientAuth, err := vng.CreateAuthFromAppPrivateKey(cfg.ApplicationId, privateKey)
	if err != nil {
		return nil, err
	}
	return clientAuth, nil
}

func (vt *vg) Name() string {
	return ProviderName
}

// Place starts a call; Vonage fetches the NCCO from the answer URL.
// Vonage expects numbers without the leading '+'.
func (vt *vg) Place(ctx context.Context, req internal_telephony.PlaceRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opts := vng.CreateCallOpts{
		From:      vng.CallFrom{Type: "phone", Number: vt.from},
		To:        vng.CallTo{Type: "phone", Number: strings.TrimPrefix(strings.TrimSpace(req.To), "+")},
		AnswerUrl: []string{req.Callbacks.Answer},
	}
	if req.Callbacks.Status != "" {
		opts.EventUrl = []string{req.Callbacks.Status}
	}
	uuid, err := vt.voice.CreateCall(opts)
	if err != nil {
		return "", internal_telephony.ProviderError("create call", err)
	}
	if uuid == "" {
		return "", internal_telephony.ProviderError("create call", fmt.Errorf("empty call uuid in response"))
	}
	vt.logger.Debugf("vonage call created: uuid=%s, to=%s", uuid, req.To)
	return uuid, nil
}

func (vt *vg) Cancel(ctx context.Context, callID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := vt.voice.Hangup(callID); err != nil {
		return internal_telephony.ProviderError("hangup call", err)
	}
	return nil
}
