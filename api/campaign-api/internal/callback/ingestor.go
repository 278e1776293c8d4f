// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_callback

import (
	"context"
	"errors"

	internal_callregistry "github.com/rapidaai/campaign/api/campaign-api/internal/callregistry"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/metrics"
)

// Ingestor applies provider callbacks to the registry. Every method is a
// soft operation: unknown calls and malformed values are logged and
// dropped, never reported back to the provider as an error.
type Ingestor interface {
	OnStatus(ctx context.Context, callID, status string)
	OnRecordingReady(ctx context.Context, callID, url string)
	OnTranscriptReady(ctx context.Context, callID, text string)
	OnGatherResult(ctx context.Context, callID, raw string) Classification
}

type ingestor struct {
	logger   commons.Logger
	registry internal_callregistry.Registry
	metrics  *metrics.Metrics
}

func NewIngestor(logger commons.Logger, registry internal_callregistry.Registry, m *metrics.Metrics) Ingestor {
	return &ingestor{logger: logger, registry: registry, metrics: m}
}

func (in *ingestor) OnStatus(ctx context.Context, callID, status string) {
	st, err := internal_callregistry.ParseStatus(status)
	if err != nil {
		in.logger.Warnw("dropping status callback with unknown status", "call_sid", callID, "status", status)
		in.metrics.Callback(string(internal_callregistry.EventStatus), "invalid")
		return
	}
	in.apply(callID, internal_callregistry.StatusEvent(st))
}

func (in *ingestor) OnRecordingReady(ctx context.Context, callID, url string) {
	in.apply(callID, internal_callregistry.RecordingEvent(url))
}

func (in *ingestor) OnTranscriptReady(ctx context.Context, callID, text string) {
	in.apply(callID, internal_callregistry.TranscriptEvent(text))
}

// OnGatherResult stores the normalised reply and returns its
// classification. The classification is not stored.
func (in *ingestor) OnGatherResult(ctx context.Context, callID, raw string) Classification {
	text := Normalise(raw)
	c := Classify(text)
	in.apply(callID, internal_callregistry.GatherEvent(text))
	in.logger.Debugf("gather result classified: call_sid=%s, classification=%s", callID, c)
	return c
}

func (in *ingestor) apply(callID string, ev internal_callregistry.Event) {
	if ev.Value == "" {
		in.logger.Debugf("dropping empty callback value: call_sid=%s, kind=%s", callID, ev.Kind)
		in.metrics.Callback(string(ev.Kind), "empty")
		return
	}
	_, changed, err := in.registry.Apply(callID, ev)
	switch {
	case errors.Is(err, internal_callregistry.ErrUnknownCall):
		in.logger.Warnw("dropping callback for unknown call", "call_sid", callID, "kind", ev.Kind)
		in.metrics.Callback(string(ev.Kind), "unknown")
	case err != nil:
		in.logger.Errorw("failed to apply callback", "call_sid", callID, "kind", ev.Kind, "error", err)
		in.metrics.Callback(string(ev.Kind), "error")
	case !changed:
		in.logger.Debugf("callback ignored: call_sid=%s, kind=%s, value=%s", callID, ev.Kind, ev.Value)
		in.metrics.Callback(string(ev.Kind), "ignored")
	default:
		in.metrics.Callback(string(ev.Kind), "applied")
	}
}
