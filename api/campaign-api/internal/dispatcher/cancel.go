// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_dispatcher

import (
	"context"
	"strings"

	internal_callregistry "github.com/rapidaai/campaign/api/campaign-api/internal/callregistry"
)

// CancelResult reports the outcome of a cancellation request.
type CancelResult struct {
	CanceledCount int      `json:"canceled_count"`
	FailedIDs     []string `json:"failed_cancellations"`
}

// Cancel asks the provider to stop every listed call that is still live.
// Unknown and already finished calls are skipped without being reported.
// For live calls the provider answers a refused cancel and a call it no
// longer knows with the same error, so both land in FailedIDs.
func (d *Dispatcher) Cancel(ctx context.Context, callIDs []string) CancelResult {
	result := CancelResult{FailedIDs: []string{}}
	seen := make(map[string]struct{}, len(callIDs))

	for _, raw := range callIDs {
		callID := strings.TrimSpace(raw)
		if callID == "" {
			continue
		}
		if _, dup := seen[callID]; dup {
			continue
		}
		seen[callID] = struct{}{}

		rec, err := d.registry.Get(callID)
		if err != nil {
			d.logger.Debugf("skipping cancel of untracked call %s", callID)
			continue
		}
		if rec.Status.IsTerminal() {
			d.logger.Debugf("skipping cancel of finished call %s with status %s", callID, rec.Status)
			continue
		}

		if err := d.gateway.Cancel(ctx, callID); err != nil {
			d.logger.Errorw("failed to cancel call", "call_sid", callID, "error", err)
			d.metrics.CancelOutcome("failed")
			result.FailedIDs = append(result.FailedIDs, callID)
			continue
		}

		_, changed, err := d.registry.Apply(callID, internal_callregistry.CancelEvent())
		if err != nil || !changed {
			// a terminal callback won the race; the provider state is authoritative
			d.logger.Warnw("call finished before cancellation was recorded", "call_sid", callID)
			continue
		}
		d.metrics.CancelOutcome("canceled")
		result.CanceledCount++
		d.logger.Infow("call canceled", "call_sid", callID)
	}
	return result
}
