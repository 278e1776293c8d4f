// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_dispatcher

import (
	"context"
	"time"

	"github.com/rapidaai/campaign/config"
)

const (
	DefaultBatchSize          = 100
	DefaultMaxParallelWorkers = 10
	DefaultInterBatchDelay    = 2 * time.Second
)

// RunOptions controls batching for one campaign run.
type RunOptions struct {
	BatchSize          int
	MaxParallelWorkers int
	InterBatchDelay    time.Duration

	// CallsPerSecond caps provider placements; 0 disables the cap.
	CallsPerSecond float64
}

// OptionsFromConfig returns the configured defaults.
func OptionsFromConfig(cfg config.CampaignConfig) RunOptions {
	return RunOptions{
		BatchSize:          cfg.DefaultBatchSize,
		MaxParallelWorkers: cfg.MaxParallelWorkers,
		InterBatchDelay:    cfg.InterBatchDelay,
		CallsPerSecond:     cfg.CallsPerSecond,
	}.normalise()
}

// WithBatchSize overrides the batch size when n is positive.
func (o RunOptions) WithBatchSize(n int) RunOptions {
	if n > 0 {
		o.BatchSize = n
	}
	return o
}

func (o RunOptions) normalise() RunOptions {
	if o.BatchSize < 1 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxParallelWorkers < 1 {
		o.MaxParallelWorkers = DefaultMaxParallelWorkers
	}
	if o.InterBatchDelay < 0 {
		o.InterBatchDelay = 0
	}
	if o.CallsPerSecond < 0 {
		o.CallsPerSecond = 0
	}
	return o
}

// Sleeper waits between batches. It returns early with ctx.Err() when ctx
// is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
