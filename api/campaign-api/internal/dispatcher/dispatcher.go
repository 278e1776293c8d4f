// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_dispatcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	internal_callregistry "github.com/rapidaai/campaign/api/campaign-api/internal/callregistry"
	internal_contacts "github.com/rapidaai/campaign/api/campaign-api/internal/contacts"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/metrics"
	"github.com/rapidaai/campaign/pkg/utils"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Summary describes the outcome of one campaign run.
type Summary struct {
	CampaignID string   `json:"campaign_id"`
	Attempted  int      `json:"attempted"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Placed     int      `json:"placed"`
	CallIDs    []string `json:"call_sids"`
}

// Dispatcher places campaign calls in batches and cancels them on request.
type Dispatcher struct {
	logger    commons.Logger
	registry  internal_callregistry.Registry
	gateway   internal_telephony.Gateway
	callbacks internal_telephony.CallbackBuilder
	metrics   *metrics.Metrics
	sleeper   Sleeper
}

type Option func(*Dispatcher)

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithSleeper(s Sleeper) Option {
	return func(d *Dispatcher) { d.sleeper = s }
}

func NewDispatcher(
	logger commons.Logger,
	registry internal_callregistry.Registry,
	gateway internal_telephony.Gateway,
	callbacks internal_telephony.CallbackBuilder,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		logger:    logger,
		registry:  registry,
		gateway:   gateway,
		callbacks: callbacks,
		sleeper:   timerSleeper{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run places a call for every contact with a phone number and returns the
// ids of the calls the provider accepted, in completion order.
func (d *Dispatcher) Run(ctx context.Context, contacts []internal_contacts.Contact, opts RunOptions) []string {
	return d.RunWithSummary(ctx, contacts, opts).CallIDs
}

// RunWithSummary is Run with per-outcome counts.
//
// Contacts are split into consecutive batches. Every placement acquires a
// slot on one semaphore shared by the whole run, and batch N drains before
// the cooldown and batch N+1 begin. A done ctx stops scheduling; calls the
// provider already accepted stay in the result.
func (d *Dispatcher) RunWithSummary(ctx context.Context, contacts []internal_contacts.Contact, opts RunOptions) Summary {
	start := time.Now()
	defer d.logger.Benchmark("dispatcher.Run", start)

	opts = opts.normalise()
	summary := Summary{
		CampaignID: uuid.NewString(),
		CallIDs:    []string{},
	}

	var limiter *rate.Limiter
	if opts.CallsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.CallsPerSecond), 1)
	}
	sem := semaphore.NewWeighted(int64(opts.MaxParallelWorkers))

	var mu sync.Mutex
	batches := partition(contacts, opts.BatchSize)
	d.logger.Infow("campaign started",
		"campaign_id", summary.CampaignID,
		"contacts", len(contacts),
		"batches", len(batches),
		"batch_size", opts.BatchSize,
		"workers", opts.MaxParallelWorkers)

	for i, batch := range batches {
		if ctx.Err() != nil {
			break
		}
		var wg sync.WaitGroup
		for _, contact := range batch {
			if !contact.HasPhoneNumber() {
				d.logger.Warnw("skipping contact without phone number",
					"campaign_id", summary.CampaignID, "name", contact.Name)
				d.metrics.ContactSkipped()
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				continue
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			mu.Lock()
			summary.Attempted++
			mu.Unlock()

			wg.Add(1)
			c := contact
			utils.Go(ctx, func() {
				defer wg.Done()
				defer sem.Release(1)
				defer utils.Recover(ctx, func(_ context.Context, r interface{}, stack []byte) {
					d.logger.Errorw("placement panicked", "phone", c.PhoneNumber, "error", utils.PanicError(r), "stack", string(stack))
					mu.Lock()
					summary.Failed++
					mu.Unlock()
				})

				callID, err := d.place(ctx, limiter, summary.CampaignID, c)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					summary.Failed++
					return
				}
				summary.Placed++
				summary.CallIDs = append(summary.CallIDs, callID)
			})
		}
		wg.Wait()
		d.metrics.BatchCompleted()
		d.logger.Debugf("batch %d/%d completed for campaign %s", i+1, len(batches), summary.CampaignID)

		if i < len(batches)-1 {
			if err := d.sleeper.Sleep(ctx, opts.InterBatchDelay); err != nil {
				d.logger.Warnw("campaign stopped during cooldown",
					"campaign_id", summary.CampaignID, "error", err)
				break
			}
		}
	}

	d.logger.Infow("campaign finished",
		"campaign_id", summary.CampaignID,
		"placed", summary.Placed,
		"failed", summary.Failed,
		"skipped", summary.Skipped)
	return summary
}

func (d *Dispatcher) place(ctx context.Context, limiter *rate.Limiter, campaignID string, c internal_contacts.Contact) (string, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	d.metrics.PlacementStarted()
	started := time.Now()
	callID, err := d.gateway.Place(ctx, internal_telephony.PlaceRequest{
		To:        c.PhoneNumber,
		Callbacks: d.callbacks.For(c.Name, c.Message),
	})
	d.metrics.PlacementFinished()
	d.metrics.ObservePlacement(d.gateway.Name(), time.Since(started), err)
	if err != nil {
		d.logger.Errorw("failed to place call",
			"campaign_id", campaignID, "phone", c.PhoneNumber, "error", err)
		return "", err
	}

	err = d.registry.Create(internal_callregistry.CallRecord{
		CallID:      callID,
		PhoneNumber: c.PhoneNumber,
		Name:        c.Name,
		Message:     c.Message,
		Status:      internal_callregistry.StatusInitiated,
		Provider:    d.gateway.Name(),
		CampaignID:  campaignID,
	})
	if err != nil {
		if !errors.Is(err, internal_callregistry.ErrDuplicateCall) {
			d.logger.Errorw("failed to track placed call", "call_sid", callID, "error", err)
		}
		return "", err
	}
	d.logger.Infow("call initiated", "call_sid", callID, "phone", c.PhoneNumber, "campaign_id", campaignID)
	return callID, nil
}

func partition(contacts []internal_contacts.Contact, size int) [][]internal_contacts.Contact {
	batches := make([][]internal_contacts.Contact, 0, (len(contacts)+size-1)/size)
	for start := 0; start < len(contacts); start += size {
		end := start + size
		if end > len(contacts) {
			end = len(contacts)
		}
		batches = append(batches, contacts[start:end])
	}
	return batches
}
