// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_callregistry

import (
	"fmt"
	"sync"
	"time"

	"github.com/rapidaai/campaign/pkg/commons"
)

// Registry is the single source of truth for call state during the life of
// the process.
//
// Records are created once, when the provider accepts a placement. Provider
// callbacks arrive asynchronously and in no guaranteed order, including after
// the call has reached a terminal status, so a record is never removed and
// every mutation goes through Update which serialises writers per call id.
type Registry interface {
	// Create inserts a new record. Fails with ErrDuplicateCall if the id is
	// already tracked.
	Create(rec CallRecord) error

	// Update runs mutate against the record under its lock. mutate reports
	// whether it changed anything. Fails with ErrUnknownCall if absent.
	Update(callID string, mutate func(rec *CallRecord) bool) error

	// Apply runs Transition for ev and stores the result. Returns the record
	// after the event and whether the event changed it.
	Apply(callID string, ev Event) (CallRecord, bool, error)

	// Get returns a copy of the record or ErrNotFound.
	Get(callID string) (CallRecord, error)

	// Snapshot returns a point-in-time copy of every record.
	Snapshot() map[string]CallRecord

	Len() int
}

type entry struct {
	mu  sync.Mutex
	rec CallRecord
}

type memoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  commons.Logger
	now     func() time.Time
}

// NewRegistry creates an in-memory registry.
func NewRegistry(logger commons.Logger) Registry {
	return &memoryRegistry{
		entries: make(map[string]*entry),
		logger:  logger,
		now:     time.Now,
	}
}

func (r *memoryRegistry) Create(rec CallRecord) error {
	if err := rec.validate(); err != nil {
		return fmt.Errorf("create call %q: %w", rec.CallID, err)
	}
	if rec.Status == "" {
		rec.Status = StatusInitiated
	}
	now := r.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[rec.CallID]; ok {
		r.logger.Errorw("invariant violation: provider returned an already tracked call id",
			"call_sid", rec.CallID)
		return fmt.Errorf("create call %s: %w", rec.CallID, ErrDuplicateCall)
	}
	r.entries[rec.CallID] = &entry{rec: rec.Clone()}
	r.logger.Debugf("tracked call: call_sid=%s, phone=%s, status=%s", rec.CallID, rec.PhoneNumber, rec.Status)
	return nil
}

func (r *memoryRegistry) lookup(callID string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[callID]
	return e, ok
}

func (r *memoryRegistry) Update(callID string, mutate func(rec *CallRecord) bool) error {
	e, ok := r.lookup(callID)
	if !ok {
		return fmt.Errorf("update call %s: %w", callID, ErrUnknownCall)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if mutate(&e.rec) {
		e.rec.UpdatedAt = r.now()
	}
	return nil
}

func (r *memoryRegistry) Apply(callID string, ev Event) (CallRecord, bool, error) {
	var (
		out     CallRecord
		changed bool
	)
	err := r.Update(callID, func(rec *CallRecord) bool {
		next, ok := Transition(*rec, ev)
		if ok {
			*rec = next
		}
		out, changed = rec.Clone(), ok
		return ok
	})
	if err != nil {
		return CallRecord{}, false, err
	}
	if changed {
		r.logger.Debugf("applied call event: call_sid=%s, kind=%s, status=%s", callID, ev.Kind, out.Status)
	}
	return out, changed, nil
}

func (r *memoryRegistry) Get(callID string) (CallRecord, error) {
	e, ok := r.lookup(callID)
	if !ok {
		return CallRecord{}, fmt.Errorf("get call %s: %w", callID, ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone(), nil
}

// Snapshot holds the map lock only long enough to collect entries; each
// record is then copied under its own lock.
func (r *memoryRegistry) Snapshot() map[string]CallRecord {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make(map[string]CallRecord, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out[e.rec.CallID] = e.rec.Clone()
		e.mu.Unlock()
	}
	return out
}

func (r *memoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
