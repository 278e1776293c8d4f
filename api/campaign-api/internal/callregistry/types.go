// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_callregistry

import (
	"errors"
	"strings"
	"time"
)

// Status is the provider-reported lifecycle state of a placed call.
type Status string

// Call status constants. Values match the CallStatus strings Twilio sends on
// status callbacks so they can be stored without translation.
const (
	StatusInitiated  Status = "initiated"   // Placement accepted by the provider
	StatusQueued     Status = "queued"      // Waiting in the provider's outbound queue
	StatusRinging    Status = "ringing"     // Destination is ringing
	StatusInProgress Status = "in-progress" // Answered
	StatusCompleted  Status = "completed"   // Ended normally
	StatusBusy       Status = "busy"        // Destination busy
	StatusFailed     Status = "failed"      // Provider could not connect
	StatusNoAnswer   Status = "no-answer"   // Rang out
	StatusCanceled   Status = "canceled"    // Canceled before answer
)

var (
	// ErrUnknownCall is returned when a callback or update references a call id
	// that was never created.
	ErrUnknownCall = errors.New("unknown call")

	// ErrNotFound is the lookup flavour of ErrUnknownCall.
	ErrNotFound = ErrUnknownCall

	// ErrDuplicateCall means the provider handed out an id twice. Placement
	// always yields a fresh id, so seeing this is an invariant violation.
	ErrDuplicateCall = errors.New("duplicate call id")

	ErrInvalidRecord = errors.New("invalid call record")

	ErrInvalidStatus = errors.New("invalid call status")
)

// IsTerminal reports whether no further status transition is accepted.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusBusy, StatusFailed, StatusNoAnswer, StatusCanceled:
		return true
	}
	return false
}

func (s Status) IsValid() bool {
	switch s {
	case StatusInitiated, StatusQueued, StatusRinging, StatusInProgress,
		StatusCompleted, StatusBusy, StatusFailed, StatusNoAnswer, StatusCanceled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus normalises a provider status string.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// CallRecord is the state of one placed call. Optional fields are nil until
// the matching callback arrives.
type CallRecord struct {
	CallID           string    `json:"call_sid"`
	PhoneNumber      string    `json:"phone_number"`
	Name             string    `json:"name"`
	Message          string    `json:"message"`
	Status           Status    `json:"status"`
	RecordingURL     *string   `json:"recording_url"`
	Transcript       *string   `json:"transcript"`
	GatheredResponse *string   `json:"gathered_response"`
	Provider         string    `json:"provider,omitempty"`
	CampaignID       string    `json:"campaign_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no pointers with the receiver. Empty
// optional fields come back as nil.
func (r CallRecord) Clone() CallRecord {
	out := r
	out.RecordingURL = clonePtr(r.RecordingURL)
	out.Transcript = clonePtr(r.Transcript)
	out.GatheredResponse = clonePtr(r.GatheredResponse)
	return out
}

func clonePtr(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}

func (r CallRecord) validate() error {
	if strings.TrimSpace(r.CallID) == "" {
		return ErrInvalidRecord
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return ErrInvalidRecord
	}
	return nil
}
