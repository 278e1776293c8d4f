// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_vonage_telephony

import (
	"net/url"
	"strings"

	internal_callregistry "github.com/rapidaai/campaign/api/campaign-api/internal/callregistry"
	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
)

// seconds Vonage waits for speech to start
const GatherTimeoutSeconds = 5

var gatherContext = []string{"yes", "no", "call back later"}

// Action is one NCCO instruction; NCCOs are plain JSON arrays of actions.
type Action map[string]interface{}

// CallEvent is the body Vonage posts to the event URL.
type CallEvent struct {
	UUID             string `json:"uuid"`
	ConversationUUID string `json:"conversation_uuid"`
	Status           string `json:"status"`
	Direction        string `json:"direction"`
	RecordingURL     string `json:"recording_url"`
	Timestamp        string `json:"timestamp"`
}

// InputEvent is the body Vonage posts after an input action.
type InputEvent struct {
	UUID   string `json:"uuid"`
	Speech struct {
		TimeoutReason string `json:"timeout_reason"`
		Results       []struct {
			Text       string `json:"text"`
			Confidence string `json:"confidence"`
		} `json:"results"`
	} `json:"speech"`
}

// BestResult returns the highest ranked transcription, Vonage sorts them.
func (e InputEvent) BestResult() (string, bool) {
	if len(e.Speech.Results) == 0 {
		return "", false
	}
	return e.Speech.Results[0].Text, true
}

// NormaliseStatus maps Vonage call states onto registry statuses. States
// without an equivalent (machine detection, human) report false.
func NormaliseStatus(status string) (internal_callregistry.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "started":
		return internal_callregistry.StatusInitiated, true
	case "ringing":
		return internal_callregistry.StatusRinging, true
	case "answered":
		return internal_callregistry.StatusInProgress, true
	case "completed":
		return internal_callregistry.StatusCompleted, true
	case "busy":
		return internal_callregistry.StatusBusy, true
	case "failed", "rejected":
		return internal_callregistry.StatusFailed, true
	case "timeout", "unanswered":
		return internal_callregistry.StatusNoAnswer, true
	case "cancelled":
		return internal_callregistry.StatusCanceled, true
	}
	return "", false
}

// AnswerNCCO records the call, speaks the greeting and message, then
// listens for a spoken reply.
func AnswerNCCO(callUUID, greeting, message string, callbacks internal_telephony.CallbackURLs) []Action {
	actions := []Action{
		{
			"action":      "record",
			"eventUrl":    []string{withUUID(callbacks.Recording, callUUID)},
			"eventMethod": "POST",
		},
		{"action": "talk", "text": greeting},
	}
	if msg := strings.TrimSpace(message); msg != "" {
		actions = append(actions, Action{"action": "talk", "text": msg})
	}
	speech := map[string]interface{}{
		"context":      gatherContext,
		"startTimeout": GatherTimeoutSeconds,
		"endOnSilence": 1,
	}
	if callUUID != "" {
		speech["uuid"] = []string{callUUID}
	}
	return append(actions, Action{
		"action":      "input",
		"type":        []string{"speech"},
		"eventUrl":    []string{callbacks.Gather},
		"eventMethod": "POST",
		"speech":      speech,
	})
}

func ReplyNCCO(reply string) []Action {
	return []Action{{"action": "talk", "text": reply}}
}

func withUUID(raw, callUUID string) string {
	if raw == "" || callUUID == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("uuid", callUUID)
	u.RawQuery = q.Encode()
	return u.String()
}
