// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_twilio_telephony

import (
	"fmt"
	"strings"

	internal_telephony "github.com/rapidaai/campaign/api/campaign-api/internal/telephony"
	"github.com/twilio/twilio-go/twiml"
)

const (
	voice = "alice"

	// seconds Twilio waits for speech before falling through the gather
	GatherTimeoutSeconds = 5
	GatherHints          = "yes, no, call back later"
	GatherPrompt         = "Please say yes, no, or call back later."
	ClosingLine          = "Thank you for your time. Have a great day!"
)

// Script holds what the voice script needs to greet one contact.
type Script struct {
	CompanyName string
	Name        string
	Message     string
	Callbacks   internal_telephony.CallbackURLs
}

// VoiceScript renders the TwiML served on answer: greeting, optional
// message, a speech gather and a transcribed recording if nothing is said.
func VoiceScript(s Script) (string, error) {
	verbs := []twiml.Element{
		&twiml.VoiceSay{Message: internal_telephony.Greeting(s.CompanyName, s.Name), Voice: voice},
		&twiml.VoicePause{Length: "1"},
	}
	if msg := strings.TrimSpace(s.Message); msg != "" {
		verbs = append(verbs, &twiml.VoiceSay{Message: msg, Voice: voice})
	}
	verbs = append(verbs,
		&twiml.VoiceGather{
			Input:   "speech",
			Timeout: fmt.Sprint(GatherTimeoutSeconds),
			Hints:   GatherHints,
			Action:  s.Callbacks.Gather,
			Method:  "POST",
			InnerElements: []twiml.Element{
				&twiml.VoiceSay{Message: GatherPrompt, Voice: voice},
			},
		},
		&twiml.VoiceSay{Message: ClosingLine, Voice: voice},
		record(s.Callbacks),
	)
	return twiml.Voice(verbs)
}

// ReplyScript answers a gathered response and records the rest of the call.
func ReplyScript(reply string, callbacks internal_telephony.CallbackURLs) (string, error) {
	return twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: reply, Voice: voice},
		record(callbacks),
	})
}

func HangupScript() (string, error) {
	return twiml.Voice([]twiml.Element{&twiml.VoiceHangup{}})
}

func record(callbacks internal_telephony.CallbackURLs) *twiml.VoiceRecord {
	rec := &twiml.VoiceRecord{
		Action: callbacks.Recording,
		Method: "POST",
	}
	if callbacks.Transcription != "" {
		rec.Transcribe = "true"
		rec.TranscribeCallback = callbacks.Transcription
	}
	return rec
}
