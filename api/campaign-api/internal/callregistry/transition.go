// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_callregistry

// EventKind identifies which field of a CallRecord an event mutates.
type EventKind string

const (
	EventStatus     EventKind = "status"
	EventRecording  EventKind = "recording"
	EventTranscript EventKind = "transcript"
	EventGather     EventKind = "gather"
	EventCancel     EventKind = "cancel"
)

// Event is a single lifecycle notification for a call.
type Event struct {
	Kind  EventKind
	Value string
}

func StatusEvent(s Status) Event        { return Event{Kind: EventStatus, Value: string(s)} }
func RecordingEvent(url string) Event   { return Event{Kind: EventRecording, Value: url} }
func TranscriptEvent(text string) Event { return Event{Kind: EventTranscript, Value: text} }
func GatherEvent(text string) Event     { return Event{Kind: EventGather, Value: text} }
func CancelEvent() Event                { return Event{Kind: EventCancel, Value: string(StatusCanceled)} }

// Transition applies ev to rec and returns the resulting record and whether
// anything changed. It never mutates rec.
//
// Status events are dropped once rec is terminal, so stale or duplicated
// provider callbacks cannot move a finished call. Recording, transcript and
// gather events overwrite unconditionally; an empty value is ignored.
func Transition(rec CallRecord, ev Event) (CallRecord, bool) {
	next := rec.Clone()
	switch ev.Kind {
	case EventStatus, EventCancel:
		st := Status(ev.Value)
		if !st.IsValid() || rec.Status.IsTerminal() || rec.Status == st {
			return rec, false
		}
		next.Status = st
		return next, true
	}
	if ev.Value == "" {
		return rec, false
	}
	switch ev.Kind {
	case EventRecording:
		next.RecordingURL = &ev.Value
	case EventTranscript:
		next.Transcript = &ev.Value
	case EventGather:
		next.GatheredResponse = &ev.Value
	default:
		return rec, false
	}
	return next, true
}
