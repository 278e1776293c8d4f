// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_callback

import "strings"

// Classification is the intent read from a spoken reply.
type Classification string

const (
	Affirmative  Classification = "affirmative"
	Negative     Classification = "negative"
	Deferred     Classification = "deferred"
	Unrecognized Classification = "unrecognized"
)

// Normalise lowercases and trims a raw speech result.
func Normalise(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Classify matches substrings in a fixed order, so "yes" wins over "no"
// and "no" wins over a callback request. text is expected normalised.
func Classify(text string) Classification {
	switch {
	case strings.Contains(text, "yes"):
		return Affirmative
	case strings.Contains(text, "no"):
		return Negative
	case strings.Contains(text, "call back later"), strings.Contains(text, "i will call back"):
		return Deferred
	}
	return Unrecognized
}

// ReplyLine is what the call says back after a gather.
func ReplyLine(c Classification) string {
	switch c {
	case Affirmative:
		return "Great, thank you for confirming. We will be in touch shortly."
	case Negative:
		return "Understood, thank you for letting us know."
	case Deferred:
		return "No problem, we will call you back later."
	}
	return "Sorry, we did not catch that. A member of our team will follow up."
}
