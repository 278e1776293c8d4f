// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_telephony

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rapidaai/campaign/pkg/utils"
)

// ErrProvider wraps every failure returned by a telephony provider.
var ErrProvider = errors.New("telephony provider error")

func ProviderError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrProvider, op, err)
}

// CallbackURLs are the webhooks a provider invokes for one call.
type CallbackURLs struct {
	Answer        string
	Status        string
	Recording     string
	Transcription string
	Gather        string
}

// PlaceRequest describes one outbound call.
type PlaceRequest struct {
	To        string
	Callbacks CallbackURLs
}

// Gateway places and cancels calls on a telephony provider.
type Gateway interface {
	// Name is the provider identifier stored on each record.
	Name() string

	// Place asks the provider to start a call and returns its call id.
	Place(ctx context.Context, req PlaceRequest) (string, error)

	// Cancel stops a call that has not finished yet.
	Cancel(ctx context.Context, callID string) error
}

// Routes are the webhook paths a provider implementation serves.
type Routes struct {
	Answer        string
	Status        string
	Recording     string
	Transcription string
	Gather        string
}

// CallbackBuilder produces per-contact callback URLs.
type CallbackBuilder interface {
	For(name, message string) CallbackURLs
}

type urlBuilder struct {
	baseURL string
	routes  Routes
}

func NewCallbackBuilder(baseURL string, routes Routes) CallbackBuilder {
	return &urlBuilder{baseURL: strings.TrimRight(baseURL, "/"), routes: routes}
}

// For personalises the answer URL with the contact's name and message so
// the voice script can greet them without a registry lookup.
func (b *urlBuilder) For(name, message string) CallbackURLs {
	q := url.Values{}
	if !utils.IsEmpty(name) {
		q.Set("name", name)
	}
	if !utils.IsEmpty(message) {
		q.Set("message", message)
	}
	answer := b.join(b.routes.Answer)
	if encoded := q.Encode(); encoded != "" && answer != "" {
		answer += "?" + encoded
	}
	return CallbackURLs{
		Answer:        answer,
		Status:        b.join(b.routes.Status),
		Recording:     b.join(b.routes.Recording),
		Transcription: b.join(b.routes.Transcription),
		Gather:        b.join(b.routes.Gather),
	}
}

func (b *urlBuilder) join(path string) string {
	if path == "" {
		return ""
	}
	return b.baseURL + path
}

// Greeting is the opening line spoken on every answered call.
func Greeting(companyName, name string) string {
	greeting := "Hello"
	if n := strings.TrimSpace(name); n != "" {
		greeting = "Hello " + n
	}
	return fmt.Sprintf("%s, this is an automated call from %s. "+
		"This call is being recorded for quality and training purposes.", greeting, companyName)
}

// E164 prefixes bare digit strings with '+'; anything else is returned trimmed.
func E164(phone string) string {
	phone = strings.TrimSpace(phone)
	if utils.IsDigits(phone) {
		return "+" + phone
	}
	return phone
}
