// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ColumnPhoneNumber = "phone_number"
	ColumnName        = "name"
	ColumnMessage     = "message"
)

// ErrInput wraps every failure caused by a bad or missing contact source.
var ErrInput = errors.New("invalid contact source")

// Contact is one row of a campaign list.
type Contact struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name,omitempty"`
	Message     string `json:"message,omitempty"`
}

func (c Contact) HasPhoneNumber() bool {
	return strings.TrimSpace(c.PhoneNumber) != ""
}

// Source yields a normalised contact list.
type Source interface {
	Load(ctx context.Context) ([]Contact, error)
}

func inputError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

// fromRecord maps a header-keyed row onto a Contact.
func fromRecord(row map[string]string) Contact {
	return Contact{
		PhoneNumber: strings.TrimSpace(row[ColumnPhoneNumber]),
		Name:        strings.TrimSpace(row[ColumnName]),
		Message:     strings.TrimSpace(row[ColumnMessage]),
	}
}

func normaliseHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
