// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_contacts

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rapidaai/campaign/pkg/commons"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const DefaultWorksheet = "Sheet1"

// SheetsReader opens Google Sheets on behalf of a service account.
type SheetsReader struct {
	logger  commons.Logger
	service *sheets.Service
}

// NewSheetsReader builds a read-only Sheets client from a service account
// key file.
func NewSheetsReader(ctx context.Context, logger commons.Logger, credentialsFile string) (*SheetsReader, error) {
	if credentialsFile == "" {
		return nil, inputError("google sheet credentials are not configured")
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read google credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("illegal google credentials: %w", err)
	}
	return NewSheetsReaderWithOptions(ctx, logger, option.WithCredentials(creds))
}

// NewSheetsReaderWithOptions exposes the client options, mostly so tests can
// point the client at a local server.
func NewSheetsReaderWithOptions(ctx context.Context, logger commons.Logger, opts ...option.ClientOption) (*SheetsReader, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets client: %w", err)
	}
	return &SheetsReader{logger: logger, service: svc}, nil
}

// Source returns a contact source for one worksheet of a spreadsheet.
func (sr *SheetsReader) Source(sheetID, worksheet string) Source {
	if strings.TrimSpace(worksheet) == "" {
		worksheet = DefaultWorksheet
	}
	return &sheetSource{reader: sr, sheetID: sheetID, worksheet: worksheet}
}

type sheetSource struct {
	reader    *SheetsReader
	sheetID   string
	worksheet string
}

// Load treats the first row as the header, like a spreadsheet export.
func (s *sheetSource) Load(ctx context.Context) ([]Contact, error) {
	if strings.TrimSpace(s.sheetID) == "" {
		return nil, inputError("google sheet id is required")
	}
	resp, err := s.reader.service.Spreadsheets.Values.
		Get(s.sheetID, s.worksheet).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		s.reader.logger.Errorf("error loading google sheet %s/%s: %v", s.sheetID, s.worksheet, err)
		return nil, inputError("unable to load google sheet: %v", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	header := make([]string, len(resp.Values[0]))
	hasPhone := false
	for i, h := range resp.Values[0] {
		header[i] = normaliseHeader(fmt.Sprint(h))
		if header[i] == ColumnPhoneNumber {
			hasPhone = true
		}
	}
	if !hasPhone {
		return nil, inputError("missing required column %q", ColumnPhoneNumber)
	}

	contacts := make([]Contact, 0, len(resp.Values)-1)
	for _, values := range resp.Values[1:] {
		row := make(map[string]string, len(header))
		for i, v := range values {
			if i < len(header) {
				row[header[i]] = fmt.Sprint(v)
			}
		}
		// empty phone numbers are kept; the dispatcher skips them
		contacts = append(contacts, fromRecord(row))
	}
	s.reader.logger.Debugf("loaded %d contacts from google sheet %s", len(contacts), s.sheetID)
	return contacts, nil
}
