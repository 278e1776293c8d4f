// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_contacts

import (
	"context"
	"encoding/csv"
	"errors"
	"io"

	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/utils"
)

type csvSource struct {
	logger commons.Logger
	reader io.Reader
}

// NewCSVSource reads contacts from a CSV stream with a header row. The
// phone_number column is mandatory; name and message are optional.
func NewCSVSource(logger commons.Logger, reader io.Reader) Source {
	return &csvSource{logger: logger, reader: reader}
}

// Load keeps only rows whose phone number is all digits; other rows are
// logged and dropped.
func (s *csvSource) Load(ctx context.Context) ([]Contact, error) {
	r := csv.NewReader(s.reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, inputError("csv is empty")
	}
	if err != nil {
		return nil, inputError("unable to read csv header: %v", err)
	}

	columns := make([]string, len(header))
	hasPhone := false
	for i, h := range header {
		columns[i] = normaliseHeader(h)
		if columns[i] == ColumnPhoneNumber {
			hasPhone = true
		}
	}
	if !hasPhone {
		s.logger.Errorf("missing required column: '%s'", ColumnPhoneNumber)
		return nil, inputError("missing required column %q", ColumnPhoneNumber)
	}

	var contacts []Contact
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, inputError("unable to read csv line %d: %v", line, err)
		}

		row := make(map[string]string, len(columns))
		for i, v := range fields {
			if i < len(columns) {
				row[columns[i]] = v
			}
		}
		contact := fromRecord(row)
		if !utils.IsDigits(contact.PhoneNumber) {
			s.logger.Warnw("invalid or missing phone number in row",
				"line", line,
				"phone_number", contact.PhoneNumber,
			)
			continue
		}
		contacts = append(contacts, contact)
	}
	s.logger.Debugf("loaded %d contacts from csv", len(contacts))
	return contacts, nil
}
