// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_reporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"

	internal_callregistry "github.com/rapidaai/campaign/api/campaign-api/internal/callregistry"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/utils"
)

// Columns is the fixed export column order.
var Columns = []string{
	"call_id",
	"phone_number",
	"name",
	"message",
	"status",
	"recording_url",
	"transcript",
	"gathered_response",
	"provider",
	"campaign_id",
}

var ErrMalformedExport = errors.New("malformed export")

// Reporter renders read-only views of the registry.
type Reporter struct {
	logger   commons.Logger
	registry internal_callregistry.Registry
}

func NewReporter(logger commons.Logger, registry internal_callregistry.Registry) *Reporter {
	return &Reporter{logger: logger, registry: registry}
}

func (r *Reporter) StatusSnapshot() map[string]internal_callregistry.CallRecord {
	return r.registry.Snapshot()
}

// ExportTable returns a header row followed by one row per call, sorted by
// call id. Absent optional fields render as empty cells.
func (r *Reporter) ExportTable() [][]string {
	return Table(r.registry.Snapshot())
}

// WriteCSV writes ExportTable as CSV.
func (r *Reporter) WriteCSV(w io.Writer) error {
	table := r.ExportTable()
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	r.logger.Debugf("exported %d call records", len(table)-1)
	return nil
}

func Table(snapshot map[string]internal_callregistry.CallRecord) [][]string {
	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids)+1)
	rows = append(rows, append([]string(nil), Columns...))
	for _, id := range ids {
		rec := snapshot[id]
		rows = append(rows, []string{
			id,
			rec.PhoneNumber,
			rec.Name,
			rec.Message,
			rec.Status.String(),
			utils.Deref(rec.RecordingURL),
			utils.Deref(rec.Transcript),
			utils.Deref(rec.GatheredResponse),
			rec.Provider,
			rec.CampaignID,
		})
	}
	return rows
}

// ParseCSV reads an export back into records keyed by call id. Empty
// optional cells come back as nil.
func ParseCSV(r io.Reader) (map[string]internal_callregistry.CallRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedExport)
	}
	for i, col := range Columns {
		if rows[0][i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, expected %q", ErrMalformedExport, i, rows[0][i], col)
		}
	}

	out := make(map[string]internal_callregistry.CallRecord, len(rows)-1)
	for _, row := range rows[1:] {
		out[row[0]] = internal_callregistry.CallRecord{
			CallID:           row[0],
			PhoneNumber:      row[1],
			Name:             row[2],
			Message:          row[3],
			Status:           internal_callregistry.Status(row[4]),
			RecordingURL:     optional(row[5]),
			Transcript:       optional(row[6]),
			GatheredResponse: optional(row[7]),
			Provider:         row[8],
			CampaignID:       row[9],
		}
	}
	return out, nil
}

func optional(cell string) *string {
	if cell == "" {
		return nil
	}
	return utils.Ptr(cell)
}
