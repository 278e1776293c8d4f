// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package campaign_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	internal_contacts "github.com/rapidaai/campaign/api/campaign-api/internal/contacts"
	internal_dispatcher "github.com/rapidaai/campaign/api/campaign-api/internal/dispatcher"
	internal_reporter "github.com/rapidaai/campaign/api/campaign-api/internal/reporter"
	"github.com/rapidaai/campaign/config"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/rapidaai/campaign/pkg/utils"
)

const (
	DataSourceCSV         = "csv"
	DataSourceGoogleSheet = "google_sheet"

	ExportFileName = "call_results.csv"
)

// SheetOpener opens a worksheet as a contact source. *internal_contacts.SheetsReader
// satisfies it.
type SheetOpener interface {
	Source(sheetID, worksheet string) internal_contacts.Source
}

type CampaignApi struct {
	cfg        *config.AppConfig
	logger     commons.Logger
	dispatcher *internal_dispatcher.Dispatcher
	reporter   *internal_reporter.Reporter
	sheets     SheetOpener
}

// NewCampaignApi wires the control surface. sheets may be nil when no Google
// credentials are configured; google_sheet submissions are then rejected.
func NewCampaignApi(
	cfg *config.AppConfig,
	logger commons.Logger,
	dispatcher *internal_dispatcher.Dispatcher,
	reporter *internal_reporter.Reporter,
	sheets SheetOpener,
) *CampaignApi {
	return &CampaignApi{
		cfg:        cfg,
		logger:     logger,
		dispatcher: dispatcher,
		reporter:   reporter,
		sheets:     sheets,
	}
}

type cancelRequest struct {
	CallSids []string `json:"call_sids"`
}

// MakeCalls loads contacts from an uploaded CSV or a Google Sheet and runs
// the campaign before responding.
//
// @Router /make-calls [post]
// @Accept multipart/form-data
// @Param data_source formData string false "csv or google_sheet"
// @Param file formData file false "contact list"
// @Param sheet_id formData string false "Google Sheet id"
// @Param worksheet_name formData string false "worksheet, defaults to Sheet1"
// @Param batch_size formData int false "calls per batch, defaults to 100"
func (cApi *CampaignApi) MakeCalls(c *gin.Context) {
	opts := internal_dispatcher.OptionsFromConfig(cApi.cfg.Campaign)
	if raw := strings.TrimSpace(c.PostForm("batch_size")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "batch_size must be a positive integer"})
			return
		}
		opts = opts.WithBatchSize(n)
	}

	contacts, err := cApi.loadContacts(c)
	if err != nil {
		cApi.logger.Warnw("rejected campaign submission", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(contacts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No phone numbers found"})
		return
	}

	summary := cApi.dispatcher.RunWithSummary(c.Request.Context(), contacts, opts)
	c.JSON(http.StatusOK, gin.H{
		"message":     fmt.Sprintf("Initiated %d calls", len(summary.CallIDs)),
		"call_sids":   summary.CallIDs,
		"campaign_id": summary.CampaignID,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
	})
}

func (cApi *CampaignApi) loadContacts(c *gin.Context) ([]internal_contacts.Contact, error) {
	switch source := c.DefaultPostForm("data_source", DataSourceCSV); source {
	case DataSourceCSV:
		header, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New("No file uploaded")
		}
		if header.Filename == "" {
			return nil, errors.New("No file selected")
		}
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("unable to open uploaded file: %w", err)
		}
		defer file.Close()
		contacts, err := internal_contacts.NewCSVSource(cApi.logger, file).Load(c.Request.Context())
		if err != nil {
			return nil, err
		}
		if len(contacts) == 0 {
			return nil, errors.New(`No valid phone numbers found in CSV. Please ensure it includes a "phone_number" column with numeric values.`)
		}
		return contacts, nil

	case DataSourceGoogleSheet:
		sheetID := strings.TrimSpace(c.PostForm("sheet_id"))
		if sheetID == "" {
			return nil, errors.New("Google Sheet ID is required")
		}
		if cApi.sheets == nil {
			return nil, errors.New("Google Sheets is not configured")
		}
		return cApi.sheets.Source(sheetID, c.PostForm("worksheet_name")).Load(c.Request.Context())

	default:
		return nil, errors.New("Invalid data source")
	}
}

// CallsStatus returns every tracked call keyed by call id.
//
// @Router /calls-status [get]
func (cApi *CampaignApi) CallsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, cApi.reporter.StatusSnapshot())
}

// CancelCalls cancels the listed calls that are still live.
//
// @Router /cancel-calls [post]
func (cApi *CampaignApi) CancelCalls(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a call_sids list"})
		return
	}
	ids := make([]string, 0, len(req.CallSids))
	for _, id := range req.CallSids {
		if !utils.IsEmpty(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No call SIDs provided"})
		return
	}

	result, err := cApi.cancel(c.Request.Context(), ids)
	if err != nil {
		cApi.logger.Errorw("cancel calls failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to cancel calls"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":              fmt.Sprintf("Canceled %d calls", result.CanceledCount),
		"canceled_count":       result.CanceledCount,
		"failed_cancellations": result.FailedIDs,
	})
}

func (cApi *CampaignApi) cancel(ctx context.Context, ids []string) (result internal_dispatcher.CancelResult, err error) {
	defer utils.Recover(ctx, func(_ context.Context, r interface{}, _ []byte) {
		err = utils.PanicError(r)
	})
	return cApi.dispatcher.Cancel(ctx, ids), nil
}

// ExportResults serves the call table as a CSV attachment, or as JSON
// when format=json.
//
// @Router /export-results [get]
func (cApi *CampaignApi) ExportResults(c *gin.Context) {
	if strings.ToLower(c.DefaultQuery("format", "csv")) != "csv" {
		c.JSON(http.StatusOK, cApi.reporter.StatusSnapshot())
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+ExportFileName)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	if err := cApi.reporter.WriteCSV(c.Writer); err != nil {
		cApi.logger.Errorw("export failed", "error", err)
	}
}
