package internal_contacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newSheetsServer(t *testing.T, status int, values [][]interface{}) (*httptest.Server, *string) {
	t.Helper()
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"range":          "Sheet1!A1:Z100",
			"majorDimension": "ROWS",
			"values":         values,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &requested
}

func newTestSheetsReader(t *testing.T, srv *httptest.Server) *SheetsReader {
	t.Helper()
	reader, err := NewSheetsReaderWithOptions(context.Background(), commons.NewNopLogger(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return reader
}

func TestSheetSource_Load(t *testing.T) {
	srv, requested := newSheetsServer(t, http.StatusOK, [][]interface{}{
		{"phone_number", "name", "message"},
		{"15551230001", "Ann", "hello"},
		{"", "Nobody"},
		{"15551230002"},
	})
	reader := newTestSheetsReader(t, srv)

	contacts, err := reader.Source("sheet-123", "").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 3)
	assert.Equal(t, Contact{PhoneNumber: "15551230001", Name: "Ann", Message: "hello"}, contacts[0])
	assert.False(t, contacts[1].HasPhoneNumber())
	assert.Equal(t, "15551230002", contacts[2].PhoneNumber)
	assert.True(t, strings.Contains(*requested, "sheet-123"))
	assert.True(t, strings.Contains(*requested, DefaultWorksheet))
}

func TestSheetSource_MissingPhoneColumn(t *testing.T) {
	srv, _ := newSheetsServer(t, http.StatusOK, [][]interface{}{
		{"name"},
		{"Ann"},
	})
	reader := newTestSheetsReader(t, srv)

	_, err := reader.Source("sheet-123", "Contacts").Load(context.Background())
	assert.ErrorIs(t, err, ErrInput)
}

func TestSheetSource_ProviderError(t *testing.T) {
	srv, _ := newSheetsServer(t, http.StatusNotFound, nil)
	reader := newTestSheetsReader(t, srv)

	_, err := reader.Source("sheet-123", "Sheet1").Load(context.Background())
	assert.ErrorIs(t, err, ErrInput)
}

func TestSheetSource_RequiresSheetID(t *testing.T) {
	srv, _ := newSheetsServer(t, http.StatusOK, nil)
	reader := newTestSheetsReader(t, srv)

	_, err := reader.Source(" ", "Sheet1").Load(context.Background())
	assert.ErrorIs(t, err, ErrInput)
}

func TestNewSheetsReader_RequiresCredentials(t *testing.T) {
	_, err := NewSheetsReader(context.Background(), commons.NewNopLogger(), "")
	assert.ErrorIs(t, err, ErrInput)
}
