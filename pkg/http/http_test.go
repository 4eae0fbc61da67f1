package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupstay/pkg/config"
)

func TestExtractLimit(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{"missing uses fallback", "", 50, false},
		{"explicit", "?limit=5", 5, false},
		{"zero uses fallback", "?limit=0", 50, false},
		{"capped", "?limit=5000", config.MaxAlertListLimit, false},
		{"garbage", "?limit=ten", 0, true},
		{"negative", "?limit=-1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/alerts"+tt.query, nil)
			got, err := ExtractLimit(r, 50)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBool(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/pools?available=true", nil)
	v, err := ExtractBool(r, "available")
	require.NoError(t, err)
	assert.True(t, v)

	r = httptest.NewRequest(http.MethodGet, "/pools?available=maybe", nil)
	_, err = ExtractBool(r, "available")
	assert.Error(t, err)
}

func TestWriteList_KeepsEmptyData(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteList(rec, []string{}, 0))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, rec.Body.String())
}

func TestWriteEnvelope_MessageAndAlert(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteEnvelope(rec, http.StatusOK, Envelope{
		Message: "Guest deleted successfully",
		Alert:   map[string]string{"type": "guest_removed"},
	}))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Guest deleted successfully", body["message"])
	assert.NotContains(t, body, "data")
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"An unexpected error occurred","code":"INTERNAL_ERROR"}`, rec.Body.String())
}

func TestWriteAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteAttachment(rec, "text/csv", "inventory.csv", "a,b\n"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="inventory.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
