package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	previous := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = previous })
	return at
}

func Test_RespondSuccess(t *testing.T) {
	// given
	at := fixedNow(t)
	rec := httptest.NewRecorder()

	// when
	RespondSuccess(rec, discardLogger, http.StatusCreated, "Product created", map[string]int{"id": 1})

	// then
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Product created", body["message"])
	assert.Equal(t, map[string]any{"id": float64(1)}, body["data"])
	assert.Equal(t, at.Format(time.RFC3339), body["timestamp"])
	assert.Equal(t, float64(http.StatusCreated), body["statusCode"])
}

func Test_RespondError(t *testing.T) {
	// given
	fixedNow(t)
	rec := httptest.NewRecorder()

	// when
	RespondError(rec, discardLogger, http.StatusNotFound, "Product not found")

	// then
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Product not found", body.Message)
	assert.Nil(t, body.Data)
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
}

func Test_ParseID(t *testing.T) {
	testCases := []struct {
		name       string
		pathValue  string
		expectedID int64
		expectedOK bool
	}{
		{name: "valid", pathValue: "42", expectedID: 42, expectedOK: true},
		{name: "zero", pathValue: "0", expectedOK: false},
		{name: "negative", pathValue: "-3", expectedOK: false},
		{name: "not a number", pathValue: "abc", expectedOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+tc.pathValue, nil)
			req.SetPathValue("id", tc.pathValue)
			rec := httptest.NewRecorder()

			// when
			id, ok := ParseID(rec, req, discardLogger)

			// then
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedID, id)
			if !tc.expectedOK {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
