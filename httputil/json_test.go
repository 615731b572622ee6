package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]any{"ok": true})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestWriteJSON_ClampsStatus(t *testing.T) {
	for _, status := range []int{0, 99, 600} {
		rec := httptest.NewRecorder()
		WriteJSON(rec, status, struct{}{})
		assert.Equal(t, http.StatusInternalServerError, rec.Code, "status %d", status)
	}
}

func TestWriteJSON_LogsEncodingFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]any{"ch": make(chan int)})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "json encoding failed after headers sent", logs.All()[0].Message)
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusServiceUnavailable, "db_unavailable", "database is not reachable")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{Error: "db_unavailable", Message: "database is not reachable"}, body)
}
