package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorImplementsError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

func TestSentinelStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
	}{
		{"pipeline running", ErrPipelineRunning, http.StatusConflict, "PIPELINE_RUNNING"},
		{"metrics not found", ErrMetricsNotFound, http.StatusNotFound, "METRICS_NOT_FOUND"},
		{"parse failed", ErrParseFailed, http.StatusUnprocessableEntity, "PARSE_FAILED"},
		{"payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"unsupported file type", ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
		})
	}
}

func TestUnsupportedFileTypeError(t *testing.T) {
	err := UnsupportedFileTypeError(".exe")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Contains(t, err.Message, ".exe")
	assert.Equal(t, ".exe", err.Details)
}

func TestPayloadTooLargeErrorCarriesLimit(t *testing.T) {
	err := PayloadTooLargeError(1024)
	details, ok := err.Details.(map[string]int64)
	require.True(t, ok)
	assert.Equal(t, int64(1024), details["max_size_bytes"])
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrMetricsNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "METRICS_NOT_FOUND", resp.Error.ErrorCode)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewParsingError("failed to parse workbook", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "PARSING")
	assert.Contains(t, err.Error(), "boom")
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewUploadError("rejected", nil).WithContext("filename", "data.xlsx")
	assert.Equal(t, "data.xlsx", err.Context["filename"])
}
