package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentLedger, Output: &buf})

	l.Info("Intent submitted", FieldRecords, 3)
	l.Debug("hidden")
	l.WithComponent(ComponentStorage).Warn("slow query")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "ledger", lines[0][FieldComponent])
	assert.Equal(t, float64(3), lines[0][FieldRecords])
	assert.Equal(t, "storage", lines[1][FieldComponent])
	assert.Equal(t, ComponentLedger, l.Component())
}

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf})

	h := Middleware(l, func(r *http.Request) string { return r.Header.Get("X-Request-ID") })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "handled")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("X-Request-ID", "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-42", lines[0][FieldRequestID])
}

func TestFromContext_Default(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())
}

func TestLogHTTPEnd_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf})
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/records/7?confirm=true", nil)

	l.LogHTTPEnd(context.Background(), req, http.StatusOK, 3, "10.0.0.1")
	l.LogHTTPEnd(context.Background(), req, http.StatusConflict, 3, "10.0.0.1")
	l.LogHTTPEnd(context.Background(), req, http.StatusInternalServerError, 3, "10.0.0.1")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, "confirm=true", lines[0][FieldQuery])
	assert.Equal(t, false, lines[1][FieldSuccess])
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithRecord("7", "", "expense", "one_time").
		WithError(nil).
		WithError(errors.New("boom")).
		WithRequestID("")

	assert.Equal(t, "7", f[FieldRecordID])
	assert.NotContains(t, f, FieldSeriesID)
	assert.NotContains(t, f, FieldRequestID)
	assert.Equal(t, "boom", f[FieldError])
	assert.Len(t, f.ToSlice(), 2*len(f))
}

func TestLogFields_WithSeries(t *testing.T) {
	f := NewFields().WithSeries("", 1)
	assert.NotContains(t, f, FieldSeriesID)
	assert.Equal(t, 1, f[FieldRecords])

	f = NewFields().WithSeries("s-9", 12)
	assert.Equal(t, "s-9", f[FieldSeriesID])
	assert.Equal(t, 12, f[FieldRecords])
}
