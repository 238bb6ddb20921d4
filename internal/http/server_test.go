package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famledger/internal/catalog"
	"famledger/internal/core"
	"famledger/internal/ledger/memory"
	"famledger/internal/log"
	"famledger/internal/middleware/ratelimit"
	"famledger/internal/services"
)

type testEnv struct {
	srv   *Server
	store *memory.Store
	ready error
}

func newTestEnv(t *testing.T, rl ratelimit.Config) *testEnv {
	t.Helper()
	store := memory.New([]catalog.Category{
		{ID: "salary", Kind: core.Income, Name: "Salary", Icon: "wallet", Active: true},
		{ID: "home", Kind: core.Expense, Name: "Home", Icon: "home", Active: true},
		{ID: "food", Kind: core.Expense, Name: "Food", Icon: "utensils", Active: true},
	})
	cat := catalog.NewCachedReader(store, catalog.ParseOrder("Home"), time.Minute, nil)
	svc := services.NewLedgerService(store,
		services.WithCatalog(cat),
		services.WithClock(func() time.Time { return time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC) }),
	)

	env := &testEnv{store: store}
	env.srv = NewServer(Config{
		Ledger:         svc,
		Catalog:        cat,
		Ready:          func(context.Context) error { return env.ready },
		Logger:         log.New(log.Config{Output: io.Discard}),
		AllowedOrigins: []string{"http://app.test"},
		RateLimit:      rl,
	})
	t.Cleanup(func() { _ = env.srv.Shutdown(context.Background()) })
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v), rec.Body.String())
	return v
}

type recordsBody struct {
	Records []core.LedgerRecord `json:"records"`
}

type errorBody struct {
	Error string               `json:"error"`
	Field string               `json:"field"`
	Plan  *services.DeletePlan `json:"plan"`
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})

	rec := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	env.ready = errors.New("database is closed")
	rec = env.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})
	rec := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/intents", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListCategories(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})

	rec := env.do(t, http.MethodGet, "/api/v1/categories?kind=expense", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Categories []catalog.Category `json:"categories"`
	}](t, rec)
	require.Len(t, body.Categories, 2)
	assert.Equal(t, "Home", body.Categories[0].Name)
	assert.Equal(t, catalog.IconUtensils, body.Categories[1].Icon)

	rec = env.do(t, http.MethodGet, "/api/v1/categories?kind=transfer", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, core.FieldKind, decode[errorBody](t, rec).Field)
}

func TestSubmitIntent(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})

	rec := env.do(t, http.MethodPost, "/api/v1/intents",
		`{"kind":"expense","mode":"installments","categoryId":"home","date":"2024-01-31","totalAmount":"100,00","installmentCount":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[recordsBody](t, rec)
	require.Len(t, body.Records, 3)
	assert.Equal(t, "33.33", body.Records[0].Amount.String())
	assert.Equal(t, "33.34", body.Records[2].Amount.String())
	assert.Equal(t, "2024-02-29", body.Records[1].TxDate.String())
	assert.Equal(t, 3, env.store.Len())
}

func TestSubmitIntent_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{"malformed json", `{"kind":`, http.StatusBadRequest, ""},
		{"trailing data", `{"kind":"income"} {}`, http.StatusBadRequest, ""},
		{"zero amount", `{"kind":"expense","mode":"one_time","categoryId":"food","date":"2024-05-01","amount":0}`, http.StatusUnprocessableEntity, core.FieldAmount},
		{"bad date", `{"kind":"expense","mode":"one_time","categoryId":"food","date":"01/05/2024","amount":5}`, http.StatusUnprocessableEntity, core.FieldDate},
		{"missing count", `{"kind":"expense","mode":"recurring","categoryId":"home","date":"2024-05-01","perMonthAmount":50}`, http.StatusUnprocessableEntity, core.FieldMonthCount},
		{"amount overflows cents", `{"kind":"expense","mode":"one_time","categoryId":"food","date":"2024-05-01","amount":"184467440737095516.17"}`, http.StatusUnprocessableEntity, core.FieldAmount},
		{"fewer cents than installments", `{"kind":"expense","mode":"installments","categoryId":"home","date":"2024-05-01","totalAmount":"0.02","installmentCount":3}`, http.StatusUnprocessableEntity, core.FieldInstallmentCount},
		{"unknown category", `{"kind":"expense","mode":"one_time","categoryId":"nope","date":"2024-05-01","amount":5}`, http.StatusUnprocessableEntity, core.FieldCategoryID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, ratelimit.Config{})
			rec := env.do(t, http.MethodPost, "/api/v1/intents", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, decode[errorBody](t, rec).Field)
			}
			assert.Zero(t, env.store.Len())
		})
	}
}

func TestMonthView(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})
	for _, body := range []string{
		`{"kind":"income","mode":"one_time","categoryId":"salary","date":"2024-05-01","amount":"1000"}`,
		`{"kind":"expense","mode":"recurring","categoryId":"home","date":"2024-04-10","perMonthAmount":"400","monthCount":3}`,
		`{"kind":"expense","mode":"one_time","categoryId":"food","date":"2024-05-16","amount":"12.50"}`,
	} {
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/intents", body).Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/months/2024/5", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var mv services.MonthView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mv))
	require.Len(t, mv.Records, 3)
	assert.Equal(t, "2024-05-16", mv.Records[0].TxDate.String())
	assert.Equal(t, "587.50", mv.MonthTotals.Remaining.String())
	assert.Len(t, mv.Categories, 3)

	rec = env.do(t, http.MethodGet, "/api/v1/months/2024/5?modes=recurring&sort=asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mv))
	require.Len(t, mv.Records, 2)
	assert.Equal(t, "2024-05-01", mv.Records[0].TxDate.String())
	assert.Equal(t, "400.00", mv.Totals.Expense.String())

	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodGet, "/api/v1/months/2024/13", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodGet, "/api/v1/months/2024/5?sort=sideways", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodGet, "/api/v1/months/2024/5?modes=weekly", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodGet, "/api/v1/months/year/5", "").Code)
}

func TestEditRecord(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})
	rec := env.do(t, http.MethodPost, "/api/v1/intents",
		`{"kind":"expense","mode":"installments","categoryId":"home","date":"2024-05-01","totalAmount":90,"installmentCount":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	recs := decode[recordsBody](t, rec).Records

	rec = env.do(t, http.MethodPatch, "/api/v1/records/"+recs[1].ID, `{"amount":"45.5","note":"  paid early "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decode[core.LedgerRecord](t, rec)
	assert.Equal(t, "45.50", edited.Amount.String())
	assert.Equal(t, "paid early", edited.Note)

	sibling, err := env.store.GetRecord(context.Background(), recs[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", sibling.Amount.String())

	rec = env.do(t, http.MethodPatch, "/api/v1/records/"+recs[1].ID, `{"amount":"-3"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/records/mem:404", `{"note":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRecord_RequiresConfirmation(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{})
	rec := env.do(t, http.MethodPost, "/api/v1/intents",
		`{"kind":"expense","mode":"recurring","categoryId":"home","date":"2024-03-20","perMonthAmount":100,"monthCount":4}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	recs := decode[recordsBody](t, rec).Records
	target := recs[1] // 2024-04-20

	rec = env.do(t, http.MethodGet, "/api/v1/records/"+target.ID+"/delete-plan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode[services.DeletePlan](t, rec)
	assert.Equal(t, services.ScopeSeriesFrom, plan.Scope)
	assert.Equal(t, "2024-04-01", plan.From.String())
	assert.Len(t, plan.Records, 3)

	rec = env.do(t, http.MethodDelete, "/api/v1/records/"+target.ID, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errorBody](t, rec)
	require.NotNil(t, body.Plan)
	assert.Len(t, body.Plan.Records, 3)
	assert.Equal(t, 4, env.store.Len())

	rec = env.do(t, http.MethodDelete, "/api/v1/records/"+target.ID+"?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, env.store.Len())

	rec = env.do(t, http.MethodDelete, "/api/v1/records/"+target.ID+"?confirm=true", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, ratelimit.Config{RequestsPerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/categories", "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/categories", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodGet, "/api/v1/categories", "").Code)

	// Probes are not limited.
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "").Code)
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.7:5000", "", "203.0.113.7"},
		{"untrusted peer ignores header", "203.0.113.7:5000", "198.51.100.1", "203.0.113.7"},
		{"trusted proxy", "10.0.0.2:5000", "198.51.100.1, 10.0.0.2", "198.51.100.1"},
		{"trusted proxy bad header", "10.0.0.2:5000", "not-an-ip", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, extractClientIP(req))
		})
	}
}
