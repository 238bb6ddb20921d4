// Package http exposes the ledger as a JSON API.
//
// This file decodes request bodies and query parameters into domain values. Every
// malformed field is reported as a *core.ValidationError naming it.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"famledger/internal/core"
	"famledger/internal/summary"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// errBadRequest marks a body that is not valid JSON for the endpoint.
var errBadRequest = errors.New("malformed request body")

// amountInput accepts a JSON number or a string using either decimal separator.
type amountInput string

func (a *amountInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string")
	}
	*a = amountInput(n.String())
	return nil
}

// decimal parses the amount for field. An empty amount is zero and left for the
// generator to reject.
func (a amountInput) decimal(field string) (decimal.Decimal, error) {
	if strings.TrimSpace(string(a)) == "" {
		return decimal.Zero, nil
	}
	d, err := core.ParseAmount(string(a))
	if err != nil {
		return decimal.Zero, core.Invalid(field, "must be a positive amount")
	}
	return d, nil
}

type intentRequest struct {
	Kind       core.Kind `json:"kind"`
	Mode       core.Mode `json:"mode"`
	CategoryID string    `json:"categoryId"`
	Date       string    `json:"date"`
	Note       string    `json:"note"`

	Amount           amountInput `json:"amount"`
	TotalAmount      amountInput `json:"totalAmount"`
	InstallmentCount int         `json:"installmentCount"`
	PerMonthAmount   amountInput `json:"perMonthAmount"`
	MonthCount       int         `json:"monthCount"`
}

func (req intentRequest) toIntent() (core.TransactionIntent, error) {
	in := core.TransactionIntent{
		Kind:             core.Kind(strings.ToLower(strings.TrimSpace(string(req.Kind)))),
		Mode:             core.Mode(strings.ToLower(strings.TrimSpace(string(req.Mode)))),
		CategoryID:       sanitizeInput(req.CategoryID),
		Note:             sanitizeInput(req.Note),
		InstallmentCount: req.InstallmentCount,
		MonthCount:       req.MonthCount,
	}

	var err error
	if in.Date, err = parseDateField(req.Date); err != nil {
		return in, err
	}

	switch in.Mode {
	case core.OneTime:
		in.Amount, err = req.Amount.decimal(core.FieldAmount)
	case core.Installments:
		in.TotalAmount, err = req.TotalAmount.decimal(core.FieldTotalAmount)
	case core.Recurring:
		in.PerMonthAmount, err = req.PerMonthAmount.decimal(core.FieldPerMonthAmount)
	}
	return in, err
}

type patchRequest struct {
	Amount     *amountInput `json:"amount"`
	Date       *string      `json:"date"`
	CategoryID *string      `json:"categoryId"`
	Note       *string      `json:"note"`
}

func (req patchRequest) toPatch() (core.RecordPatch, error) {
	var p core.RecordPatch
	if req.Amount != nil {
		d, err := req.Amount.decimal(core.FieldAmount)
		if err != nil {
			return p, err
		}
		m := core.MoneyFromDecimal(d)
		p.Amount = &m
	}
	if req.Date != nil {
		d, err := parseDateField(*req.Date)
		if err != nil {
			return p, err
		}
		p.TxDate = &d
	}
	if req.CategoryID != nil {
		id := sanitizeInput(*req.CategoryID)
		p.CategoryID = &id
	}
	if req.Note != nil {
		note := sanitizeInput(*req.Note)
		p.Note = &note
	}
	return p, nil
}

func parseDateField(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, core.Invalid(core.FieldDate, "must be YYYY-MM-DD")
	}
	return d, nil
}

// decodeJSON reads one JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}

// parseViewState reads /months/{year}/{month} and the category, modes and sort query
// parameters.
func parseViewState(r *http.Request) (summary.ViewState, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return summary.ViewState{}, core.Invalid(core.FieldDate, "year must be a number")
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return summary.ViewState{}, core.Invalid(core.FieldDate, "month must be a number")
	}

	q := r.URL.Query()
	sort, err := summary.ParseSortMode(strings.TrimSpace(q.Get("sort")))
	if err != nil {
		return summary.ViewState{}, err
	}
	modes, err := core.ParseModes(q.Get("modes"))
	if err != nil {
		return summary.ViewState{}, err
	}

	view := summary.NewViewState(year, time.Month(month)).
		WithCategory(sanitizeInput(q.Get("category"))).
		WithModes(modes...).
		WithSort(sort)
	return view, view.Validate()
}

// parseKind reads an optional kind query parameter.
func parseKind(r *http.Request) (core.Kind, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind")))
	if raw == "" {
		return "", nil
	}
	k := core.Kind(raw)
	if !k.IsValid() {
		return "", core.Invalid(core.FieldKind, "must be income or expense")
	}
	return k, nil
}

// sanitizeInput removes control characters other than tab and newlines, and trims
// whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
