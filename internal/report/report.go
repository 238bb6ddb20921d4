// Package report turns a month view into a markdown document and renders it for
// terminals.
package report

import (
	"embed"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"

	"famledger/internal/core"
	"famledger/internal/services"
	"famledger/internal/summary"
)

// DefaultCurrency is used when none is configured.
const DefaultCurrency = "ILS"

//go:embed templates/*.md
var templates embed.FS

var monthTemplate = template.Must(template.New("month.md").Funcs(template.FuncMap{
	"percent": func(r float64) string { return fmt.Sprintf("%d%%", int(math.Round(r*100))) },
	// replaced per render
	"money": func(core.Money) string { return "" },
}).ParseFS(templates, "templates/month.md"))

// Formatter prints amounts in one currency.
type Formatter struct {
	code string
}

// NewFormatter returns a formatter for the ISO 4217 code. Unknown codes are an error.
func NewFormatter(code string) (Formatter, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	if money.GetCurrency(code) == nil {
		return Formatter{}, fmt.Errorf("unknown currency %q", code)
	}
	return Formatter{code: code}, nil
}

// Format displays m with the currency's symbol and separators.
func (f Formatter) Format(m core.Money) string {
	code := f.code
	if code == "" {
		code = DefaultCurrency
	}
	return money.New(m.Cents, code).Display()
}

type row struct {
	Date     string
	Category string
	Mode     string
	Amount   string
	Note     string
}

type page struct {
	Title       string
	Filters     string
	Sort        summary.SortMode
	Filtered    bool
	Totals      summary.Totals
	MonthTotals summary.Totals
	SpentRatio  float64
	Status      summary.Status
	Rows        []row
}

// Markdown renders the month view as a markdown document. Expense amounts are shown
// negative.
func Markdown(mv services.MonthView, f Formatter) (string, error) {
	names := make(map[string]string, len(mv.Categories))
	for _, c := range mv.Categories {
		names[c.ID] = c.Name
	}

	p := page{
		Title:       MonthTitle(mv.View.Year, mv.View.Month),
		Filters:     describeFilters(mv.View, names),
		Sort:        mv.View.Sort,
		Filtered:    mv.View.CategoryID != "" || len(mv.View.Modes) > 0,
		Totals:      mv.Totals,
		MonthTotals: mv.MonthTotals,
		SpentRatio:  mv.SpentRatio,
		Status:      mv.Status,
	}
	for _, r := range mv.Records {
		amount := r.Amount.Abs()
		if r.Kind == core.Expense {
			amount = core.Money{Cents: -amount.Cents}
		}
		p.Rows = append(p.Rows, row{
			Date:     r.TxDate.String(),
			Category: escapeCell(categoryName(names, r.CategoryID)),
			Mode:     describeMode(r),
			Amount:   f.Format(amount),
			Note:     escapeCell(r.Note),
		})
	}

	tmpl, err := monthTemplate.Clone()
	if err != nil {
		return "", fmt.Errorf("clone month template: %w", err)
	}
	tmpl.Funcs(template.FuncMap{"money": f.Format})

	var b strings.Builder
	if err := tmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("render month report: %w", err)
	}
	return b.String(), nil
}

// Render formats markdown for a terminal of the given width. A width of zero or
// less disables word wrapping.
func Render(markdown string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func describeMode(r core.LedgerRecord) string {
	switch r.Mode {
	case core.Installments:
		return fmt.Sprintf("installment %d/%d", r.InstallmentNumber, r.InstallmentTotal)
	case core.Recurring:
		return "recurring"
	default:
		return "one-time"
	}
}

func describeFilters(v summary.ViewState, names map[string]string) string {
	var parts []string
	if v.CategoryID != "" {
		parts = append(parts, "category "+categoryName(names, v.CategoryID))
	}
	if len(v.Modes) > 0 {
		modes := make([]string, len(v.Modes))
		for i, m := range v.Modes {
			modes[i] = string(m)
		}
		parts = append(parts, "modes "+strings.Join(modes, ", "))
	}
	return escapeCell(strings.Join(parts, "; "))
}

func categoryName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// MonthTitle formats a month heading, e.g. "May 2024".
func MonthTitle(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month, year)
}
