package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famledger/internal/catalog"
	"famledger/internal/core"
	"famledger/internal/services"
	"famledger/internal/summary"
)

func sampleView(view summary.ViewState) services.MonthView {
	records := []core.LedgerRecord{
		{ID: "1", RecordDraft: core.RecordDraft{Kind: core.Income, Mode: core.OneTime, CategoryID: "salary",
			Amount: core.Money{Cents: 200000}, TxDate: core.NewDate(2024, time.May, 1)}},
		{ID: "2", RecordDraft: core.RecordDraft{Kind: core.Expense, Mode: core.Installments, CategoryID: "home",
			Amount: core.Money{Cents: 3334}, TxDate: core.NewDate(2024, time.May, 10), Note: "sofa | living room",
			SeriesID: "s1", InstallmentNumber: 3, InstallmentTotal: 3}},
	}
	return services.MonthView{
		MonthSummary: summary.Build(view, records, core.NewDate(2024, time.May, 15)),
		Categories: []catalog.Category{
			{ID: "salary", Kind: core.Income, Name: "Salary", Active: true},
			{ID: "home", Kind: core.Expense, Name: "Home", Active: true},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("usd")
	require.NoError(t, err)
	assert.Equal(t, "$33.34", f.Format(core.Money{Cents: 3334}))
	assert.Equal(t, "-$5.00", f.Format(core.Money{Cents: -500}))

	_, err = NewFormatter("XXXX")
	assert.Error(t, err)

	f, err = NewFormatter("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, f.code)
}

func TestMarkdown(t *testing.T) {
	f, err := NewFormatter("USD")
	require.NoError(t, err)

	md, err := Markdown(sampleView(summary.NewViewState(2024, time.May)), f)
	require.NoError(t, err)

	assert.Contains(t, md, "# May 2024")
	assert.Contains(t, md, "| **Month** | $2,000.00 | $33.34 | $1,966.66 |")
	assert.Contains(t, md, "| 2024-05-10 | Home | installment 3/3 | -$33.34 | sofa \\| living room |")
	assert.Contains(t, md, "| 2024-05-01 | Salary | one-time | $2,000.00 |")
	assert.Contains(t, md, "Spent 2% of income · **surplus**")
	assert.NotContains(t, md, "| Shown |")
	assert.NotContains(t, md, "Filters:")
}

func TestMarkdown_Filtered(t *testing.T) {
	f, err := NewFormatter("USD")
	require.NoError(t, err)

	view := summary.NewViewState(2024, time.May).WithCategory("home").WithSort(summary.SortAsc)
	md, err := Markdown(sampleView(view), f)
	require.NoError(t, err)

	assert.Contains(t, md, "_Filters: category Home_")
	assert.Contains(t, md, "_Sort: asc_")
	assert.Contains(t, md, "| Shown | $0.00 | $33.34 | -$33.34 |")
	assert.NotContains(t, md, "Salary")
}

func TestMarkdown_Empty(t *testing.T) {
	f, err := NewFormatter("USD")
	require.NoError(t, err)

	mv := services.MonthView{MonthSummary: summary.Build(summary.NewViewState(2024, time.February), nil, core.NewDate(2024, time.May, 15))}
	md, err := Markdown(mv, f)
	require.NoError(t, err)
	assert.Contains(t, md, "# February 2024")
	assert.Contains(t, md, "No records.")
}

func TestRender(t *testing.T) {
	out, err := Render("# Title\n\nSome *text*.\n", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}
