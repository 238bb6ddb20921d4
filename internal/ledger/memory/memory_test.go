package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famledger/internal/catalog"
	"famledger/internal/core"
	"famledger/internal/ledger"
	"famledger/internal/ledger/ledgertest"
)

func TestStoreContract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Store {
		return New(nil)
	})
}

func TestNewFromFiles_Defaults(t *testing.T) {
	s := NewFromFiles(t.TempDir())
	cats, err := s.ListCategories(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, cats, len(DefaultCategories()))
}

func TestNewFromFiles_Seed(t *testing.T) {
	dir := t.TempDir()
	seed := "# kind|name|icon\nexpense|Food|utensils\nexpense|food|cart\nincome|Salary|wallet\n\nexpense|Pets|dragon\nbogus|Nope|home\nexpense\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644))

	s := NewFromFiles(dir)
	ctx := context.Background()

	exp, err := s.ListCategories(ctx, core.Expense)
	require.NoError(t, err)
	require.Len(t, exp, 2)
	assert.Equal(t, "Food", exp[0].Name)
	assert.Equal(t, catalog.IconUtensils, exp[0].Icon)
	assert.Equal(t, "Pets", exp[1].Name)
	assert.Equal(t, catalog.DefaultIcon, exp[1].Icon)

	inc, err := s.ListCategories(ctx, core.Income)
	require.NoError(t, err)
	require.Len(t, inc, 1)

	c, err := s.GetCategory(ctx, inc[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Salary", c.Name)

	_, err = s.GetCategory(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInactiveCategoriesHidden(t *testing.T) {
	s := New([]catalog.Category{
		{Kind: core.Expense, Name: "Old", Active: false},
		{Kind: core.Expense, Name: "New", Active: true},
	})
	cats, err := s.ListCategories(context.Background(), core.Expense)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "New", cats[0].Name)
}
