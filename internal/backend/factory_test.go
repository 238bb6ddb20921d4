package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famledger/internal/config"
	"famledger/internal/core"
	"famledger/internal/ledger/memory"
)

func quietFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt)
	}
	assert.False(t, BackendType("sheets").IsValid())
	assert.Equal(t, []string{"memory", "sqlite", "postgres"}, GetBackendTypeStrings())
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:      "postgres",
		DatabaseURL:      "postgres://localhost/ledger",
		CategoryOrder:    "Home,Groceries",
		CategoryCacheTTL: time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, PostgresBackend, cfg.Type)
	assert.Equal(t, "postgres://localhost/ledger", cfg.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.cacheTTL())
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: PostgresBackend}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Equal(t, 5*time.Minute, Config{}.cacheTTL())
}

func TestCreateBackend_Memory(t *testing.T) {
	dir := t.TempDir()
	seed := "expense|Rent|home\nexpense|Food|utensils\nincome|Salary|wallet\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, memory.SeedFile), []byte(seed), 0o644))

	res, err := quietFactory().CreateBackend(context.Background(), Config{
		Type:          MemoryBackend,
		SeedDir:       dir,
		CategoryOrder: "Rent",
	})
	require.NoError(t, err)
	defer res.Close()

	require.NoError(t, res.Ping(context.Background()))
	cats, err := res.Catalog.ListCategories(context.Background(), core.Expense)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Rent", cats[0].Name)
	assert.Equal(t, "Food", cats[1].Name)
}

func TestCreateBackend_SQLite(t *testing.T) {
	res, err := quietFactory().CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "famledger.db"),
	})
	require.NoError(t, err)
	defer res.Close()

	require.NoError(t, res.Ping(context.Background()))
	cats, err := res.Catalog.ListCategories(context.Background(), core.Income)
	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestCreateBackend_InvalidConfig(t *testing.T) {
	_, err := quietFactory().CreateBackend(context.Background(), Config{Type: "sheets"})
	assert.Error(t, err)
}

func TestResult_CloseNil(t *testing.T) {
	var r *Result
	assert.NoError(t, r.Close())
}
