package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/rangepick/internal/config"
	"github.com/jask/rangepick/internal/dateadapter"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-max-span", "31", "-required", "-week-start", "sunday"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, 31, o.maxSpan)
	require.True(t, o.required)
	require.False(t, o.noDB)
	require.Equal(t, "sunday", o.weekStart)

	_, err = parseFlags([]string{"-max-span", "-3"}, io.Discard)
	require.Error(t, err)
	_, err = parseFlags([]string{"-bogus"}, io.Discard)
	require.Error(t, err)
}

func TestApplyOverridesOnlySetFields(t *testing.T) {
	cfg := config.Config{UI: config.UIConfig{DateFormat: "2006-01-02", WeekStart: "monday", Timezone: "Local"}}
	options{dateFormat: "02/01/2006"}.apply(&cfg)
	require.Equal(t, "02/01/2006", cfg.UI.DateFormat)
	require.Equal(t, "monday", cfg.UI.WeekStart)
	require.Equal(t, "Local", cfg.UI.Timezone)
}

func TestRunSaveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rangepick", "config.toml")
	t.Setenv("HOME", dir)
	t.Setenv("RANGEPICK_CONFIG", path)

	require.NoError(t, run([]string{"-save-config", "-week-start", "sunday", "-date-format", "02/01/2006", "-timezone", "UTC"}))
	_, err := os.Stat(path)
	require.NoError(t, err)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "02/01/2006", cfg.UI.DateFormat)
	require.Equal(t, time.Sunday, cfg.UI.Weekday())
	loc, err := cfg.UI.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}

func TestRunRejectsBadFlags(t *testing.T) {
	require.Error(t, run([]string{"-max-span", "-1"}))
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	migrations, err := filepath.Abs("../../internal/database/migrations")
	require.NoError(t, err)
	presetsFile := filepath.Join(dir, "presets.toml")
	require.NoError(t, os.WriteFile(presetsFile, []byte(`
[[preset]]
name = "Q1"
from = "2026-01-01"
to = "2026-03-31"
`), 0o644))

	cfg := config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "db", "rangepick.db"), Migrations: migrations},
		UI:       config.UIConfig{PresetsFile: presetsFile},
	}
	adapter := dateadapter.New(dateadapter.WithLocation(time.UTC))
	store, closeDB, err := openStore(context.Background(), cfg, time.UTC, adapter)
	require.NoError(t, err)
	t.Cleanup(closeDB)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Q1", list[0].Name)
}

func TestOpenStoreFailsOnMissingMigrations(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{Database: config.DatabaseConfig{
		Path:       filepath.Join(dir, "rangepick.db"),
		Migrations: filepath.Join(dir, "nope"),
	}}
	_, _, err := openStore(context.Background(), cfg, time.UTC, dateadapter.New())
	require.Error(t, err)
}
