package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/meur/civatlas/internal/config"
	"github.com/meur/civatlas/internal/models"
	"github.com/meur/civatlas/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const wondersJSON = `{
  "items": [
    {"id": "colosseum", "name": "Colosseum", "coords": [41.89, 12.49]},
    {"id": "oracle", "name": "Oracle"}
  ],
  "meta": {"title": "World Wonders"}
}`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "atlas.db")},
		Datasets: config.DatasetsConfig{Dir: dir, Source: config.SourceFiles},
	}
}

func TestSeed(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Datasets.Dir, "wonders.json"), []byte(wondersJSON), 0o644))

	require.NoError(t, seed(context.Background(), cfg, models.Categories(), zap.NewNop()))

	store, err := storage.New(cfg.Database.Path)
	require.NoError(t, err)
	defer store.Close()

	ds, err := store.Fetch(context.Background(), models.Wonders)
	require.NoError(t, err)
	assert.Len(t, ds.Items, 2)

	_, err = store.Fetch(context.Background(), models.Leaders)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSeed_RejectsInvalidFile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Datasets.Dir, "wonders.json"), []byte(`{"items": [{"name": "No id"}]}`), 0o644))

	err := seed(context.Background(), cfg, []models.Category{models.Wonders}, zap.NewNop())
	assert.ErrorContains(t, err, "wonders.json")
}

func TestSelectCategories(t *testing.T) {
	all, err := selectCategories(nil)
	require.NoError(t, err)
	assert.Equal(t, models.Categories(), all)

	got, err := selectCategories([]string{"leaders", "city_states"})
	require.NoError(t, err)
	assert.Equal(t, []models.Category{models.Leaders, models.CityStates}, got)

	_, err = selectCategories([]string{"spaceships"})
	assert.ErrorIs(t, err, models.ErrUnknownCategory)
}
