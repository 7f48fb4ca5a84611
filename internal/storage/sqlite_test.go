package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/meur/civatlas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "atlas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDataset() *models.Dataset {
	return &models.Dataset{
		Items: []models.Entity{
			{ID: "zeus", Name: "Statue of Zeus", Attrs: map[string]any{"era": "Classical"}, Coords: &models.Coords{Lat: 37.6, Lng: 21.6}},
			{ID: "alhambra", Name: "Alhambra", Theme: "medieval", Thumbs: &models.Thumbs{IRL: "img/alhambra.jpg"}},
			{ID: "oracle", Name: "Oracle", Detail: &models.Detail{Text: "Delphi", Links: []models.Link{{Label: "Wiki", URL: "https://example.org"}}}},
		},
		SortOptions: []models.SortOption{{ID: "era", Label: "Era", Field: "attrs.era", Order: models.Desc}},
		Meta:        models.DatasetMeta{Title: "Wonders", DefaultSort: "era"},
	}
}

func TestStore_PutAndFetchKeepsSuppliedOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := sampleDataset()
	require.NoError(t, store.PutDataset(ctx, models.Wonders, want))

	got, err := store.Fetch(ctx, models.Wonders)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_FetchMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Fetch(context.Background(), models.Leaders)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutDataset(ctx, models.Wonders, sampleDataset()))
	replacement := &models.Dataset{Items: []models.Entity{{ID: "petra", Name: "Petra"}}, SortOptions: []models.SortOption{}}
	require.NoError(t, store.PutDataset(ctx, models.Wonders, replacement))

	got, err := store.Fetch(ctx, models.Wonders)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Petra", got.Items[0].Name)
	assert.Empty(t, got.Meta.Title)
}

func TestStore_PutRejectsDuplicateIDs(t *testing.T) {
	store := newTestStore(t)
	ds := &models.Dataset{Items: []models.Entity{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}}
	assert.ErrorIs(t, store.PutDataset(context.Background(), models.Wonders, ds), models.ErrDuplicateID)
}

func TestStore_Categories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutDataset(ctx, models.Leaders, &models.Dataset{Items: []models.Entity{{ID: "g", Name: "Gandhi"}}, Meta: models.DatasetMeta{Title: "Leaders"}}))
	require.NoError(t, store.PutDataset(ctx, models.Wonders, sampleDataset()))

	infos, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryInfo{
		{ID: models.Wonders, Label: "Wonders", Title: "Wonders", ItemCount: 3},
		{ID: models.Leaders, Label: "Leaders", Title: "Leaders", ItemCount: 1},
	}, infos)
}

func TestStore_DeleteDataset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutDataset(ctx, models.Wonders, sampleDataset()))
	require.NoError(t, store.DeleteDataset(ctx, models.Wonders))

	_, err := store.Fetch(ctx, models.Wonders)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteDataset(ctx, models.Wonders), ErrNotFound)
}

func TestStore_ReopenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.db")
	first, err := New(path)
	require.NoError(t, err)
	require.NoError(t, first.PutDataset(context.Background(), models.Wonders, sampleDataset()))
	require.NoError(t, first.Close())

	second, err := New(path)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Fetch(context.Background(), models.Wonders)
	require.NoError(t, err)
	assert.Len(t, got.Items, 3)
}
