package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataset(t *testing.T) {
	ds, err := DecodeDataset([]byte(`{
		"items": [{"id":"a","name":"A"},{"id":"b","name":"B"}],
		"sortOptions": [{"id":"era","label":"Era","field":"attrs.era","order":"desc"}],
		"meta": {"title":"Wonders","defaultSort":"era"}
	}`))
	require.NoError(t, err)
	assert.Len(t, ds.Items, 2)
	assert.Equal(t, "Wonders", ds.Meta.Title)
	assert.True(t, ds.SortOptions[0].Descending())
}

func TestDecodeDataset_DuplicateAndMissingIDs(t *testing.T) {
	_, err := DecodeDataset([]byte(`{"items":[{"id":"a","name":"A"},{"id":"a","name":"A2"}]}`))
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = DecodeDataset([]byte(`{"items":[{"name":"Nameless"}]}`))
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = DecodeDataset([]byte(`{"items":`))
	assert.Error(t, err)
}

func TestDatasetDefaultOption(t *testing.T) {
	era := SortOption{ID: "era", Label: "Era", Field: "attrs.era", Order: Asc}
	cost := SortOption{ID: "cost", Label: "Cost", Field: "attrs.cost", Order: Desc}

	t.Run("declared default", func(t *testing.T) {
		ds := &Dataset{SortOptions: []SortOption{era, cost}, Meta: DatasetMeta{DefaultSort: "cost"}}
		assert.Equal(t, cost, ds.DefaultOption())
	})
	t.Run("unknown default falls back to first", func(t *testing.T) {
		ds := &Dataset{SortOptions: []SortOption{era, cost}, Meta: DatasetMeta{DefaultSort: "missing"}}
		assert.Equal(t, era, ds.DefaultOption())
	})
	t.Run("no options", func(t *testing.T) {
		ds := &Dataset{}
		assert.Equal(t, AlphabeticalOption(), ds.DefaultOption())
	})
	t.Run("nil dataset", func(t *testing.T) {
		var ds *Dataset
		assert.Equal(t, AlphabeticalSortID, ds.DefaultOption().ID)
	})
}

func TestDatasetOption_SyntheticAlphabetical(t *testing.T) {
	ds := &Dataset{}
	o, ok := ds.Option(AlphabeticalSortID)
	require.True(t, ok)
	assert.Equal(t, "name", o.Field)

	_, ok = ds.Option("era")
	assert.False(t, ok)
}

func TestResolveCategory(t *testing.T) {
	assert.Equal(t, Leaders, ResolveCategory("leaders"))
	assert.Equal(t, Wonders, ResolveCategory("bogus"))
	assert.Equal(t, Wonders, ResolveCategory(""))

	_, err := ParseCategory("bogus")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	assert.Equal(t, "City-States", CityStates.Label())
	assert.Equal(t, []Category{Wonders, NaturalWonders, Leaders, CityStates}, Categories())
}
