package query

import (
	"testing"

	"github.com/meur/civatlas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []models.Entity) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func sampleItems() []models.Entity {
	return []models.Entity{
		{ID: "colosseum", Name: "Colosseum", Attrs: map[string]any{"era": "Classical", "cost": 120.0}},
		{ID: "ben", Name: "Big Ben", Attrs: map[string]any{"era": "Industrial", "cost": 335.0}},
		{ID: "pyramids", Name: "Pyramids", Attrs: map[string]any{"era": "Ancient", "cost": 60.0}},
		{ID: "oracle", Name: "Oracle"},
	}
}

var searchFields = []string{"name", "attrs.era", "attrs.cost"}

func TestFilter(t *testing.T) {
	items := sampleItems()

	assert.Equal(t, []string{"Big Ben"}, names(Filter(items, "BEN", searchFields)))
	assert.Equal(t, []string{"Colosseum"}, names(Filter(items, "classic", searchFields)))
	assert.Equal(t, []string{"Big Ben"}, names(Filter(items, "335", searchFields)))
	assert.Empty(t, Filter(items, "zzz", searchFields))
}

func TestFilter_BlankQueryIsNoOp(t *testing.T) {
	items := sampleItems()
	for _, q := range []string{"", "   ", "\t\n"} {
		assert.Equal(t, items, Filter(items, q, searchFields))
	}
}

func TestFilter_Idempotent(t *testing.T) {
	items := sampleItems()
	for _, q := range []string{"o", "an", "1", "ben"} {
		once := Filter(items, q, searchFields)
		assert.Equal(t, once, Filter(once, q, searchFields), q)
	}
}

func TestFilter_OnlyListedFields(t *testing.T) {
	items := sampleItems()
	assert.Empty(t, Filter(items, "industrial", []string{"name"}))
}

func TestStringify(t *testing.T) {
	s, ok := stringify([]any{"a", 2.5, true})
	require.True(t, ok)
	assert.Equal(t, "a,2.5,true", s)

	_, ok = stringify(map[string]any{})
	assert.False(t, ok)
}

func TestSuggest(t *testing.T) {
	items := sampleItems()

	got, ok := Suggest(items, "colloseum")
	require.True(t, ok)
	assert.Equal(t, "Colosseum", got)

	_, ok = Suggest(items, "qqqqqqqqqq")
	assert.False(t, ok)

	_, ok = Suggest(items, "  ")
	assert.False(t, ok)
}
