package query

import (
	"math/rand"
	"testing"

	"github.com/meur/civatlas/internal/models"
	"github.com/stretchr/testify/assert"
)

func opt(id, field string, order models.SortOrder) *models.SortOption {
	return &models.SortOption{ID: id, Label: id, Field: field, Order: order}
}

func TestSort_ByNameDefault(t *testing.T) {
	e := NewEngine()
	items := []models.Entity{
		{ID: "c", Name: "Colosseum", Attrs: map[string]any{"era": "Classical"}},
		{ID: "b", Name: "Big Ben", Attrs: map[string]any{"era": "Industrial"}},
	}

	assert.Equal(t, []string{"Big Ben", "Colosseum"}, names(e.Sort(items, nil)))
	assert.Equal(t, []string{"Big Ben", "Colosseum"}, names(e.Sort(items, opt(models.AlphabeticalSortID, "attrs.era", models.Desc))))
	assert.Equal(t, []string{"Big Ben", "Colosseum"}, names(e.Sort(items, opt("name", "name", models.Asc))))
}

func TestSort_StringDescending(t *testing.T) {
	e := NewEngine()
	items := []models.Entity{
		{ID: "c", Name: "Colosseum", Attrs: map[string]any{"era": "Classical"}},
		{ID: "b", Name: "Big Ben", Attrs: map[string]any{"era": "Industrial"}},
	}
	assert.Equal(t, []string{"Big Ben", "Colosseum"}, names(e.Sort(items, opt("era", "attrs.era", models.Desc))))
	assert.Equal(t, []string{"Colosseum", "Big Ben"}, names(e.Sort(items, opt("era", "attrs.era", models.Asc))))
}

func TestSort_Numeric(t *testing.T) {
	e := NewEngine()
	items := sampleItems()

	assert.Equal(t, []string{"Pyramids", "Colosseum", "Big Ben", "Oracle"}, names(e.Sort(items, opt("cost", "attrs.cost", models.Asc))))
	assert.Equal(t, []string{"Big Ben", "Colosseum", "Pyramids", "Oracle"}, names(e.Sort(items, opt("cost", "attrs.cost", models.Desc))))
}

func TestSort_NumbersCompareNumerically(t *testing.T) {
	e := NewEngine()
	items := []models.Entity{
		{ID: "a", Name: "A", Attrs: map[string]any{"n": 100.0}},
		{ID: "b", Name: "B", Attrs: map[string]any{"n": 9.0}},
	}
	assert.Equal(t, []string{"B", "A"}, names(e.Sort(items, opt("n", "attrs.n", models.Asc))))
}

func TestSort_NamelessItemsLastOnNameField(t *testing.T) {
	e := NewEngine()
	items := []models.Entity{
		{ID: "x"},
		{ID: "c", Name: "Colosseum"},
		{ID: "b", Name: "Big Ben"},
	}
	assert.Equal(t, []string{"b", "c", "x"}, ids(e.Sort(items, opt("by-name", "name", models.Asc))))
	assert.Equal(t, []string{"c", "b", "x"}, ids(e.Sort(items, opt("by-name", "name", models.Desc))))
}

func TestSort_UndefinedAlwaysLast(t *testing.T) {
	e := NewEngine()
	items := []models.Entity{
		{ID: "z", Name: "Zed"},
		{ID: "a", Name: "Alpha"},
		{ID: "m", Name: "Mid", Attrs: map[string]any{"era": "Medieval"}},
		{ID: "n", Name: "Neo", Attrs: map[string]any{"era": "Modern"}},
	}

	for _, order := range []models.SortOrder{models.Asc, models.Desc} {
		got := names(e.Sort(items, opt("era", "attrs.era", order)))
		assert.ElementsMatch(t, []string{"Mid", "Neo"}, got[:2], order)
		// Both undefined: ascending name, regardless of direction.
		assert.Equal(t, []string{"Alpha", "Zed"}, got[2:], order)
	}
}

func TestSort_TieBreakAlwaysAscendingName(t *testing.T) {
	e := NewEngine()
	items := []models.Entity{
		{ID: "3", Name: "Gamma", Attrs: map[string]any{"era": "Ancient"}},
		{ID: "1", Name: "Alpha", Attrs: map[string]any{"era": "Ancient"}},
		{ID: "2", Name: "Beta", Attrs: map[string]any{"era": "Ancient"}},
		{ID: "4", Name: "Delta", Attrs: map[string]any{"era": "Modern"}},
	}
	assert.Equal(t, []string{"Delta", "Alpha", "Beta", "Gamma"}, names(e.Sort(items, opt("era", "attrs.era", models.Desc))))
}

func TestSort_DeterministicAcrossInputOrders(t *testing.T) {
	e := NewEngine()
	items := sampleItems()
	want := names(e.Sort(items, opt("era", "attrs.era", models.Desc)))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Entity(nil), items...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, names(e.Sort(shuffled, opt("era", "attrs.era", models.Desc))))
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	e := NewEngine()
	items := sampleItems()
	before := names(items)
	_ = e.Sort(items, opt("cost", "attrs.cost", models.Desc))
	assert.Equal(t, before, names(items))
}

func TestSort_CaseSensitiveLocaleOrder(t *testing.T) {
	e := NewEngine()
	items := []models.Entity{
		{ID: "1", Name: "beta"},
		{ID: "2", Name: "Alpha"},
		{ID: "3", Name: "alpha"},
	}
	got := names(e.Sort(items, nil))
	// Primary order is alphabetical; case only separates otherwise equal names.
	assert.Equal(t, "beta", got[2])
	assert.ElementsMatch(t, []string{"Alpha", "alpha"}, got[:2])
}

func ids(items []models.Entity) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
