package query

import (
	"slices"

	"github.com/meur/civatlas/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Engine sorts entities with locale-aware, case-sensitive string
// comparison. An Engine is not safe for concurrent use.
type Engine struct {
	coll *collate.Collator
}

// NewEngine creates an Engine using English collation
func NewEngine() *Engine {
	return &Engine{coll: collate.New(language.English)}
}

// Sort returns a new slice ordered by opt. A nil option, or the
// alphabetical one, orders by name. Items lacking the sort field always
// come last, and equal keys are broken by ascending name.
func (e *Engine) Sort(items []models.Entity, opt *models.SortOption) []models.Entity {
	out := slices.Clone(items)

	if opt == nil || opt.ID == models.AlphabeticalSortID {
		slices.SortStableFunc(out, e.byName)
		return out
	}

	desc := opt.Descending()
	slices.SortStableFunc(out, func(a, b models.Entity) int {
		if c := e.compareField(a, b, opt.Field, desc); c != 0 {
			return c
		}
		return e.byName(a, b)
	})
	return out
}

func (e *Engine) byName(a, b models.Entity) int {
	return e.coll.CompareString(a.Name, b.Name)
}

func (e *Engine) compareField(a, b models.Entity, field string, desc bool) int {
	av, aok := Resolve(a, field)
	bv, bok := Resolve(b, field)

	switch {
	case !aok && !bok:
		return e.byName(a, b)
	case !aok:
		return 1
	case !bok:
		return -1
	}

	var c int
	an, aNum := toNumber(av)
	bn, bNum := toNumber(bv)
	if aNum && bNum {
		switch {
		case an < bn:
			c = -1
		case an > bn:
			c = 1
		}
	} else {
		as, _ := stringify(av)
		bs, _ := stringify(bv)
		c = e.coll.CompareString(as, bs)
	}

	if desc {
		return -c
	}
	return c
}
