package geo

import "github.com/meur/civatlas/internal/models"

// Set is the complete marker layer for one filtered item set. It is built
// in one pass and never mutated afterwards.
type Set struct {
	byID  map[string][]Marker
	order []string
}

// Build projects every item, keeping item order. Items without usable
// coordinates are skipped.
func Build(items []models.Entity, selectedID string, accent func(theme string) string) Set {
	s := Set{byID: make(map[string][]Marker, len(items))}
	for _, item := range items {
		color := ""
		if accent != nil {
			color = accent(item.Theme)
		}
		markers, ok := Project(item, item.ID == selectedID, color)
		if !ok {
			continue
		}
		s.byID[item.ID] = markers
		s.order = append(s.order, item.ID)
	}
	return s
}

// Len returns the number of entities with markers
func (s Set) Len() int {
	return len(s.order)
}

// Has reports whether id has markers in the set
func (s Set) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Markers returns the copies for id
func (s Set) Markers(id string) []Marker {
	return s.byID[id]
}

// All returns every marker, grouped per entity in item order
func (s Set) All() []Marker {
	out := make([]Marker, 0, len(s.order)*len(Shifts))
	for _, id := range s.order {
		out = append(out, s.byID[id]...)
	}
	return out
}

// Best is BestForViewport over this set
func (s Set) Best(id string, center float64) (Marker, bool) {
	return BestForViewport(id, s.byID, center)
}
