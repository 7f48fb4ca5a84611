// Package geo projects entity coordinates onto a horizontally wrapped world
// map. Every projectable entity is drawn three times, one world-width apart,
// so the map can scroll sideways without gaps.
package geo

import (
	"math"

	"github.com/meur/civatlas/internal/models"
)

// NeutralColor is used for entities without a resolvable accent
const NeutralColor = "#9aa0a6"

// Shifts are the longitude offsets of the wrapped copies, in tie-break order
var Shifts = [3]float64{-360, 0, 360}

// Marker is one rendered copy of an entity pin
type Marker struct {
	ID       string  `json:"id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Shift    float64 `json:"shift"`
	Color    string  `json:"color"`
	Selected bool    `json:"selected"`
	Tooltip  string  `json:"tooltip"`
}

// Projectable reports whether the entity has usable coordinates.
// Entities that are not projectable belong in the tray.
func Projectable(e models.Entity) bool {
	if e.Coords == nil {
		return false
	}
	return finite(e.Coords.Lat) && finite(e.Coords.Lng)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Project returns the three wrapped markers of e, or false when e has no
// usable coordinates.
func Project(e models.Entity, selected bool, accent string) ([]Marker, bool) {
	if !Projectable(e) {
		return nil, false
	}
	if accent == "" {
		accent = NeutralColor
	}

	out := make([]Marker, 0, len(Shifts))
	for _, shift := range Shifts {
		out = append(out, Marker{
			ID:       e.ID,
			Lat:      e.Coords.Lat,
			Lng:      e.Coords.Lng + shift,
			Shift:    shift,
			Color:    accent,
			Selected: selected,
			Tooltip:  e.Name,
		})
	}
	return out, true
}

// BestForViewport picks the copy of id closest to the viewport center
// longitude. Ties go to the first candidate in shift order.
func BestForViewport(id string, markersByID map[string][]Marker, center float64) (Marker, bool) {
	candidates := markersByID[id]
	if len(candidates) == 0 {
		return Marker{}, false
	}

	best := candidates[0]
	bestDist := math.Abs(best.Lng - center)
	for _, m := range candidates[1:] {
		if d := math.Abs(m.Lng - center); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best, true
}
