package viewsync

import (
	"github.com/meur/civatlas/internal/geo"
	"github.com/meur/civatlas/internal/models"
)

// State is an immutable snapshot of everything the orchestrator owns.
// Transitions build a new State; the Dataset it points to is never mutated.
type State struct {
	Category   models.Category
	Dataset    *models.Dataset
	Loading    bool
	LoadErr    string
	Search     string
	SortID     string
	SelectedID string
	DetailOpen bool

	seq uint64
}

// View is the ready-to-render model for the list, tray, map and detail
// surfaces. Every transition produces a fresh View.
type View struct {
	Version       uint64          `json:"version"`
	Category      models.Category `json:"category"`
	CategoryLabel string          `json:"category_label"`
	Title         string          `json:"title,omitempty"`
	Loading       bool            `json:"loading"`
	Error         string          `json:"error,omitempty"`
	Search        string          `json:"search"`
	Sort          SortView        `json:"sort"`
	Total         int             `json:"total"`
	Matched       int             `json:"matched"`
	Suggestion    string          `json:"suggestion,omitempty"`
	List          []Row           `json:"list"`
	Tray          []Row           `json:"tray"`
	Markers       []geo.Marker    `json:"markers"`
	Detail        *DetailView     `json:"detail,omitempty"`
}

// SortView lists the selectable orderings and the active one
type SortView struct {
	Selected string              `json:"selected"`
	Options  []models.SortOption `json:"options"`
}

// Image is a resolved image reference. Src already falls back to the
// placeholder when the entity has none; clients swap to Fallback when Src
// fails to load.
type Image struct {
	Src      string `json:"src"`
	Fallback string `json:"fallback"`
}

// Row is one entity in the list or the tray
type Row struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Accent   string         `json:"accent"`
	Thumb    Image          `json:"thumb"`
	Selected bool           `json:"selected"`
	OnMap    bool           `json:"on_map"`
	Attrs    map[string]any `json:"attrs,omitempty"`
}

// DetailView is the content of the open detail panel
type DetailView struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Accent string         `json:"accent"`
	InGame Image          `json:"ingame"`
	IRL    Image          `json:"irl"`
	Text   string         `json:"text,omitempty"`
	Links  []models.Link  `json:"links,omitempty"`
	Attrs  map[string]any `json:"attrs,omitempty"`
	Coords *models.Coords `json:"coords,omitempty"`
}

// Names returns the list names in order
func (v View) Names() []string {
	out := make([]string, 0, len(v.List))
	for _, r := range v.List {
		out = append(out, r.Name)
	}
	return out
}
