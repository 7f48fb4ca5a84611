package viewsync

import (
	"github.com/meur/civatlas/internal/geo"
	"github.com/meur/civatlas/internal/models"
	"github.com/meur/civatlas/internal/query"
)

// derive recomputes everything in a fixed order: filtered set, then the
// sorted set for list and tray, then the marker set from the filtered items.
func (o *Orchestrator) derive(s State, version uint64) (View, geo.Set) {
	v := View{
		Version:       version,
		Category:      s.Category,
		CategoryLabel: s.Category.Label(),
		Loading:       s.Loading,
		Error:         s.LoadErr,
		Search:        s.Search,
		List:          []Row{},
		Tray:          []Row{},
		Markers:       []geo.Marker{},
	}
	ds := s.Dataset
	if ds == nil {
		return v, geo.Set{}
	}

	opt, ok := ds.Option(s.SortID)
	if !ok {
		opt = ds.DefaultOption()
	}
	v.Title = ds.Meta.Title
	v.Sort = SortView{Selected: opt.ID, Options: ds.SortOptions}
	if len(v.Sort.Options) == 0 {
		v.Sort.Options = []models.SortOption{models.AlphabeticalOption()}
	}

	filtered := query.Filter(ds.Items, s.Search, o.schema.SearchFields(s.Category))
	sorted := o.engine.Sort(filtered, &opt)
	markers := geo.Build(filtered, s.SelectedID, o.schema.Accent)

	for _, item := range sorted {
		row := o.row(item, s.SelectedID)
		v.List = append(v.List, row)
		if !row.OnMap {
			v.Tray = append(v.Tray, row)
		}
	}
	v.Markers = markers.All()
	v.Total = len(ds.Items)
	v.Matched = len(filtered)

	if len(filtered) == 0 {
		if name, ok := query.Suggest(ds.Items, s.Search); ok {
			v.Suggestion = name
		}
	}

	if s.SelectedID != "" && s.DetailOpen {
		if e, ok := ds.Find(s.SelectedID); ok {
			v.Detail = o.detail(e)
		}
	}
	return v, markers
}

func (o *Orchestrator) accent(theme string) string {
	if c := o.schema.Accent(theme); c != "" {
		return c
	}
	return geo.NeutralColor
}

func (o *Orchestrator) image(ref string) Image {
	return Image{Src: o.schema.Image(ref), Fallback: o.schema.Image("")}
}

func (o *Orchestrator) row(e models.Entity, selectedID string) Row {
	var thumb string
	if e.Thumbs != nil {
		thumb = e.Thumbs.InGame
	}
	return Row{
		ID:       e.ID,
		Name:     e.Name,
		Accent:   o.accent(e.Theme),
		Thumb:    o.image(thumb),
		Selected: e.ID == selectedID,
		OnMap:    geo.Projectable(e),
		Attrs:    e.Attrs,
	}
}

func (o *Orchestrator) detail(e models.Entity) *DetailView {
	d := &DetailView{
		ID:     e.ID,
		Name:   e.Name,
		Accent: o.accent(e.Theme),
		InGame: o.image(""),
		IRL:    o.image(""),
		Attrs:  e.Attrs,
	}
	if e.Thumbs != nil {
		d.InGame = o.image(e.Thumbs.InGame)
		d.IRL = o.image(e.Thumbs.IRL)
	}
	if e.Detail != nil {
		d.Text = e.Detail.Text
		d.Links = e.Detail.Links
	}
	if geo.Projectable(e) {
		d.Coords = e.Coords
	}
	return d
}
