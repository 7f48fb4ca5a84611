package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Entity is a single catalog record within a category.
// Optional fields decode leniently: a malformed value is treated as absent.
type Entity struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Attrs  map[string]any `json:"attrs,omitempty"`
	Coords *Coords        `json:"coords,omitempty"`
	Theme  string         `json:"theme,omitempty"`
	Thumbs *Thumbs        `json:"thumbs,omitempty"`
	Detail *Detail        `json:"detail,omitempty"`
}

// Coords is a latitude/longitude pair. Serialized as [lat, lng].
type Coords struct {
	Lat float64
	Lng float64
}

// Thumbs holds optional image references
type Thumbs struct {
	InGame string `json:"ingame,omitempty"`
	IRL    string `json:"irl,omitempty"`
}

// Detail is the long-form text and ordered external links
type Detail struct {
	Text  string `json:"text,omitempty"`
	Links []Link `json:"links,omitempty"`
}

// Link is a labeled external link
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// MarshalJSON encodes coordinates as a two element array
func (c Coords) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

// UnmarshalJSON implements lax decoding of an entity record
func (e *Entity) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID     json.RawMessage `json:"id"`
		Name   json.RawMessage `json:"name"`
		Attrs  json.RawMessage `json:"attrs"`
		Coords json.RawMessage `json:"coords"`
		Theme  json.RawMessage `json:"theme"`
		Thumbs json.RawMessage `json:"thumbs"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*e = Entity{
		ID:     laxString(raw.ID),
		Name:   laxString(raw.Name),
		Theme:  stringOnly(raw.Theme),
		Coords: parseCoords(raw.Coords),
		Thumbs: parseThumbs(raw.Thumbs),
		Detail: parseDetail(raw.Detail),
	}
	if len(raw.Attrs) > 0 {
		var attrs map[string]any
		if json.Unmarshal(raw.Attrs, &attrs) == nil {
			e.Attrs = attrs
		}
	}
	return nil
}

// Lookup exposes the entity as a nested record for dotted-path access
func (e Entity) Lookup(key string) (any, bool) {
	switch key {
	case "id":
		return e.ID, true
	case "name":
		if e.Name == "" {
			return nil, false
		}
		return e.Name, true
	case "theme":
		if e.Theme == "" {
			return nil, false
		}
		return e.Theme, true
	case "attrs":
		if e.Attrs == nil {
			return nil, false
		}
		return e.Attrs, true
	case "coords":
		if e.Coords == nil {
			return nil, false
		}
		return []any{e.Coords.Lat, e.Coords.Lng}, true
	case "thumbs":
		if e.Thumbs == nil {
			return nil, false
		}
		return map[string]any{"ingame": e.Thumbs.InGame, "irl": e.Thumbs.IRL}, true
	case "detail":
		if e.Detail == nil {
			return nil, false
		}
		return map[string]any{"text": e.Detail.Text}, true
	}
	return nil, false
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func laxString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// stringOnly decodes raw as a string; any other JSON type is absent.
func stringOnly(raw json.RawMessage) string {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// parseCoords accepts [lat, lng] or {"lat":..,"lng"|"lon":..}.
// Anything else (wrong arity, non-numeric members) is treated as absent.
func parseCoords(raw json.RawMessage) *Coords {
	if isNull(raw) {
		return nil
	}
	var pair []json.RawMessage
	if json.Unmarshal(raw, &pair) == nil {
		if len(pair) != 2 {
			return nil
		}
		var lat, lng float64
		if json.Unmarshal(pair[0], &lat) != nil || json.Unmarshal(pair[1], &lng) != nil {
			return nil
		}
		return &Coords{Lat: lat, Lng: lng}
	}

	var obj struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
		Lon *float64 `json:"lon"`
	}
	if json.Unmarshal(raw, &obj) != nil || obj.Lat == nil {
		return nil
	}
	switch {
	case obj.Lng != nil:
		return &Coords{Lat: *obj.Lat, Lng: *obj.Lng}
	case obj.Lon != nil:
		return &Coords{Lat: *obj.Lat, Lng: *obj.Lon}
	}
	return nil
}

func parseThumbs(raw json.RawMessage) *Thumbs {
	if isNull(raw) {
		return nil
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return nil
	}
	t := Thumbs{InGame: laxString(obj["ingame"]), IRL: laxString(obj["irl"])}
	if t.InGame == "" && t.IRL == "" {
		return nil
	}
	return &t
}

func parseDetail(raw json.RawMessage) *Detail {
	if isNull(raw) {
		return nil
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		if text == "" {
			return nil
		}
		return &Detail{Text: text}
	}

	var obj struct {
		Text  json.RawMessage   `json:"text"`
		Links []json.RawMessage `json:"links"`
	}
	if json.Unmarshal(raw, &obj) != nil {
		return nil
	}
	d := Detail{Text: laxString(obj.Text)}
	for _, lr := range obj.Links {
		var l struct {
			Label json.RawMessage `json:"label"`
			URL   json.RawMessage `json:"url"`
		}
		if json.Unmarshal(lr, &l) != nil {
			continue
		}
		link := Link{Label: laxString(l.Label), URL: laxString(l.URL)}
		if link.URL == "" {
			continue
		}
		if link.Label == "" {
			link.Label = link.URL
		}
		d.Links = append(d.Links, link)
	}
	if d.Text == "" && len(d.Links) == 0 {
		return nil
	}
	return &d
}
