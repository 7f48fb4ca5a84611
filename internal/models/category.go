package models

import "errors"

// Category identifies one of the fixed entity groupings
type Category string

const (
	Wonders        Category = "wonders"
	NaturalWonders Category = "natural_wonders"
	Leaders        Category = "leaders"
	CityStates     Category = "city_states"
)

// ErrUnknownCategory is returned when parsing an id outside the fixed set
var ErrUnknownCategory = errors.New("unknown category")

var categories = []Category{Wonders, NaturalWonders, Leaders, CityStates}

var categoryLabels = map[Category]string{
	Wonders:        "Wonders",
	NaturalWonders: "Natural Wonders",
	Leaders:        "Leaders",
	CityStates:     "City-States",
}

// Categories returns every category in tab order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// DefaultCategory is the category shown when navigation supplies nothing usable
func DefaultCategory() Category {
	return categories[0]
}

// Label returns the human-readable tab label
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory converts a raw id into a Category
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// ResolveCategory maps an untrusted id (e.g. a URL query parameter) onto a
// valid category, falling back to the default one.
func ResolveCategory(raw string) Category {
	c, err := ParseCategory(raw)
	if err != nil {
		return DefaultCategory()
	}
	return c
}

// CategoryInfo is the listing shape served to navigation
type CategoryInfo struct {
	ID        Category `json:"id"`
	Label     string   `json:"label"`
	Title     string   `json:"title,omitempty"`
	ItemCount int      `json:"item_count"`
}
