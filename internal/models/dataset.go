package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AlphabeticalSortID designates the name-only ordering
const AlphabeticalSortID = "alphabetical"

var (
	ErrDuplicateID = errors.New("duplicate entity id")
	ErrMissingID   = errors.New("entity without id")
)

// SortOrder is the requested direction of a sort descriptor
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// SortOption is a selectable ordering over a dotted-path field
type SortOption struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// Descending reports whether the option flips the primary comparison
func (o SortOption) Descending() bool {
	return strings.EqualFold(string(o.Order), string(Desc))
}

// AlphabeticalOption is the synthetic option used when a dataset declares none
func AlphabeticalOption() SortOption {
	return SortOption{ID: AlphabeticalSortID, Label: "Name (A-Z)", Field: "name", Order: Asc}
}

// DatasetMeta holds dataset-level settings
type DatasetMeta struct {
	Title       string `json:"title"`
	DefaultSort string `json:"defaultSort,omitempty"`
}

// Dataset is the full catalog of one category
type Dataset struct {
	Items       []Entity     `json:"items"`
	SortOptions []SortOption `json:"sortOptions"`
	Meta        DatasetMeta  `json:"meta"`
}

// DecodeDataset parses and validates a dataset payload
func DecodeDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks that every item carries a unique id
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Items))
	for i, item := range d.Items {
		if item.ID == "" {
			return fmt.Errorf("item %d (%q): %w", i, item.Name, ErrMissingID)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// Find returns the item with the given id
func (d *Dataset) Find(id string) (Entity, bool) {
	if d == nil {
		return Entity{}, false
	}
	for _, item := range d.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Entity{}, false
}

// Option returns the sort option with the given id. The synthetic
// alphabetical option is always available.
func (d *Dataset) Option(id string) (SortOption, bool) {
	if d != nil {
		for _, o := range d.SortOptions {
			if o.ID == id {
				return o, true
			}
		}
	}
	if id == AlphabeticalSortID {
		return AlphabeticalOption(), true
	}
	return SortOption{}, false
}

// DefaultOption resolves the declared default sort, then the first option,
// then the synthetic alphabetical one.
func (d *Dataset) DefaultOption() SortOption {
	if d == nil {
		return AlphabeticalOption()
	}
	if d.Meta.DefaultSort != "" {
		if o, ok := d.Option(d.Meta.DefaultSort); ok {
			return o
		}
	}
	if len(d.SortOptions) > 0 {
		return d.SortOptions[0]
	}
	return AlphabeticalOption()
}
