// Package catalog holds the static per-category table: searchable fields,
// accent palette and dataset file names.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/meur/civatlas/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultTable []byte

// CategorySpec describes one category
type CategorySpec struct {
	ID     models.Category `yaml:"id"`
	File   string          `yaml:"file"`
	Search []string        `yaml:"search"`
}

// Table is the declarative category table
type Table struct {
	Placeholder string            `yaml:"placeholder"`
	Palette     map[string]string `yaml:"palette"`
	Categories  []CategorySpec    `yaml:"categories"`

	byID map[models.Category]CategorySpec
}

// Load parses the embedded table
func Load() (*Table, error) {
	return Parse(defaultTable)
}

// Parse decodes a table and checks that every category is covered
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("catalog.yaml: %w", err)
	}

	t.byID = make(map[models.Category]CategorySpec, len(t.Categories))
	for i, spec := range t.Categories {
		if !spec.ID.Valid() {
			return nil, fmt.Errorf("catalog.yaml: category %q: %w", spec.ID, models.ErrUnknownCategory)
		}
		if !slices.Contains(spec.Search, "name") {
			spec.Search = append([]string{"name"}, spec.Search...)
		}
		if spec.File == "" {
			spec.File = string(spec.ID) + ".json"
		}
		t.Categories[i] = spec
		t.byID[spec.ID] = spec
	}
	for _, c := range models.Categories() {
		if _, ok := t.byID[c]; !ok {
			return nil, fmt.Errorf("catalog.yaml: missing category %q", c)
		}
	}

	normalized := make(map[string]string, len(t.Palette))
	for k, v := range t.Palette {
		normalized[strings.ToLower(k)] = v
	}
	t.Palette = normalized
	return &t, nil
}

// SearchFields returns the dotted paths searched for category c
func (t *Table) SearchFields(c models.Category) []string {
	if spec, ok := t.byID[c]; ok {
		return spec.Search
	}
	return []string{"name"}
}

// File returns the dataset file name for c
func (t *Table) File(c models.Category) string {
	if spec, ok := t.byID[c]; ok {
		return spec.File
	}
	return string(c) + ".json"
}

// Accent resolves a theme key to a color. Literal hex colors pass through;
// unknown keys resolve to "".
func (t *Table) Accent(theme string) string {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return ""
	}
	if strings.HasPrefix(theme, "#") {
		return theme
	}
	return t.Palette[strings.ToLower(theme)]
}

// Image returns ref, or the placeholder asset when ref is empty
func (t *Table) Image(ref string) string {
	if strings.TrimSpace(ref) == "" {
		return t.Placeholder
	}
	return ref
}
