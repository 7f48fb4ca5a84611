package query

import (
	"testing"

	"github.com/meur/civatlas/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	e := models.Entity{
		ID:    "ben",
		Name:  "Big Ben",
		Attrs: map[string]any{"era": "Industrial", "stats": map[string]any{"culture": 3.0, "none": nil}},
	}

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"name", "Big Ben", true},
		{"attrs.era", "Industrial", true},
		{"attrs.stats.culture", 3.0, true},
		{"attrs.stats.none", nil, false},
		{"attrs.missing", nil, false},
		{"attrs.era.deeper", nil, false},
		{"coords", nil, false},
		{"", nil, false},
		{"attrs..era", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Resolve(e, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_PlainMapsAndNil(t *testing.T) {
	got, ok := Resolve(map[string]any{"a": map[string]any{"b": "c"}}, "a.b")
	assert.True(t, ok)
	assert.Equal(t, "c", got)

	_, ok = Resolve(nil, "a")
	assert.False(t, ok)

	_, ok = Resolve(42, "a")
	assert.False(t, ok)
}
