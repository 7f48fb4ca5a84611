package selection

import (
	"testing"

	"github.com/meur/civatlas/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestToggleContract(t *testing.T) {
	c := NewController(models.Wonders)

	sig := c.Toggle("colosseum", false)
	assert.Equal(t, Signal{Action: Open, ID: "colosseum"}, sig)
	id, ok := c.Selected()
	assert.True(t, ok)
	assert.Equal(t, "colosseum", id)

	// Same id while the panel is open closes it.
	sig = c.Toggle("colosseum", true)
	assert.Equal(t, Signal{Action: Close}, sig)
	_, ok = c.Selected()
	assert.False(t, ok)

	// Third click with the panel closed reopens.
	sig = c.Toggle("colosseum", false)
	assert.Equal(t, Signal{Action: Open, ID: "colosseum"}, sig)
}

func TestToggle_SameIDPanelClosedReselects(t *testing.T) {
	c := NewController(models.Wonders)
	c.Select("a")

	sig := c.Toggle("a", false)
	assert.Equal(t, Open, sig.Action)
	id, _ := c.Selected()
	assert.Equal(t, "a", id)
}

func TestToggle_OtherIDSwitchesSelection(t *testing.T) {
	c := NewController(models.Wonders)
	c.Select("a")

	sig := c.Toggle("b", true)
	assert.Equal(t, Signal{Action: Open, ID: "b"}, sig)
	id, _ := c.Selected()
	assert.Equal(t, "b", id)
}

func TestSwitchCategoryClearsSelection(t *testing.T) {
	c := NewController(models.Wonders)
	c.Select("a")

	sig := c.SwitchCategory(models.Leaders)
	assert.Equal(t, Close, sig.Action)
	assert.Equal(t, models.Leaders, c.Category())
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "close", Close.String())
	assert.Equal(t, "none", Action(0).String())
}
