// Package selection holds the single-selection state shared by the list,
// map and tray surfaces.
package selection

import "github.com/meur/civatlas/internal/models"

// Action tells the detail surface what to do after a selection change
type Action int

const (
	// Open shows (or updates) the detail panel for Signal.ID
	Open Action = iota + 1
	// Close hides the detail panel
	Close
)

func (a Action) String() string {
	switch a {
	case Open:
		return "open"
	case Close:
		return "close"
	}
	return "none"
}

// Signal is emitted by every state-changing operation
type Signal struct {
	Action Action
	ID     string
}

// Controller holds the selected entity id and the active category.
// The zero value has nothing selected and no active category.
type Controller struct {
	selectedID string
	category   models.Category
}

// NewController creates a controller for the given category
func NewController(c models.Category) *Controller {
	return &Controller{category: c}
}

// Selected returns the selected id, or false when nothing is selected
func (c *Controller) Selected() (string, bool) {
	return c.selectedID, c.selectedID != ""
}

// Category returns the active category
func (c *Controller) Category() models.Category {
	return c.category
}

// Select sets the selection unconditionally
func (c *Controller) Select(id string) Signal {
	c.selectedID = id
	return Signal{Action: Open, ID: id}
}

// Toggle closes the detail panel when id is already selected and the panel
// is open. In every other case it selects id and opens the panel.
func (c *Controller) Toggle(id string, detailOpen bool) Signal {
	if id != "" && id == c.selectedID && detailOpen {
		return c.Clear()
	}
	return c.Select(id)
}

// Clear drops the selection
func (c *Controller) Clear() Signal {
	c.selectedID = ""
	return Signal{Action: Close}
}

// SwitchCategory clears the selection before changing category
func (c *Controller) SwitchCategory(next models.Category) Signal {
	sig := c.Clear()
	c.category = next
	return sig
}
