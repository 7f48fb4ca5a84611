// Package session manages browsing sessions, each owning its own
// orchestrator and view fan-out.
package session

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/meur/civatlas/internal/models"
	"github.com/meur/civatlas/internal/viewsync"
)

// ErrUnknownIntent is returned for intents with an unrecognised type
var ErrUnknownIntent = errors.New("unknown intent")

// Intent types accepted by Apply
const (
	IntentCategory = "category"
	IntentReload   = "reload"
	IntentSearch   = "search"
	IntentSort     = "sort"
	IntentClick    = "click"
	IntentSelect   = "select"
	IntentClose    = "close"
)

// Intent is a user action forwarded by a presentation surface
type Intent struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
	SortID   string `json:"sort_id,omitempty"`
	ID       string `json:"id,omitempty"`
	Surface  string `json:"surface,omitempty"`
}

// Session is one browsing session
type Session struct {
	ID string

	orch     *viewsync.Orchestrator
	hub      *Hub
	lastSeen atomic.Int64
}

// Orchestrator returns the session's view orchestrator
func (s *Session) Orchestrator() *viewsync.Orchestrator {
	return s.orch
}

// View returns the latest view
func (s *Session) View() viewsync.View {
	return s.orch.View()
}

// Subscribe streams views, starting with the current one
func (s *Session) Subscribe() (<-chan viewsync.View, func()) {
	return s.hub.Subscribe()
}

func (s *Session) close() {
	s.orch.Close()
	s.hub.Close()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// Apply routes an intent to the orchestrator. The returned channel is
// closed once any dataset load it started has been applied.
func (s *Session) Apply(in Intent) (<-chan struct{}, error) {
	o := s.orch
	switch in.Type {
	case IntentCategory:
		return o.SwitchCategory(models.ResolveCategory(in.Category)), nil
	case IntentReload:
		return o.Reload(), nil
	case IntentSearch:
		o.SetSearch(in.Query)
	case IntentSort:
		o.SetSort(in.SortID)
	case IntentClick:
		surface := viewsync.Surface(in.Surface)
		if surface == "" {
			surface = viewsync.SurfaceList
		}
		if _, err := o.Click(surface, in.ID); err != nil {
			return nil, err
		}
	case IntentSelect:
		if err := o.Select(in.ID); err != nil {
			return nil, err
		}
	case IntentClose:
		o.CloseDetail()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
	}
	return done(), nil
}

func done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
