// Package viewsync keeps the list, map, tray and detail surfaces in step.
// It owns the search/sort/selection state of one browsing session and turns
// every change into a freshly derived View.
package viewsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meur/civatlas/internal/geo"
	"github.com/meur/civatlas/internal/models"
	"github.com/meur/civatlas/internal/query"
	"github.com/meur/civatlas/internal/selection"
	"go.uber.org/zap"
)

var (
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrUnknownEntity = errors.New("unknown entity")
)

// Source retrieves the dataset of a category
type Source interface {
	Fetch(ctx context.Context, c models.Category) (*models.Dataset, error)
}

// Schema is the static per-category configuration
type Schema interface {
	SearchFields(c models.Category) []string
	Accent(theme string) string
	Image(ref string) string
}

// Renderer receives every derived View. It is called with the orchestrator
// locked and must not call back into it.
type Renderer interface {
	Render(View)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(View)

// Render calls f(v)
func (f RendererFunc) Render(v View) { f(v) }

// Surface names the presentation surface an intent came from
type Surface string

const (
	SurfaceList Surface = "list"
	SurfaceMap  Surface = "map"
	SurfaceTray Surface = "tray"
)

// Orchestrator serializes intents for one session. Dataset loads run in the
// background; a load whose category is no longer the requested one is dropped.
type Orchestrator struct {
	source   Source
	schema   Schema
	renderer Renderer
	log      *zap.Logger
	engine   *query.Engine

	ctx    context.Context
	cancel context.CancelFunc
	loads  sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	sel     *selection.Controller
	state   State
	view    View
	markers geo.Set
	pending chan struct{}
	seq     uint64
	version uint64
}

// New creates an orchestrator with no active category
func New(source Source, schema Schema, renderer Renderer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = RendererFunc(func(View) {})
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		source:   source,
		schema:   schema,
		renderer: renderer,
		log:      logger,
		engine:   query.NewEngine(),
		ctx:      ctx,
		cancel:   cancel,
		sel:      selection.NewController(""),
	}
	o.view, o.markers = o.derive(o.state, 0)
	return o
}

// Close cancels in-flight loads and waits for them to finish
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.loads.Wait()
}

// State returns the current snapshot
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// View returns the most recently derived view
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// SwitchCategory clears search, sort and selection and loads c. The returned
// channel is closed once the load has been applied or discarded. Switching
// to the category already shown is a no-op.
func (o *Orchestrator) SwitchCategory(c models.Category) <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	if c == o.state.Category {
		if o.state.Loading {
			return o.pending
		}
		if o.state.Dataset != nil {
			return closedChan()
		}
	}
	return o.startLoad(c)
}

// Reload fetches the active category again, resetting the session state
func (o *Orchestrator) Reload() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Category == "" {
		return closedChan()
	}
	return o.startLoad(o.state.Category)
}

func (o *Orchestrator) startLoad(c models.Category) <-chan struct{} {
	o.sel.SwitchCategory(c)
	o.seq++
	seq := o.seq
	o.transition(State{Category: c, Loading: true, seq: seq})

	done := make(chan struct{})
	o.pending = done
	if o.closed {
		close(done)
		return done
	}

	o.log.Debug("loading dataset", zap.String("category", string(c)), zap.Uint64("seq", seq))
	o.loads.Add(1)
	go func() {
		defer o.loads.Done()
		defer close(done)
		ds, err := o.source.Fetch(o.ctx, c)
		o.applyLoad(seq, c, ds, err)
	}()
	return done
}

func (o *Orchestrator) applyLoad(seq uint64, c models.Category, ds *models.Dataset, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || seq != o.seq || c != o.state.Category {
		o.log.Debug("discarding stale dataset", zap.String("category", string(c)), zap.Uint64("seq", seq))
		return
	}

	if err == nil && ds == nil {
		err = errors.New("empty response")
	}
	if err == nil {
		err = ds.Validate()
	}
	if err != nil {
		o.log.Warn("dataset load failed", zap.String("category", string(c)), zap.Error(err))
		o.transition(State{
			Category: c,
			LoadErr:  fmt.Sprintf("Could not load %s: %v", c.Label(), err),
			Search:   o.state.Search,
			seq:      seq,
		})
		return
	}

	// Search and sort typed while loading carry over to the loaded dataset.
	sortID := ds.DefaultOption().ID
	if opt, ok := ds.Option(o.state.SortID); ok && o.state.SortID != "" {
		sortID = opt.ID
	}
	o.log.Info("dataset loaded", zap.String("category", string(c)), zap.Int("items", len(ds.Items)))
	o.transition(State{
		Category: c,
		Dataset:  ds,
		Search:   o.state.Search,
		SortID:   sortID,
		seq:      seq,
	})
}

// SetSearch replaces the search text
func (o *Orchestrator) SetSearch(q string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := o.state
	next.Search = q
	o.transition(next)
}

// SetSort selects a sort option by id. Unknown ids fall back to the
// dataset's default ordering. While a load is pending the id is kept as
// requested and resolved once the dataset arrives. It returns the id
// recorded.
func (o *Orchestrator) SetSort(id string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Loading {
		next := o.state
		next.SortID = id
		o.transition(next)
		return id
	}

	opt, ok := o.state.Dataset.Option(id)
	if !ok {
		opt = o.state.Dataset.DefaultOption()
	}
	next := o.state
	next.SortID = opt.ID
	o.transition(next)
	return opt.ID
}

// Click routes a click from any surface through the toggle contract:
// clicking the selected entity while its detail is open closes it, anything
// else selects and opens.
func (o *Orchestrator) Click(from Surface, id string) (selection.Signal, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkEntity(id); err != nil {
		return selection.Signal{}, err
	}
	sig := o.sel.Toggle(id, o.state.DetailOpen)
	o.log.Debug("click", zap.String("surface", string(from)), zap.String("id", id), zap.Stringer("action", sig.Action))
	o.apply(sig)
	return sig, nil
}

// Select opens the detail of id unconditionally
func (o *Orchestrator) Select(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkEntity(id); err != nil {
		return err
	}
	o.apply(o.sel.Select(id))
	return nil
}

// CloseDetail clears the selection and closes the detail panel
func (o *Orchestrator) CloseDetail() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.apply(o.sel.Clear())
}

// BestMarker returns the wrapped copy of id nearest to the viewport center,
// for hover and tooltip placement.
func (o *Orchestrator) BestMarker(id string, centerLng float64) (geo.Marker, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.markers.Best(id, centerLng)
}

func (o *Orchestrator) checkEntity(id string) error {
	if o.state.Dataset == nil {
		return ErrNoDataset
	}
	if _, ok := o.state.Dataset.Find(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	return nil
}

func (o *Orchestrator) apply(sig selection.Signal) {
	next := o.state
	switch sig.Action {
	case selection.Open:
		next.SelectedID = sig.ID
		next.DetailOpen = true
	case selection.Close:
		next.SelectedID = ""
		next.DetailOpen = false
	}
	o.transition(next)
}

// transition installs next, derives its view and renders it. Callers hold mu.
func (o *Orchestrator) transition(next State) {
	o.state = next
	o.version++
	o.view, o.markers = o.derive(next, o.version)
	o.renderer.Render(o.view)
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
