package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meur/civatlas/internal/models"
	"github.com/meur/civatlas/internal/viewsync"
	"go.uber.org/zap"
)

// Registry holds live sessions in memory
type Registry struct {
	source viewsync.Source
	schema viewsync.Schema
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a registry whose sessions expire after ttl of
// inactivity. A zero ttl disables expiry.
func NewRegistry(source viewsync.Source, schema viewsync.Schema, ttl time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		source:   source,
		schema:   schema,
		ttl:      ttl,
		log:      logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session showing category c
func (r *Registry) Create(c models.Category) (*Session, <-chan struct{}) {
	id := uuid.New().String()
	hub := NewHub()
	s := &Session{
		ID:   id,
		hub:  hub,
		orch: viewsync.New(r.source, r.schema, hub, r.log.With(zap.String("session", id))),
	}
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.log.Debug("session created", zap.String("session", id), zap.String("category", string(c)))
	return s, s.orch.SwitchCategory(c)
}

// Get returns a live session and marks it as active
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Delete ends a session
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.close()
	}
	return ok
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep ends sessions idle for longer than the ttl. Sessions with live
// subscribers are kept.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	now := r.now()

	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.hub.Subscribers() == 0 && s.idleSince(now) > r.ttl {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		r.log.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done, then closes every session
func (r *Registry) Run(ctx context.Context) {
	if r.ttl > 0 {
		ticker := time.NewTicker(r.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.Close()
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}
	<-ctx.Done()
	r.Close()
}

// Close ends every session
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
