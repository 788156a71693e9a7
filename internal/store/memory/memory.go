// Package memory is the default in-process session store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
)

// New returns an empty store. Values are copied in and out so callers never
// share mutable state with the store.
func New() store.Store {
	return &memStore{
		sessions: make(map[string]model.Session),
		plans:    make(map[string]model.Plan),
	}
}

type memStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	plans    map[string]model.Plan
}

func (s *memStore) Sessions() store.Sessions { return sessions{s} }
func (s *memStore) Plans() store.Plans       { return plans{s} }
func (s *memStore) Close() error             { return nil }

// HealthPing implements health.HealthPinger.
func (s *memStore) HealthPing(context.Context) error { return nil }

type sessions struct{ s *memStore }

func (x sessions) Create(_ context.Context, in *model.Session) (*model.Session, error) {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	if _, ok := x.s.sessions[in.SessionID]; ok {
		return nil, fmt.Errorf("session %s already exists", in.SessionID)
	}
	now := time.Now().UTC()
	out := *in
	out.Plan = nil
	out.CreatedAt, out.UpdatedAt = now, now
	x.s.sessions[out.SessionID] = out
	return &out, nil
}

func (x sessions) Get(_ context.Context, sessionID string) (*model.Session, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()
	sess, ok := x.s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	return &sess, nil
}

func (x sessions) UpdateCredentials(_ context.Context, sessionID, completionKey, searchKey string) (*model.Session, error) {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	sess, ok := x.s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	sess.CompletionKey = completionKey
	sess.SearchKey = searchKey
	sess.UpdatedAt = time.Now().UTC()
	x.s.sessions[sessionID] = sess
	return &sess, nil
}

func (x sessions) Delete(_ context.Context, sessionID string) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	if _, ok := x.s.sessions[sessionID]; !ok {
		return fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	delete(x.s.sessions, sessionID)
	delete(x.s.plans, sessionID)
	return nil
}

type plans struct{ s *memStore }

func (x plans) Put(_ context.Context, sessionID string, p *model.Plan) (*model.Plan, error) {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	sess, ok := x.s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	out := clonePlan(*p)
	x.s.plans[sessionID] = out
	sess.UpdatedAt = time.Now().UTC()
	x.s.sessions[sessionID] = sess
	cp := clonePlan(out)
	return &cp, nil
}

func (x plans) Current(_ context.Context, sessionID string) (*model.Plan, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()
	p, ok := x.s.plans[sessionID]
	if !ok {
		return nil, fmt.Errorf("plan for session %s: %w", sessionID, model.ErrNotFound)
	}
	cp := clonePlan(p)
	return &cp, nil
}

func (x plans) Clear(_ context.Context, sessionID string) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	if _, ok := x.s.sessions[sessionID]; !ok {
		return fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	delete(x.s.plans, sessionID)
	return nil
}

func clonePlan(p model.Plan) model.Plan {
	p.Citations = append([]string(nil), p.Citations...)
	p.Trip.Interests = append([]string(nil), p.Trip.Interests...)
	return p
}
