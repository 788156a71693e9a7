package store

import (
	"context"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (memory, sqlite, postgres).
type Store interface {
	Sessions() Sessions
	Plans() Plans
	Close() error
}

// Sessions persists session identity and provider credentials.
// Get does not populate Session.Plan; use Plans().Current.
type Sessions interface {
	Create(ctx context.Context, s *model.Session) (*model.Session, error)
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	UpdateCredentials(ctx context.Context, sessionID, completionKey, searchKey string) (*model.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// Plans holds at most one current plan per session. Put replaces it wholesale.
type Plans interface {
	Put(ctx context.Context, sessionID string, p *model.Plan) (*model.Plan, error)
	Current(ctx context.Context, sessionID string) (*model.Plan, error)
	Clear(ctx context.Context, sessionID string) error
}
