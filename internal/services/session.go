package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
)

// Credentials are the provider keys a new session starts with.
type Credentials struct {
	CompletionKey string
	SearchKey     string
}

// CredentialUpdate changes the keys whose fields are non-nil.
type CredentialUpdate struct {
	CompletionKey *string `json:"completionKey,omitempty"`
	SearchKey     *string `json:"searchKey,omitempty"`
}

// SessionService owns session lifecycle and credential changes.
type SessionService struct {
	store    store.Store
	defaults Credentials
}

func NewSessionService(s store.Store, defaults Credentials) *SessionService {
	return &SessionService{store: s, defaults: defaults}
}

// Create starts a session seeded with the configured default keys.
func (s *SessionService) Create(ctx context.Context) (*model.Session, error) {
	return s.store.Sessions().Create(ctx, &model.Session{
		SessionID:     uuid.NewString(),
		CompletionKey: s.defaults.CompletionKey,
		SearchKey:     s.defaults.SearchKey,
	})
}

// Get returns the session with its current plan attached, if any.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	sess, err := s.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	plan, err := s.store.Plans().Current(ctx, sessionID)
	switch {
	case err == nil:
		sess.Plan = plan
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}
	return sess, nil
}

func (s *SessionService) SaveCredentials(ctx context.Context, sessionID string, upd CredentialUpdate) (*model.Session, error) {
	sess, err := s.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	completion, search := sess.CompletionKey, sess.SearchKey
	if upd.CompletionKey != nil {
		completion = strings.TrimSpace(*upd.CompletionKey)
	}
	if upd.SearchKey != nil {
		search = strings.TrimSpace(*upd.SearchKey)
	}
	return s.store.Sessions().UpdateCredentials(ctx, sessionID, completion, search)
}

// ClearCredentials removes both keys, including the seeded defaults.
func (s *SessionService) ClearCredentials(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.store.Sessions().UpdateCredentials(ctx, sessionID, "", "")
}

func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	return s.store.Sessions().Delete(ctx, sessionID)
}
