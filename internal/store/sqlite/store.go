// Package sqlite persists sessions in a single-file SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
)

const (
	tsLayout   = time.RFC3339Nano
	dateLayout = "2006-01-02"
)

// New opens the database at path and returns a store that owns it.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Sessions() store.Sessions { return &sessions{db: s.db} }
func (s *sqliteStore) Plans() store.Plans       { return &plans{db: s.db} }
func (s *sqliteStore) Close() error             { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

type sessions struct{ db *sql.DB }

func (x *sessions) Create(ctx context.Context, in *model.Session) (*model.Session, error) {
	now := time.Now().UTC()
	_, err := x.db.ExecContext(ctx, `
        INSERT INTO sessions (session_id, completion_key, search_key, created_at, updated_at)
        VALUES (?,?,?,?,?)`,
		in.SessionID, in.CompletionKey, in.SearchKey, now.Format(tsLayout), now.Format(tsLayout))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	out := *in
	out.Plan = nil
	out.CreatedAt, out.UpdatedAt = now, now
	return &out, nil
}

func (x *sessions) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	row := x.db.QueryRowContext(ctx, `
        SELECT session_id, completion_key, search_key, created_at, updated_at
        FROM sessions WHERE session_id = ?`, sessionID)
	return scanSession(row, sessionID)
}

func (x *sessions) UpdateCredentials(ctx context.Context, sessionID, completionKey, searchKey string) (*model.Session, error) {
	res, err := x.db.ExecContext(ctx, `
        UPDATE sessions SET completion_key = ?, search_key = ?, updated_at = ?
        WHERE session_id = ?`,
		completionKey, searchKey, time.Now().UTC().Format(tsLayout), sessionID)
	if err != nil {
		return nil, fmt.Errorf("update credentials: %w", err)
	}
	if err := mustAffect(res, sessionID); err != nil {
		return nil, err
	}
	return x.Get(ctx, sessionID)
}

func (x *sessions) Delete(ctx context.Context, sessionID string) error {
	res, err := x.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return mustAffect(res, sessionID)
}

type plans struct{ db *sql.DB }

func (x *plans) Put(ctx context.Context, sessionID string, p *model.Plan) (*model.Plan, error) {
	trip, err := json.Marshal(p.Trip)
	if err != nil {
		return nil, err
	}
	citations, err := json.Marshal(nonNil(p.Citations))
	if err != nil {
		return nil, err
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE session_id = ?`,
		time.Now().UTC().Format(tsLayout), sessionID)
	if err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	if err := mustAffect(res, sessionID); err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO plans (session_id, trip, itinerary, citations, start_date, generated_at)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(session_id) DO UPDATE SET
            trip = excluded.trip,
            itinerary = excluded.itinerary,
            citations = excluded.citations,
            start_date = excluded.start_date,
            generated_at = excluded.generated_at`,
		sessionID, string(trip), p.Itinerary, string(citations),
		p.StartDate.Format(dateLayout), p.GeneratedAt.UTC().Format(tsLayout))
	if err != nil {
		return nil, fmt.Errorf("upsert plan: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return x.Current(ctx, sessionID)
}

func (x *plans) Current(ctx context.Context, sessionID string) (*model.Plan, error) {
	var (
		p                      model.Plan
		trip, citations        string
		startDate, generatedAt string
	)
	err := x.db.QueryRowContext(ctx, `
        SELECT trip, itinerary, citations, start_date, generated_at
        FROM plans WHERE session_id = ?`, sessionID).
		Scan(&trip, &p.Itinerary, &citations, &startDate, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan for session %s: %w", sessionID, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(trip), &p.Trip); err != nil {
		return nil, fmt.Errorf("decode trip: %w", err)
	}
	if err := json.Unmarshal([]byte(citations), &p.Citations); err != nil {
		return nil, fmt.Errorf("decode citations: %w", err)
	}
	if p.StartDate, err = time.Parse(dateLayout, startDate); err != nil {
		return nil, err
	}
	if p.GeneratedAt, err = time.Parse(tsLayout, generatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (x *plans) Clear(ctx context.Context, sessionID string) error {
	var one int
	err := x.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	if err != nil {
		return err
	}
	_, err = x.db.ExecContext(ctx, `DELETE FROM plans WHERE session_id = ?`, sessionID)
	return err
}

func scanSession(row *sql.Row, sessionID string) (*model.Session, error) {
	var (
		s                    model.Session
		createdAt, updatedAt string
	)
	err := row.Scan(&s.SessionID, &s.CompletionKey, &s.SearchKey, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if s.CreatedAt, err = time.Parse(tsLayout, createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = time.Parse(tsLayout, updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func mustAffect(res sql.Result, sessionID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
