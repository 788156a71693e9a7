// Package postgres persists sessions in PostgreSQL through the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver, verifies
// connectivity and applies the schema.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply postgres schema: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id     TEXT PRIMARY KEY,
    completion_key TEXT NOT NULL DEFAULT '',
    search_key     TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS plans (
    session_id   TEXT PRIMARY KEY REFERENCES sessions(session_id) ON DELETE CASCADE,
    trip         JSONB NOT NULL,
    itinerary    TEXT NOT NULL,
    citations    JSONB NOT NULL DEFAULT '[]'::jsonb,
    start_date   DATE NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL
);
`

// New opens dsn and returns a store that owns the connection pool.
func New(ctx context.Context, dsn string) (store.Store, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Sessions() store.Sessions { return &sessions{db: s.db} }
func (s *pgStore) Plans() store.Plans       { return &plans{db: s.db} }
func (s *pgStore) Close() error             { return s.db.Close() }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

type sessions struct{ db *sql.DB }

func (x *sessions) Create(ctx context.Context, in *model.Session) (*model.Session, error) {
	out := *in
	out.Plan = nil
	row := x.db.QueryRowContext(ctx, `
        INSERT INTO sessions (session_id, completion_key, search_key)
        VALUES ($1,$2,$3)
        RETURNING created_at, updated_at`,
		in.SessionID, in.CompletionKey, in.SearchKey)
	if err := row.Scan(&out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	out.CreatedAt, out.UpdatedAt = out.CreatedAt.UTC(), out.UpdatedAt.UTC()
	return &out, nil
}

func (x *sessions) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	var s model.Session
	err := x.db.QueryRowContext(ctx, `
        SELECT session_id, completion_key, search_key, created_at, updated_at
        FROM sessions WHERE session_id = $1`, sessionID).
		Scan(&s.SessionID, &s.CompletionKey, &s.SearchKey, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
	return &s, nil
}

func (x *sessions) UpdateCredentials(ctx context.Context, sessionID, completionKey, searchKey string) (*model.Session, error) {
	res, err := x.db.ExecContext(ctx, `
        UPDATE sessions SET completion_key = $1, search_key = $2, updated_at = now()
        WHERE session_id = $3`, completionKey, searchKey, sessionID)
	if err != nil {
		return nil, fmt.Errorf("update credentials: %w", err)
	}
	if err := mustAffect(res, sessionID); err != nil {
		return nil, err
	}
	return x.Get(ctx, sessionID)
}

func (x *sessions) Delete(ctx context.Context, sessionID string) error {
	res, err := x.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
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
	citations := p.Citations
	if citations == nil {
		citations = []string{}
	}
	cit, err := json.Marshal(citations)
	if err != nil {
		return nil, err
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE sessions SET updated_at = now() WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	if err := mustAffect(res, sessionID); err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO plans (session_id, trip, itinerary, citations, start_date, generated_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (session_id) DO UPDATE SET
            trip = EXCLUDED.trip,
            itinerary = EXCLUDED.itinerary,
            citations = EXCLUDED.citations,
            start_date = EXCLUDED.start_date,
            generated_at = EXCLUDED.generated_at`,
		sessionID, string(trip), p.Itinerary, string(cit),
		p.StartDate.Format("2006-01-02"), p.GeneratedAt.UTC())
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
		p               model.Plan
		trip, citations []byte
	)
	err := x.db.QueryRowContext(ctx, `
        SELECT trip, itinerary, citations, start_date, generated_at
        FROM plans WHERE session_id = $1`, sessionID).
		Scan(&trip, &p.Itinerary, &citations, &p.StartDate, &p.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan for session %s: %w", sessionID, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(trip, &p.Trip); err != nil {
		return nil, fmt.Errorf("decode trip: %w", err)
	}
	if err := json.Unmarshal(citations, &p.Citations); err != nil {
		return nil, fmt.Errorf("decode citations: %w", err)
	}
	y, m, d := p.StartDate.Date()
	p.StartDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	p.GeneratedAt = p.GeneratedAt.UTC()
	return &p, nil
}

func (x *plans) Clear(ctx context.Context, sessionID string) error {
	var one int
	err := x.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_id = $1`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if _, err := x.db.ExecContext(ctx, `DELETE FROM plans WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear plan: %w", err)
	}
	return nil
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
