package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store/storetest"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "travel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "travel.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.Sessions().Create(ctx, &model.Session{SessionID: "keep", SearchKey: "serp"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Sessions().Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "serp", got.SearchKey)
}

func TestSQLiteStore_HealthPing(t *testing.T) {
	s := newTestStore(t)
	p, ok := s.(interface{ HealthPing(context.Context) error })
	require.True(t, ok)
	assert.NoError(t, p.HealthPing(context.Background()))
}
