// Package storetest is a compliance suite shared by every store driver.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
)

// Run exercises a store.Store implementation. makeStore must return a clean,
// isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	id := "s-" + uuid.NewString()

	created, err := s.Sessions().Create(ctx, &model.Session{SessionID: id, CompletionKey: "gsk", SearchKey: "serp"})
	require.NoError(t, err, "Create")
	assert.Equal(t, id, created.SessionID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.Sessions().Create(ctx, &model.Session{SessionID: id})
	assert.Error(t, err, "duplicate session id")

	got, err := s.Sessions().Get(ctx, id)
	require.NoError(t, err, "Get")
	assert.Equal(t, "gsk", got.CompletionKey)
	assert.Equal(t, "serp", got.SearchKey)
	assert.Nil(t, got.Plan)

	updated, err := s.Sessions().UpdateCredentials(ctx, id, "gsk-2", "")
	require.NoError(t, err, "UpdateCredentials")
	assert.Equal(t, "gsk-2", updated.CompletionKey)
	assert.Empty(t, updated.SearchKey)

	_, err = s.Plans().Current(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound, "no plan yet")

	plan := &model.Plan{
		Trip: model.TripRequest{
			Destination: "Paris", Days: 2,
			Budget: model.BudgetMid, Style: model.StyleCultural,
			Interests: []string{"culture", "food"},
		},
		Itinerary:   "**Day 1:** Louvre\n**Day 2:** Orsay",
		Citations:   []string{"- [A](https://a.example)"},
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC),
	}
	stored, err := s.Plans().Put(ctx, id, plan)
	require.NoError(t, err, "Put")
	assertPlan(t, plan, stored)

	cur, err := s.Plans().Current(ctx, id)
	require.NoError(t, err, "Current")
	assertPlan(t, plan, cur)

	replacement := *plan
	replacement.Itinerary = "**Day 1:** Eiffel Tower"
	replacement.Citations = nil
	replacement.StartDate = time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	_, err = s.Plans().Put(ctx, id, &replacement)
	require.NoError(t, err, "Put replace")
	cur, err = s.Plans().Current(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "**Day 1:** Eiffel Tower", cur.Itinerary)
	assert.Empty(t, cur.Citations)
	assert.True(t, replacement.StartDate.Equal(cur.StartDate))

	require.NoError(t, s.Plans().Clear(ctx, id), "Clear")
	_, err = s.Plans().Current(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, s.Plans().Clear(ctx, id), "Clear is idempotent")

	_, err = s.Plans().Put(ctx, id, plan)
	require.NoError(t, err)
	require.NoError(t, s.Sessions().Delete(ctx, id), "Delete")
	_, err = s.Sessions().Get(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Plans().Current(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound, "plan removed with session")

	missing := "s-" + uuid.NewString()
	assert.ErrorIs(t, s.Sessions().Delete(ctx, missing), model.ErrNotFound)
	_, err = s.Sessions().UpdateCredentials(ctx, missing, "a", "b")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Plans().Put(ctx, missing, plan)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.Plans().Clear(ctx, missing), model.ErrNotFound)
}

func assertPlan(t *testing.T, want, got *model.Plan) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Trip, got.Trip)
	assert.Equal(t, want.Itinerary, got.Itinerary)
	assert.Equal(t, want.Citations, got.Citations)
	assert.True(t, want.StartDate.Equal(got.StartDate), "start date %s != %s", want.StartDate, got.StartDate)
	assert.WithinDuration(t, want.GeneratedAt, got.GeneratedAt, time.Millisecond)
}
