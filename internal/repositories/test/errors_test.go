package repositories_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-playlist/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsConflict(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "23505", "55P03"} {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: code})
		require.True(t, repositories.IsConflict(err), code)
	}
	require.True(t, repositories.IsConflict(fmt.Errorf("wrapped: %w", repositories.ErrStorageConflict)))
	require.False(t, repositories.IsConflict(&pgconn.PgError{Code: "23503"}))
	require.False(t, repositories.IsConflict(errors.New("boom")))
	require.False(t, repositories.IsConflict(nil))
}

func TestViewFilterMatches(t *testing.T) {
	playlist, user := uuid.New(), uuid.New()
	after := t0.Add(-time.Minute)
	until := t0

	filter := repositories.ViewFilter{
		PlaylistIDs: []uuid.UUID{playlist},
		UserID:      &user,
		After:       &after,
		Until:       &until,
	}
	require.True(t, filter.Matches(playlist, user, t0))
	require.True(t, filter.Matches(playlist, user, t0.Add(-30*time.Second)))
	require.False(t, filter.Matches(playlist, user, after), "lower bound is exclusive")
	require.False(t, filter.Matches(playlist, user, t0.Add(time.Nanosecond)))
	require.False(t, filter.Matches(uuid.New(), user, t0))
	require.False(t, filter.Matches(playlist, uuid.New(), t0))

	before := t0.Add(time.Minute)
	around := repositories.ViewFilter{After: &after, Before: &before}
	require.True(t, around.Matches(playlist, user, t0.Add(30*time.Second)))
	require.True(t, around.Matches(playlist, user, before.Add(-time.Nanosecond)))
	require.False(t, around.Matches(playlist, user, before), "upper bound is exclusive")
	require.False(t, around.Matches(playlist, user, after))

	require.True(t, repositories.ViewFilter{}.Matches(uuid.New(), uuid.New(), time.Time{}))
}
