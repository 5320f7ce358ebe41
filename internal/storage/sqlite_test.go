package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsIdempotent(t *testing.T) {
	s := openTestStore(t)

	v1, err := s.AppliedMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, v1)

	require.NoError(t, s.migrate())

	v2, err := s.AppliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)
	versions, err := s.AppliedMigrations()
	require.NoError(t, err)
	for i := 1; i < len(versions); i++ {
		assert.Less(t, versions[i-1], versions[i])
	}
	assert.Equal(t, 1, versions[0])
}

func TestParseMigrationVersion(t *testing.T) {
	v, err := parseMigrationVersion("012_add_index.sql")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	_, err = parseMigrationVersion("sessions.sql")
	assert.Error(t, err)
}

func TestSaveAndGetSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)
	rec := SessionRecord{ID: "s1", Step: "greeting", StateJSON: `{"step":{"kind":"greeting"}}`, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, s.SaveSession(ctx, rec))

	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "greeting", got.Step)
	assert.Equal(t, rec.StateJSON, got.StateJSON)
	assert.True(t, created.Equal(got.CreatedAt))

	// upsert keeps created_at
	later := created.Add(time.Minute)
	rec.Step, rec.StateJSON = "collecting_info", `{"step":{"kind":"collecting_info"}}`
	rec.CreatedAt, rec.UpdatedAt = later, later
	require.NoError(t, s.SaveSession(ctx, rec))

	got, err = s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "collecting_info", got.Step)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, later.Equal(got.UpdatedAt))

	n, err := s.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetSession_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessions_MostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.SaveSession(ctx, SessionRecord{
			ID: fmt.Sprintf("s%d", i), Step: "greeting", StateJSON: "{}", CreatedAt: ts, UpdatedAt: ts,
		}))
	}

	got, err := s.ListSessions(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "s4", got[0].ID)
	assert.Equal(t, "s2", got[2].ID)
}

func TestDeleteSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "s1", Step: "greeting", StateJSON: "{}"}))

	require.NoError(t, s.DeleteSession(ctx, "s1"))
	assert.ErrorIs(t, s.DeleteSession(ctx, "s1"), ErrNotFound)
	_, err := s.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoresAreIndependent(t *testing.T) {
	a := openTestStore(t)
	b := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, a.SaveSession(ctx, SessionRecord{ID: "only-in-a", Step: "greeting", StateJSON: "{}"}))

	_, err := b.GetSession(ctx, "only-in-a")
	assert.ErrorIs(t, err, ErrNotFound)
}
