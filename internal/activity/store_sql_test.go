package activity

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/openqbank/qbank/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "activity_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	sdb, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })
	return NewSQLStore(sdb)
}

func TestLogAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var userID int64
	require.NoError(t, s.DB.QueryRow(`
		INSERT INTO users (name, email, password_hash, role)
		VALUES ('Admin', 'a@test', 'x', 'admin') RETURNING id`).Scan(&userID))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		s.Now = func() time.Time { return tick }
		e := &Entry{
			UserID:     userID,
			Action:     "exam_created",
			EntityType: "exam",
			EntityID:   int64(i + 1),
			Details:    json.RawMessage(`{"title":"T"}`),
		}
		require.NoError(t, s.Log(ctx, e))
		assert.NotZero(t, e.ID)
	}

	// Anonymous entry without details.
	s.Now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, s.Log(ctx, &Entry{Action: "login_failed", EntityType: "auth"}))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Newest first.
	assert.Equal(t, "login_failed", got[0].Action)
	assert.Zero(t, got[0].UserID)
	assert.Empty(t, got[0].Details)

	assert.Equal(t, "exam_created", got[1].Action)
	assert.Equal(t, "Admin", got[1].UserName)
	assert.EqualValues(t, 3, got[1].EntityID)
	assert.JSONEq(t, `{"title":"T"}`, string(got[1].Details))
}

func TestRecentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Log(ctx, &Entry{Action: "ping", EntityType: "test"}))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Out-of-range limits fall back to the default.
	got, err = s.Recent(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
