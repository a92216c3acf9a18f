package curriculum

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/openqbank/qbank/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "curriculum_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	sdb, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })
	return NewSQLStore(sdb)
}

func TestTreeCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cls, err := s.CreateClass(ctx, "  Class 10  ")
	require.NoError(t, err)
	assert.Equal(t, "Class 10", cls.Name)

	sub, err := s.CreateSubject(ctx, cls.ID, "Physics")
	require.NoError(t, err)
	ch, err := s.CreateChapter(ctx, sub.ID, "Motion")
	require.NoError(t, err)
	tp, err := s.CreateTopic(ctx, ch.ID, "Velocity")
	require.NoError(t, err)

	classes, err := s.ListClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)

	topics, err := s.ListTopics(ctx, ch.ID)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Velocity", topics[0].Name)

	require.NoError(t, s.RenameTopic(ctx, tp.ID, "Average velocity"))
	topics, _ = s.ListTopics(ctx, ch.ID)
	assert.Equal(t, "Average velocity", topics[0].Name)

	assert.ErrorIs(t, s.RenameTopic(ctx, 9999, "x"), ErrNotFound)
	assert.ErrorIs(t, s.DeleteTopic(ctx, 9999), ErrNotFound)
}

func TestDuplicateNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cls, err := s.CreateClass(ctx, "Class 9")
	require.NoError(t, err)
	_, err = s.CreateClass(ctx, "Class 9")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.CreateSubject(ctx, cls.ID, "Math")
	require.NoError(t, err)
	_, err = s.CreateSubject(ctx, cls.ID, "Math")
	assert.ErrorIs(t, err, ErrDuplicate)

	// Same subject name under a different class is fine.
	other, err := s.CreateClass(ctx, "Class 10")
	require.NoError(t, err)
	_, err = s.CreateSubject(ctx, other.ID, "Math")
	assert.NoError(t, err)
}

func TestDeleteClassCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cls, err := s.CreateClass(ctx, "Class 8")
	require.NoError(t, err)
	sub, err := s.CreateSubject(ctx, cls.ID, "Biology")
	require.NoError(t, err)
	ch, err := s.CreateChapter(ctx, sub.ID, "Cells")
	require.NoError(t, err)
	_, err = s.CreateTopic(ctx, ch.ID, "Mitosis")
	require.NoError(t, err)

	require.NoError(t, s.DeleteClass(ctx, cls.ID))

	subjects, err := s.ListSubjects(ctx, cls.ID)
	require.NoError(t, err)
	assert.Empty(t, subjects)
	chapters, err := s.ListChapters(ctx, sub.ID)
	require.NoError(t, err)
	assert.Empty(t, chapters)
	topics, err := s.ListTopics(ctx, ch.ID)
	require.NoError(t, err)
	assert.Empty(t, topics)
}
