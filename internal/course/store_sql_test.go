package course

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
	dsn := "file:" + filepath.Join(t.TempDir(), "course_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	sdb, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })
	return NewSQLStore(sdb)
}

func TestCourseCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := &Course{Name: "HSC Physics", Description: "Full syllabus"}
	id, err := s.Create(ctx, c)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "HSC Physics", got.Name)
	assert.Empty(t, got.Content)

	got.Description = "Updated"
	require.NoError(t, s.Update(ctx, got))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Updated", list[0].Description)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestCourseContentOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &Course{Name: "Chemistry"})
	require.NoError(t, err)

	first := &Content{CourseID: id, Title: "Intro", Body: "welcome"}
	_, err = s.AddContent(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "text", first.ContentType)

	second := &Content{CourseID: id, Title: "Lecture 1", ContentType: "video", Body: "https://example.com/v1"}
	_, err = s.AddContent(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "Intro", got.Content[0].Title)
	assert.Equal(t, "Lecture 1", got.Content[1].Title)

	// Reorder the second item to the front.
	second.Position = 0
	second.Title = "Lecture 1 (revised)"
	require.NoError(t, s.UpdateContent(ctx, second))
	got, _ = s.Get(ctx, id)
	assert.Equal(t, "Lecture 1 (revised)", got.Content[0].Title)

	require.NoError(t, s.DeleteContent(ctx, id, first.ID))
	got, _ = s.Get(ctx, id)
	require.Len(t, got.Content, 1)

	_, err = s.AddContent(ctx, &Content{CourseID: 9999, Title: "orphan"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCourseCascadesContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &Course{Name: "Biology"})
	require.NoError(t, err)
	_, err = s.AddContent(ctx, &Content{CourseID: id, Title: "Cells"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))

	var n int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM course_content`).Scan(&n))
	assert.Zero(t, n)
}
