package bank

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/openqbank/qbank/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "bank_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	sdb, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })
	return NewSQLStore(sdb)
}

func TestNormalizeDifficulty(t *testing.T) {
	tests := []struct{ in, want string }{
		{"easy", "easy"},
		{"Simple", "easy"},
		{"beginner", "easy"},
		{"MODERATE", "medium"},
		{"normal", "medium"},
		{"  medium  ", "medium"},
		{"challenging", "hard"},
		{"Difficult", "hard"},
		{"tough", "hard"},
		{"", "medium"},
		{"expert", "expert"}, // unknown passes through
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDifficulty(tt.in), "input %q", tt.in)
	}
}

func record(ques string) NormalizedRecord {
	return NormalizedRecord{
		Classname: "10",
		Subject:   "Physics",
		Chapter:   "Motion",
		Ques:      ques,
		OptionA:   "a",
		OptionB:   "b",
		OptionC:   "c",
		OptionD:   "d",
		Answer:    "A",
	}
}

func TestImportBatch(t *testing.T) {
	s := newTestStore(t)

	r1 := record("What is velocity?")
	r2 := record("What is acceleration?")
	r2.DifficultyLevel = "Challenging"
	missing := NormalizedRecord{Subject: "Physics", Classname: "10"} // no ques
	noSubject := record("What is force?")
	noSubject.Subject = " "
	dupInBatch := record("What is velocity?")

	sum, err := s.ImportBatch(context.Background(),
		[]NormalizedRecord{r1, r2, missing, noSubject, dupInBatch}, 7)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Inserted)
	assert.Equal(t, 1, sum.Duplicates)
	require.Len(t, sum.Errors, 2)
	assert.Equal(t, 3, sum.Errors[0].Row)
	assert.Equal(t, 4, sum.Errors[1].Row)
	assert.NotEmpty(t, sum.BatchID)

	// Stored rows carry the batch id, owner and folded difficulty.
	qs, err := s.List(context.Background(), ListFilter{Subject: "Physics"})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	for _, q := range qs {
		assert.Equal(t, sum.BatchID, q.ImportBatchID)
		assert.EqualValues(t, 7, q.CreatedBy)
	}
	byQues := map[string]Question{}
	for _, q := range qs {
		byQues[q.Ques] = q
	}
	assert.Equal(t, "hard", byQues["What is acceleration?"].DifficultyLevel)
	assert.Equal(t, "medium", byQues["What is velocity?"].DifficultyLevel)
}

func TestImportBatchSkipsExistingQuestions(t *testing.T) {
	s := newTestStore(t)

	first, err := s.ImportBatch(context.Background(), []NormalizedRecord{record("Q?")}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, first.Inserted)

	second, err := s.ImportBatch(context.Background(), []NormalizedRecord{record("Q?")}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Duplicates)
	assert.NotEqual(t, first.BatchID, second.BatchID)
}

func TestDeleteImportBatch(t *testing.T) {
	s := newTestStore(t)

	sum, err := s.ImportBatch(context.Background(),
		[]NormalizedRecord{record("Q1?"), record("Q2?")}, 1)
	require.NoError(t, err)
	require.Equal(t, 2, sum.Inserted)

	keep := record("Kept question?")
	_, err = s.ImportBatch(context.Background(), []NormalizedRecord{keep}, 1)
	require.NoError(t, err)

	n, err := s.DeleteImportBatch(context.Background(), sum.BatchID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	total, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestQuestionCRUD(t *testing.T) {
	s := newTestStore(t)

	q := &Question{Classname: "9", Subject: "Math", Ques: "2+2?", OptionA: "3", OptionB: "4", Answer: "B"}
	id, err := s.Create(context.Background(), q)
	require.NoError(t, err)

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "medium", got.DifficultyLevel) // defaulted
	assert.Equal(t, "2+2?", got.Ques)

	got.Ques = "What is 2+2?"
	got.DifficultyLevel = "easy"
	require.NoError(t, s.Update(context.Background(), got))

	again, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "What is 2+2?", again.Ques)
	assert.Equal(t, "easy", again.DifficultyLevel)

	require.NoError(t, s.Delete(context.Background(), id))
	_, err = s.Get(context.Background(), id)
	assert.True(t, errors.Is(err, ErrQuestionNotFound))
	assert.ErrorIs(t, s.Update(context.Background(), got), ErrQuestionNotFound)
}

func TestListFiltersAndStats(t *testing.T) {
	s := newTestStore(t)

	seed := []NormalizedRecord{
		func() NormalizedRecord { r := record("Physics easy Q"); r.DifficultyLevel = "easy"; return r }(),
		func() NormalizedRecord { r := record("Physics hard Q"); r.DifficultyLevel = "hard"; return r }(),
		func() NormalizedRecord {
			r := record("Math Q about algebra")
			r.Subject = "Math"
			r.Chapter = "Algebra"
			return r
		}(),
	}
	sum, err := s.ImportBatch(context.Background(), seed, 1)
	require.NoError(t, err)
	require.Equal(t, 3, sum.Inserted)

	phys, err := s.List(context.Background(), ListFilter{Subject: "Physics"})
	require.NoError(t, err)
	assert.Len(t, phys, 2)

	search, err := s.List(context.Background(), ListFilter{Search: "ALGEBRA"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "Math", search[0].Subject)

	subjects, err := s.Subjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "Physics"}, subjects)

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.BySubject["Physics"])
	assert.Equal(t, 1, stats.ByDifficulty["easy"])
	assert.Equal(t, 1, stats.ByDifficulty["hard"])
	assert.Equal(t, 1, stats.ByDifficulty["medium"])
}
