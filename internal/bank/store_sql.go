package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore persists questions over database/sql, shared between the
// postgres and sqlite schemas.
type SQLStore struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, Now: time.Now}
}

func (s *SQLStore) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

const questionColumns = `
	id, qserial, classname, subject, chapter, topic, ques,
	option_a, option_b, option_c, option_d, answer, explanation, hint,
	difficulty_level, reference, COALESCE(import_batch_id, ''),
	COALESCE(created_by, 0), created_at`

func scanQuestion(sc interface{ Scan(...any) error }) (*Question, error) {
	var q Question
	err := sc.Scan(&q.ID, &q.QSerial, &q.Classname, &q.Subject, &q.Chapter,
		&q.Topic, &q.Ques, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
		&q.Answer, &q.Explanation, &q.Hint, &q.DifficultyLevel, &q.Reference,
		&q.ImportBatchID, &q.CreatedBy, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts a question and returns its id.
func (s *SQLStore) Create(ctx context.Context, q *Question) (int64, error) {
	if q.DifficultyLevel == "" {
		q.DifficultyLevel = "medium"
	}
	q.CreatedAt = s.now()
	var createdBy any
	if q.CreatedBy != 0 {
		createdBy = q.CreatedBy
	}
	var batchID any
	if q.ImportBatchID != "" {
		batchID = q.ImportBatchID
	}
	var id int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO questions (
			qserial, classname, subject, chapter, topic, ques,
			option_a, option_b, option_c, option_d, answer, explanation, hint,
			difficulty_level, reference, import_batch_id, created_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id`,
		q.QSerial, q.Classname, q.Subject, q.Chapter, q.Topic, q.Ques,
		q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.Answer, q.Explanation, q.Hint,
		q.DifficultyLevel, q.Reference, batchID, createdBy, q.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	q.ID = id
	return id, nil
}

// Update rewrites the editable fields of a question.
func (s *SQLStore) Update(ctx context.Context, q *Question) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE questions SET
			qserial=$1, classname=$2, subject=$3, chapter=$4, topic=$5, ques=$6,
			option_a=$7, option_b=$8, option_c=$9, option_d=$10,
			answer=$11, explanation=$12, hint=$13, difficulty_level=$14, reference=$15
		WHERE id=$16`,
		q.QSerial, q.Classname, q.Subject, q.Chapter, q.Topic, q.Ques,
		q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.Answer, q.Explanation, q.Hint, q.DifficultyLevel, q.Reference,
		q.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (*Question, error) {
	return scanQuestion(s.DB.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id=$1`, id))
}

// List returns questions matching the filter, newest first.
func (s *SQLStore) List(ctx context.Context, f ListFilter) ([]Question, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Classname != "" {
		add("classname = $%d", f.Classname)
	}
	if f.Subject != "" {
		add("subject = $%d", f.Subject)
	}
	if f.Chapter != "" {
		add("chapter = $%d", f.Chapter)
	}
	if f.Topic != "" {
		add("topic = $%d", f.Topic)
	}
	if f.Search != "" {
		add("LOWER(ques) LIKE $%d", "%"+strings.ToLower(f.Search)+"%")
	}

	query := `SELECT ` + questionColumns + ` FROM questions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if f.Offset > 0 {
			args = append(args, f.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

// Recent returns the latest n questions.
func (s *SQLStore) Recent(ctx context.Context, n int) ([]Question, error) {
	if n <= 0 {
		n = 10
	}
	return s.List(ctx, ListFilter{Limit: n})
}

// Subjects lists the distinct subjects present in the bank.
func (s *SQLStore) Subjects(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT DISTINCT subject FROM questions WHERE subject <> '' ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetStats aggregates counts by subject and difficulty.
func (s *SQLStore) GetStats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		BySubject:    map[string]int{},
		ByDifficulty: map[string]int{},
	}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&st.Total); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT subject, COUNT(*) FROM questions GROUP BY subject`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.BySubject[k] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	drows, err := s.DB.QueryContext(ctx,
		`SELECT difficulty_level, COUNT(*) FROM questions GROUP BY difficulty_level`)
	if err != nil {
		return nil, err
	}
	defer drows.Close()
	for drows.Next() {
		var k string
		var n int
		if err := drows.Scan(&k, &n); err != nil {
			return nil, err
		}
		st.ByDifficulty[k] = n
	}
	return st, drows.Err()
}

// DeleteImportBatch removes every question inserted under one batch id
// and reports how many went.
func (s *SQLStore) DeleteImportBatch(ctx context.Context, batchID string) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM questions WHERE import_batch_id=$1`, batchID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// exists reports whether a question with the same class, subject and
// text is already in the bank. The importer's duplicate check.
func (s *SQLStore) exists(ctx context.Context, classname, subject, ques string) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx, `
		SELECT 1 FROM questions
		WHERE classname=$1 AND subject=$2 AND TRIM(ques)=TRIM($3)`,
		classname, subject, ques).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
