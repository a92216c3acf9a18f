// Package curriculum manages the classes → subjects → chapters → topics
// tree that organizes the question bank.
package curriculum

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

var (
	ErrNotFound  = errors.New("curriculum node not found")
	ErrDuplicate = errors.New("name already exists at this level")
)

type Class struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Subject struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	ClassID int64  `json:"class_id"`
}

type Chapter struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SubjectID int64  `json:"subject_id"`
}

type Topic struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ChapterID int64  `json:"chapter_id"`
}

type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// isUniqueViolation sniffs driver-specific unique errors; neither the
// pgx stdlib driver nor modernc export a portable sentinel for this.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

func wrapInsertErr(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// ---- classes ----

func (s *SQLStore) CreateClass(ctx context.Context, name string) (*Class, error) {
	var c Class
	c.Name = strings.TrimSpace(name)
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO classes (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID)
	if err != nil {
		return nil, wrapInsertErr(err)
	}
	return &c, nil
}

func (s *SQLStore) ListClasses(ctx context.Context) ([]Class, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM classes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Class{}
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) RenameClass(ctx context.Context, id int64, name string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE classes SET name=$1 WHERE id=$2`, strings.TrimSpace(name), id)
	if err != nil {
		return wrapInsertErr(err)
	}
	return affectedOrNotFound(res)
}

// DeleteClass removes the class and, via cascade, everything beneath it.
func (s *SQLStore) DeleteClass(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM classes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// ---- subjects ----

func (s *SQLStore) CreateSubject(ctx context.Context, classID int64, name string) (*Subject, error) {
	sub := Subject{Name: strings.TrimSpace(name), ClassID: classID}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO subjects (name, class_id) VALUES ($1,$2) RETURNING id`,
		sub.Name, classID).Scan(&sub.ID)
	if err != nil {
		return nil, wrapInsertErr(err)
	}
	return &sub, nil
}

func (s *SQLStore) ListSubjects(ctx context.Context, classID int64) ([]Subject, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, class_id FROM subjects WHERE class_id=$1 ORDER BY name`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Subject{}
	for rows.Next() {
		var v Subject
		if err := rows.Scan(&v.ID, &v.Name, &v.ClassID); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) RenameSubject(ctx context.Context, id int64, name string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE subjects SET name=$1 WHERE id=$2`, strings.TrimSpace(name), id)
	if err != nil {
		return wrapInsertErr(err)
	}
	return affectedOrNotFound(res)
}

func (s *SQLStore) DeleteSubject(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM subjects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// ---- chapters ----

func (s *SQLStore) CreateChapter(ctx context.Context, subjectID int64, name string) (*Chapter, error) {
	ch := Chapter{Name: strings.TrimSpace(name), SubjectID: subjectID}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO chapters (name, subject_id) VALUES ($1,$2) RETURNING id`,
		ch.Name, subjectID).Scan(&ch.ID)
	if err != nil {
		return nil, wrapInsertErr(err)
	}
	return &ch, nil
}

func (s *SQLStore) ListChapters(ctx context.Context, subjectID int64) ([]Chapter, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, subject_id FROM chapters WHERE subject_id=$1 ORDER BY name`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Chapter{}
	for rows.Next() {
		var v Chapter
		if err := rows.Scan(&v.ID, &v.Name, &v.SubjectID); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) RenameChapter(ctx context.Context, id int64, name string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE chapters SET name=$1 WHERE id=$2`, strings.TrimSpace(name), id)
	if err != nil {
		return wrapInsertErr(err)
	}
	return affectedOrNotFound(res)
}

func (s *SQLStore) DeleteChapter(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM chapters WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// ---- topics ----

func (s *SQLStore) CreateTopic(ctx context.Context, chapterID int64, name string) (*Topic, error) {
	tp := Topic{Name: strings.TrimSpace(name), ChapterID: chapterID}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO topics (name, chapter_id) VALUES ($1,$2) RETURNING id`,
		tp.Name, chapterID).Scan(&tp.ID)
	if err != nil {
		return nil, wrapInsertErr(err)
	}
	return &tp, nil
}

func (s *SQLStore) ListTopics(ctx context.Context, chapterID int64) ([]Topic, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, chapter_id FROM topics WHERE chapter_id=$1 ORDER BY name`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Topic{}
	for rows.Next() {
		var v Topic
		if err := rows.Scan(&v.ID, &v.Name, &v.ChapterID); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) RenameTopic(ctx context.Context, id int64, name string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE topics SET name=$1 WHERE id=$2`, strings.TrimSpace(name), id)
	if err != nil {
		return wrapInsertErr(err)
	}
	return affectedOrNotFound(res)
}

func (s *SQLStore) DeleteTopic(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM topics WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func affectedOrNotFound(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
