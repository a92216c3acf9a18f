// Package course manages courses and their ordered content items.
package course

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("course not found")
	ErrContentNotFound = errors.New("course content not found")
)

type Course struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Content     []Content `json:"content,omitempty"`
}

// Content is one item of course material: a text block, a link, a
// video embed. body carries the payload; content_type tells the client
// how to render it.
type Content struct {
	ID          int64  `json:"id"`
	CourseID    int64  `json:"course_id"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	Position    int    `json:"position"`
}

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

func (s *SQLStore) Create(ctx context.Context, c *Course) (int64, error) {
	c.CreatedAt = s.now()
	var createdBy any
	if c.CreatedBy != 0 {
		createdBy = c.CreatedBy
	}
	var id int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO courses (name, description, created_by, created_at)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		c.Name, c.Description, createdBy, c.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

func (s *SQLStore) Update(ctx context.Context, c *Course) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE courses SET name=$1, description=$2 WHERE id=$3`,
		c.Name, c.Description, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the course; its content rows cascade.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get loads a course with its content in position order.
func (s *SQLStore) Get(ctx context.Context, id int64) (*Course, error) {
	var c Course
	var createdBy sql.NullInt64
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, description, created_by, created_at FROM courses WHERE id=$1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &createdBy, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CreatedBy = createdBy.Int64

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, course_id, title, content_type, body, position
		FROM course_content WHERE course_id=$1 ORDER BY position, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item Content
		if err := rows.Scan(&item.ID, &item.CourseID, &item.Title,
			&item.ContentType, &item.Body, &item.Position); err != nil {
			return nil, err
		}
		c.Content = append(c.Content, item)
	}
	return &c, rows.Err()
}

func (s *SQLStore) List(ctx context.Context) ([]Course, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, description, created_by, created_at
		FROM courses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		var createdBy sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &createdBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedBy = createdBy.Int64
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddContent appends an item; position 0 means "after the last one".
func (s *SQLStore) AddContent(ctx context.Context, item *Content) (int64, error) {
	var exists int
	err := s.DB.QueryRowContext(ctx,
		`SELECT 1 FROM courses WHERE id=$1`, item.CourseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if item.Position == 0 {
		if err := s.DB.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), 0) + 1 FROM course_content WHERE course_id=$1`,
			item.CourseID).Scan(&item.Position); err != nil {
			return 0, err
		}
	}
	if item.ContentType == "" {
		item.ContentType = "text"
	}

	var id int64
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO course_content (course_id, title, content_type, body, position)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		item.CourseID, item.Title, item.ContentType, item.Body, item.Position).Scan(&id)
	if err != nil {
		return 0, err
	}
	item.ID = id
	return id, nil
}

func (s *SQLStore) UpdateContent(ctx context.Context, item *Content) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE course_content SET title=$1, content_type=$2, body=$3, position=$4
		WHERE id=$5 AND course_id=$6`,
		item.Title, item.ContentType, item.Body, item.Position, item.ID, item.CourseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (s *SQLStore) DeleteContent(ctx context.Context, courseID, id int64) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM course_content WHERE id=$1 AND course_id=$2`, id, courseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContentNotFound
	}
	return nil
}
