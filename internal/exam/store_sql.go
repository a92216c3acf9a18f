package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists exams, attempts and responses over database/sql.
// Works against postgres (pgx stdlib) and sqlite (modernc) with the
// shared schema from internal/db.
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

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// CreateExam inserts the exam plus its chapter and question attachments
// in one transaction.
func (s *SQLStore) CreateExam(ctx context.Context, e *Exam) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	e.CreatedAt = s.now()
	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO exams (
			title, description, start_datetime, end_datetime, duration_minutes,
			total_marks, passing_score, negative_marking, negative_percentage,
			shuffle_questions, can_change_answer, allow_blank_answers,
			show_score, show_test_outline, show_correct_incorrect,
			show_correct_answer, show_explanation,
			access_type, access_passcode, identifier_list, email_list,
			attempt_limit_type, max_attempts, course_id, created_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		RETURNING id`,
		e.Title, e.Description, e.StartDatetime, e.EndDatetime, e.DurationMinutes,
		e.TotalMarks, e.PassingScore, e.NegativeMarking, e.NegativePercentage,
		e.ShuffleQuestions, e.CanChangeAnswer, e.AllowBlankAnswers,
		e.ShowScore, e.ShowTestOutline, e.ShowCorrectIncorrect,
		e.ShowCorrectAnswer, e.ShowExplanation,
		e.AccessType, e.AccessPasscode, encodeList(e.IdentifierList), encodeList(e.EmailList),
		e.AttemptLimitType, e.MaxAttempts, e.CourseID, e.CreatedBy, e.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	if err := insertAttachments(ctx, tx, id, e.Chapters, e.Questions); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

// UpdateExam rewrites the exam row and replaces its attachments.
func (s *SQLStore) UpdateExam(ctx context.Context, e *Exam) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE exams SET
			title=$1, description=$2, start_datetime=$3, end_datetime=$4,
			duration_minutes=$5, total_marks=$6, passing_score=$7,
			negative_marking=$8, negative_percentage=$9, shuffle_questions=$10,
			can_change_answer=$11, allow_blank_answers=$12, show_score=$13,
			show_test_outline=$14, show_correct_incorrect=$15,
			show_correct_answer=$16, show_explanation=$17, access_type=$18,
			access_passcode=$19, identifier_list=$20, email_list=$21,
			attempt_limit_type=$22, max_attempts=$23, course_id=$24, updated_at=$25
		WHERE id=$26`,
		e.Title, e.Description, e.StartDatetime, e.EndDatetime,
		e.DurationMinutes, e.TotalMarks, e.PassingScore,
		e.NegativeMarking, e.NegativePercentage, e.ShuffleQuestions,
		e.CanChangeAnswer, e.AllowBlankAnswers, e.ShowScore,
		e.ShowTestOutline, e.ShowCorrectIncorrect,
		e.ShowCorrectAnswer, e.ShowExplanation, e.AccessType,
		e.AccessPasscode, encodeList(e.IdentifierList), encodeList(e.EmailList),
		e.AttemptLimitType, e.MaxAttempts, e.CourseID, s.now(),
		e.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExamNotFound
	}

	// Delete-and-reinsert keeps attachment replacement simple and atomic.
	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_chapters WHERE exam_id=$1`, e.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_questions WHERE exam_id=$1`, e.ID); err != nil {
		return err
	}
	if err := insertAttachments(ctx, tx, e.ID, e.Chapters, e.Questions); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAttachments(ctx context.Context, tx *sql.Tx, examID int64, chapters []int64, questions []ExamQuestionRef) error {
	for _, ch := range chapters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exam_chapters (exam_id, chapter_id) VALUES ($1,$2)`,
			examID, ch); err != nil {
			return fmt.Errorf("attach chapter %d: %w", ch, err)
		}
	}
	for i, q := range questions {
		order := q.Order
		if order == 0 {
			order = i + 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, marks, question_order) VALUES ($1,$2,$3,$4)`,
			examID, q.QuestionID, q.Marks, order); err != nil {
			return fmt.Errorf("attach question %d: %w", q.QuestionID, err)
		}
	}
	return nil
}

// DeleteExam removes the exam; attempts, responses and attachments go
// with it via ON DELETE CASCADE.
func (s *SQLStore) DeleteExam(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM exams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExamNotFound
	}
	return nil
}

const examColumns = `
	id, title, description, start_datetime, end_datetime, duration_minutes,
	total_marks, passing_score, negative_marking, negative_percentage,
	shuffle_questions, can_change_answer, allow_blank_answers,
	show_score, show_test_outline, show_correct_incorrect,
	show_correct_answer, show_explanation,
	access_type, access_passcode, identifier_list, email_list,
	attempt_limit_type, max_attempts, course_id, created_by, created_at, updated_at`

func scanExam(row *sql.Row) (*Exam, error) {
	var e Exam
	var idList, emList string
	var courseID sql.NullInt64
	var updated sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.StartDatetime, &e.EndDatetime, &e.DurationMinutes,
		&e.TotalMarks, &e.PassingScore, &e.NegativeMarking, &e.NegativePercentage,
		&e.ShuffleQuestions, &e.CanChangeAnswer, &e.AllowBlankAnswers,
		&e.ShowScore, &e.ShowTestOutline, &e.ShowCorrectIncorrect,
		&e.ShowCorrectAnswer, &e.ShowExplanation,
		&e.AccessType, &e.AccessPasscode, &idList, &emList,
		&e.AttemptLimitType, &e.MaxAttempts, &courseID, &e.CreatedBy, &e.CreatedAt, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	e.IdentifierList = decodeList(idList)
	e.EmailList = decodeList(emList)
	if courseID.Valid {
		e.CourseID = &courseID.Int64
	}
	if updated.Valid {
		t := updated.Time
		e.UpdatedAt = &t
	}
	return &e, nil
}

// GetExam loads an exam with its chapter and question attachments.
func (s *SQLStore) GetExam(ctx context.Context, id int64) (*Exam, error) {
	e, err := scanExam(s.DB.QueryRowContext(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT chapter_id FROM exam_chapters WHERE exam_id=$1 ORDER BY chapter_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ch int64
		if err := rows.Scan(&ch); err != nil {
			return nil, err
		}
		e.Chapters = append(e.Chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	qrows, err := s.DB.QueryContext(ctx,
		`SELECT question_id, marks, question_order FROM exam_questions WHERE exam_id=$1 ORDER BY question_order`, id)
	if err != nil {
		return nil, err
	}
	defer qrows.Close()
	for qrows.Next() {
		var q ExamQuestionRef
		if err := qrows.Scan(&q.QuestionID, &q.Marks, &q.Order); err != nil {
			return nil, err
		}
		e.Questions = append(e.Questions, q)
	}
	return e, qrows.Err()
}

// ListExams returns exam summaries, newest first, with course and
// author names joined in.
func (s *SQLStore) ListExams(ctx context.Context) ([]Summary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT e.id, e.title, e.description, e.start_datetime, e.end_datetime,
		       e.total_marks, e.course_id, COALESCE(c.name, ''), COALESCE(u.name, ''),
		       (SELECT COUNT(*) FROM exam_questions q WHERE q.exam_id = e.id),
		       e.created_at
		FROM exams e
		LEFT JOIN courses c ON c.id = e.course_id
		LEFT JOIN users u ON u.id = e.created_by
		ORDER BY e.created_at DESC, e.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var courseID sql.NullInt64
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.Description, &sm.StartDatetime,
			&sm.EndDatetime, &sm.TotalMarks, &courseID, &sm.CourseName,
			&sm.CreatedByName, &sm.QuestionCount, &sm.CreatedAt); err != nil {
			return nil, err
		}
		if courseID.Valid {
			sm.CourseID = &courseID.Int64
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountExams(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM exams`).Scan(&n)
	return n, err
}

// VerifyAccess runs the gate without creating anything, so the client
// can collect credentials up front.
func (s *SQLStore) VerifyAccess(ctx context.Context, u GateUser, examID int64, creds Credentials) error {
	e, err := s.GetExam(ctx, examID)
	if err != nil {
		return err
	}
	completed, err := s.countCompleted(ctx, s.DB, examID, u.ID)
	if err != nil {
		return err
	}
	return CanStart(u, e, creds, s.now(), completed)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) countCompleted(ctx context.Context, q querier, examID, userID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exam_attempts WHERE exam_id=$1 AND user_id=$2 AND completed=$3`,
		examID, userID, true).Scan(&n)
	return n, err
}
