package exam

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"sort"
)

// StartAttempt begins (or resumes) an attempt. Calling it again while an
// attempt is open returns that attempt unchanged; the gate only runs for
// a genuinely new attempt. The partial unique index on open attempts
// closes the race between two concurrent first calls: the loser's insert
// fails and it re-reads the winner's row.
func (s *SQLStore) StartAttempt(ctx context.Context, u GateUser, examID int64, creds Credentials) (*AttemptView, error) {
	if a, err := s.openAttempt(ctx, examID, u.ID); err == nil {
		return s.attemptView(ctx, a)
	} else if !errors.Is(err, ErrAttemptNotFound) {
		return nil, err
	}

	e, err := s.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	completed, err := s.countCompleted(ctx, s.DB, examID, u.ID)
	if err != nil {
		return nil, err
	}
	if err := CanStart(u, e, creds, s.now(), completed); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var a Attempt
	a.ExamID = examID
	a.UserID = u.ID
	a.StartTime = s.now()
	a.TotalQuestions = len(e.Questions)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO exam_attempts (exam_id, user_id, start_time, completed, score, total_questions)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		examID, u.ID, a.StartTime, false, 0.0, a.TotalQuestions).Scan(&a.ID)
	if err != nil {
		// Lost the open-attempt race; drop our tx and return the winner.
		tx.Rollback()
		if winner, rerr := s.openAttempt(ctx, examID, u.ID); rerr == nil {
			return s.attemptView(ctx, winner)
		}
		return nil, err
	}

	// Seed one blank response per question. The presentation order is
	// drawn once here and persisted, so a reconnecting client sees the
	// same sequence for the life of the attempt.
	order := make([]int, len(e.Questions))
	for i := range order {
		order[i] = i + 1
	}
	if e.ShuffleQuestions {
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	for i, q := range e.Questions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO exam_responses (attempt_id, question_id, selected_option, marks_obtained, position)
			VALUES ($1,$2,NULL,0,$3)`,
			a.ID, q.QuestionID, order[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.attemptView(ctx, &a)
}

func (s *SQLStore) openAttempt(ctx context.Context, examID, userID int64) (*Attempt, error) {
	return s.scanAttempt(s.DB.QueryRowContext(ctx, `
		SELECT id, exam_id, user_id, start_time, end_time, completed, score, total_questions
		FROM exam_attempts WHERE exam_id=$1 AND user_id=$2 AND completed=$3`,
		examID, userID, false))
}

func (s *SQLStore) attemptByID(ctx context.Context, id int64) (*Attempt, error) {
	return s.scanAttempt(s.DB.QueryRowContext(ctx, `
		SELECT id, exam_id, user_id, start_time, end_time, completed, score, total_questions
		FROM exam_attempts WHERE id=$1`, id))
}

func (s *SQLStore) scanAttempt(row *sql.Row) (*Attempt, error) {
	var a Attempt
	var end sql.NullTime
	err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartTime, &end,
		&a.Completed, &a.Score, &a.TotalQuestions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		a.EndTime = &t
	}
	return &a, nil
}

func (s *SQLStore) attemptView(ctx context.Context, a *Attempt) (*AttemptView, error) {
	resp, err := s.responses(ctx, a, false, false)
	if err != nil {
		return nil, err
	}
	return &AttemptView{Attempt: *a, Responses: resp}, nil
}

// responses loads an attempt's responses in presentation order, joined
// with their questions. withAnswer / withExplanation control whether the
// correct answer and explanation ride along.
func (s *SQLStore) responses(ctx context.Context, a *Attempt, withAnswer, withExplanation bool) ([]ResponseDetail, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT r.id, r.question_id, r.selected_option, r.is_correct,
		       r.marks_obtained, r.position, r.updated_at,
		       q.ques, q.option_a, q.option_b, q.option_c, q.option_d,
		       eq.marks, q.answer, q.explanation
		FROM exam_responses r
		JOIN questions q ON q.id = r.question_id
		JOIN exam_questions eq ON eq.exam_id = $1 AND eq.question_id = r.question_id
		WHERE r.attempt_id = $2
		ORDER BY r.position`, a.ExamID, a.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ResponseDetail{}
	for rows.Next() {
		var d ResponseDetail
		var sel sql.NullString
		var correct sql.NullBool
		var updated sql.NullTime
		var answer, explanation string
		if err := rows.Scan(&d.ID, &d.QuestionID, &sel, &correct,
			&d.MarksObtained, &d.Position, &updated,
			&d.Ques, &d.OptionA, &d.OptionB, &d.OptionC, &d.OptionD,
			&d.Marks, &answer, &explanation); err != nil {
			return nil, err
		}
		d.AttemptID = a.ID
		if sel.Valid {
			v := sel.String
			d.SelectedOption = &v
		}
		if correct.Valid {
			v := correct.Bool
			d.IsCorrect = &v
		}
		if updated.Valid {
			t := updated.Time
			d.UpdatedAt = &t
		}
		if withAnswer {
			d.CorrectAnswer = answer
		}
		if withExplanation {
			d.Explanation = explanation
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveResponse records a selection on an open attempt. With
// can_change_answer off, the first non-null selection is final.
func (s *SQLStore) SaveResponse(ctx context.Context, userID, examID, attemptID, questionID int64, selected string) error {
	a, err := s.attemptByID(ctx, attemptID)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return ErrNotOwner
	}
	if a.ExamID != examID {
		return ErrAttemptNotFound
	}
	if a.Completed {
		return ErrAlreadyCompleted
	}

	var canChange bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT can_change_answer FROM exams WHERE id=$1`, examID).Scan(&canChange); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrExamNotFound
		}
		return err
	}
	if !canChange {
		var existing sql.NullString
		err := s.DB.QueryRowContext(ctx,
			`SELECT selected_option FROM exam_responses WHERE attempt_id=$1 AND question_id=$2`,
			attemptID, questionID).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAttemptNotFound
		}
		if err != nil {
			return err
		}
		if existing.Valid && existing.String != "" {
			return ErrAnswerLocked
		}
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE exam_responses SET selected_option=$1, updated_at=$2
		WHERE attempt_id=$3 AND question_id=$4`,
		selected, s.now(), attemptID, questionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

// Submit grades and closes an open attempt. The result's detail list is
// shaped by the exam's display settings.
func (s *SQLStore) Submit(ctx context.Context, userID, examID int64) (*Result, error) {
	a, err := s.openAttempt(ctx, examID, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	policy := MarkingPolicy{
		NegativeMarking:    e.NegativeMarking,
		NegativePercentage: e.NegativePercentage,
		AllowBlankAnswers:  e.AllowBlankAnswers,
	}

	details, err := s.responses(ctx, a, true, true)
	if err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	total := 0.0
	blanks := 0
	for i := range details {
		d := &details[i]
		selected := ""
		if d.SelectedOption != nil {
			selected = *d.SelectedOption
		}
		if selected == "" {
			blanks++
		}
		correctLetter := ResolveOption(d.CorrectAnswer, Options{
			A: d.OptionA, B: d.OptionB, C: d.OptionC, D: d.OptionD,
		})
		isCorrect, obtained := ScoreResponse(selected, correctLetter, d.Marks, policy)
		if _, err := tx.ExecContext(ctx, `
			UPDATE exam_responses SET is_correct=$1, marks_obtained=$2
			WHERE id=$3`, isCorrect, obtained, d.ID); err != nil {
			return nil, err
		}
		v := isCorrect
		d.IsCorrect = &v
		d.MarksObtained = obtained
		total += obtained
	}
	if blanks > 0 && !e.AllowBlankAnswers {
		log.Printf("exam %d attempt %d submitted with %d blank answers", examID, a.ID, blanks)
	}

	total = ClampScore(total)
	end := s.now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE exam_attempts SET completed=$1, end_time=$2, score=$3 WHERE id=$4`,
		true, end, total, a.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	a.Completed = true
	a.EndTime = &end
	a.Score = total

	res := &Result{
		Attempt:              *a,
		TotalMarks:           e.TotalMarks,
		PassingScore:         e.PassingScore,
		ShowScore:            e.ShowScore,
		ShowTestOutline:      e.ShowTestOutline,
		ShowCorrectIncorrect: e.ShowCorrectIncorrect,
		ShowCorrectAnswer:    e.ShowCorrectAnswer,
		ShowExplanation:      e.ShowExplanation,
	}
	if e.ShowTestOutline {
		for i := range details {
			if !e.ShowCorrectAnswer {
				details[i].CorrectAnswer = ""
			}
			if !e.ShowExplanation {
				details[i].Explanation = ""
			}
			if !e.ShowCorrectIncorrect {
				details[i].IsCorrect = nil
			}
		}
		res.Responses = details
	}
	return res, nil
}

// Recalculate re-grades every attempt of an exam, open ones included,
// with its current questions and marking settings. Completed flags are
// left alone: a closed attempt stays closed and an open one stays
// resumable with its rescored responses. Idempotent.
func (s *SQLStore) Recalculate(ctx context.Context, examID int64) (int, error) {
	e, err := s.GetExam(ctx, examID)
	if err != nil {
		return 0, err
	}
	policy := MarkingPolicy{
		NegativeMarking:    e.NegativeMarking,
		NegativePercentage: e.NegativePercentage,
		AllowBlankAnswers:  e.AllowBlankAnswers,
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, exam_id, user_id, start_time, end_time, completed, score, total_questions
		FROM exam_attempts WHERE exam_id=$1`, examID)
	if err != nil {
		return 0, err
	}
	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var end sql.NullTime
		if err := rows.Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartTime, &end,
			&a.Completed, &a.Score, &a.TotalQuestions); err != nil {
			rows.Close()
			return 0, err
		}
		if end.Valid {
			t := end.Time
			a.EndTime = &t
		}
		attempts = append(attempts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	// Read all response details before opening the write transaction;
	// sqlite blocks pooled reads while a write tx is open.
	byAttempt := make([][]ResponseDetail, len(attempts))
	for i := range attempts {
		details, err := s.responses(ctx, &attempts[i], true, false)
		if err != nil {
			return 0, err
		}
		byAttempt[i] = details
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for i := range attempts {
		a := &attempts[i]
		details := byAttempt[i]
		total := 0.0
		for _, d := range details {
			selected := ""
			if d.SelectedOption != nil {
				selected = *d.SelectedOption
			}
			correctLetter := ResolveOption(d.CorrectAnswer, Options{
				A: d.OptionA, B: d.OptionB, C: d.OptionC, D: d.OptionD,
			})
			isCorrect, obtained := ScoreResponse(selected, correctLetter, d.Marks, policy)
			if _, err := tx.ExecContext(ctx, `
				UPDATE exam_responses SET is_correct=$1, marks_obtained=$2
				WHERE id=$3`, isCorrect, obtained, d.ID); err != nil {
				return 0, err
			}
			total += obtained
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE exam_attempts SET score=$1 WHERE id=$2`,
			ClampScore(total), a.ID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(attempts), nil
}

// GetOpenAttempt returns the caller's in-progress attempt with its
// responses, for session resume.
func (s *SQLStore) GetOpenAttempt(ctx context.Context, userID, examID int64) (*AttemptView, error) {
	a, err := s.openAttempt(ctx, examID, userID)
	if err != nil {
		return nil, err
	}
	return s.attemptView(ctx, a)
}

// Leaderboard lists completed attempts ranked by score, fastest
// completion breaking ties.
func (s *SQLStore) Leaderboard(ctx context.Context, examID int64) ([]LeaderboardRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT a.id, a.user_id, COALESCE(u.name, ''), a.score, a.start_time, a.end_time
		FROM exam_attempts a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.exam_id=$1 AND a.completed=$2 AND a.end_time IS NOT NULL`,
		examID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LeaderboardRow{}
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.AttemptID, &r.UserID, &r.UserName, &r.Score,
			&r.StartTime, &r.EndTime); err != nil {
			return nil, err
		}
		r.CompletionSecs = r.EndTime.Sub(r.StartTime).Seconds()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CompletionSecs < out[j].CompletionSecs
	})
	return out, nil
}

// StudentResults lists a student's completed attempts, newest first.
func (s *SQLStore) StudentResults(ctx context.Context, userID int64) ([]StudentResult, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT a.id, a.exam_id, e.title, e.description, e.total_marks,
		       a.total_questions, a.score, a.start_time, a.end_time
		FROM exam_attempts a
		JOIN exams e ON e.id = a.exam_id
		WHERE a.user_id=$1 AND a.completed=$2
		ORDER BY a.start_time DESC`, userID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StudentResult{}
	for rows.Next() {
		var r StudentResult
		var end sql.NullTime
		if err := rows.Scan(&r.AttemptID, &r.ExamID, &r.ExamTitle, &r.Description,
			&r.TotalMarks, &r.QuestionCount, &r.Score, &r.StartTime, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			t := end.Time
			r.EndTime = &t
		}
		if r.TotalMarks > 0 {
			r.Percentage = int(r.Score/float64(r.TotalMarks)*100 + 0.5)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StudentStats aggregates a student's completed attempts.
func (s *SQLStore) StudentStats(ctx context.Context, userID int64) (*StudentStats, error) {
	var st StudentStats
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(score), 0), COALESCE(MAX(score), 0),
		       COALESCE(SUM(total_questions), 0)
		FROM exam_attempts WHERE user_id=$1 AND completed=$2`,
		userID, true).Scan(&st.TotalExams, &st.AverageScore, &st.HighestScore, &st.TotalQuestions)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
