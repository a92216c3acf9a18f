package exam

import (
	"errors"
	"time"
)

var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrNotOwner         = errors.New("attempt does not belong to user")
	ErrAlreadyCompleted = errors.New("exam has already been submitted")
	ErrAnswerLocked     = errors.New("answers cannot be changed for this exam")
)

// Access policies.
const (
	AccessAnyone         = "anyone"
	AccessPasscode       = "passcode"
	AccessIdentifierList = "identifier_list"
	AccessEmailList      = "email_list"
)

// Attempt limit policies.
const (
	AttemptsUnlimited = "unlimited"
	AttemptsLimited   = "limited"
)

// Exam carries the full settings surface of an assessment.
type Exam struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	StartDatetime   time.Time `json:"start_datetime"`
	EndDatetime     time.Time `json:"end_datetime"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      int       `json:"total_marks"`
	PassingScore    int       `json:"passing_score"`

	NegativeMarking    bool `json:"negative_marking"`
	NegativePercentage int  `json:"negative_percentage"`
	ShuffleQuestions   bool `json:"shuffle_questions"`
	CanChangeAnswer    bool `json:"can_change_answer"`
	AllowBlankAnswers  bool `json:"allow_blank_answers"`

	ShowScore            bool `json:"show_score"`
	ShowTestOutline      bool `json:"show_test_outline"`
	ShowCorrectIncorrect bool `json:"show_correct_incorrect"`
	ShowCorrectAnswer    bool `json:"show_correct_answer"`
	ShowExplanation      bool `json:"show_explanation"`

	AccessType       string   `json:"access_type"`
	AccessPasscode   string   `json:"access_passcode,omitempty"`
	IdentifierList   []string `json:"identifier_list,omitempty"`
	EmailList        []string `json:"email_list,omitempty"`
	AttemptLimitType string   `json:"attempt_limit_type"`
	MaxAttempts      int      `json:"max_attempts"`

	CourseID  *int64     `json:"course_id,omitempty"`
	CreatedBy int64      `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Attached content, populated on detail reads and accepted on writes.
	Chapters  []int64           `json:"chapters,omitempty"`
	Questions []ExamQuestionRef `json:"questions,omitempty"`
}

// ExamQuestionRef links a bank question into an exam with per-question
// marks and a presentation position.
type ExamQuestionRef struct {
	QuestionID int64   `json:"id"`
	Marks      float64 `json:"marks"`
	Order      int     `json:"question_order"`
}

// Summary is the list-view projection of an exam.
type Summary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	TotalMarks    int       `json:"total_marks"`
	CourseID      *int64    `json:"course_id,omitempty"`
	CourseName    string    `json:"course_name,omitempty"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Attempt is one student's instance of taking one exam.
type Attempt struct {
	ID             int64      `json:"id"`
	ExamID         int64      `json:"exam_id"`
	UserID         int64      `json:"user_id"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Completed      bool       `json:"completed"`
	Score          float64    `json:"score"`
	TotalQuestions int        `json:"total_questions"`
}

// Response is a student's recorded selection for one question.
type Response struct {
	ID             int64      `json:"id"`
	AttemptID      int64      `json:"attempt_id"`
	QuestionID     int64      `json:"question_id"`
	SelectedOption *string    `json:"selected_option"`
	IsCorrect      *bool      `json:"is_correct,omitempty"`
	MarksObtained  float64    `json:"marks_obtained"`
	Position       int        `json:"position"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// ResponseDetail joins a response with its question for result views.
// CorrectAnswer and Explanation are populated only when the exam's
// display settings allow.
type ResponseDetail struct {
	Response
	Ques          string  `json:"ques"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	Marks         float64 `json:"marks"`
	CorrectAnswer string  `json:"answer,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
}

// AttemptView is an attempt plus its responses, as served to the student
// while the attempt is in progress.
type AttemptView struct {
	Attempt
	Responses []ResponseDetail `json:"responses"`
}

// Result is the view returned on submit, shaped by display settings.
type Result struct {
	Attempt
	TotalMarks           int              `json:"total_marks"`
	PassingScore         int              `json:"passing_score"`
	ShowScore            bool             `json:"show_score"`
	ShowTestOutline      bool             `json:"show_test_outline"`
	ShowCorrectIncorrect bool             `json:"show_correct_incorrect"`
	ShowCorrectAnswer    bool             `json:"show_correct_answer"`
	ShowExplanation      bool             `json:"show_explanation"`
	Responses            []ResponseDetail `json:"responses,omitempty"`
}

// Credentials accompany a start or verify-access call.
type Credentials struct {
	Passcode   string `json:"passcode"`
	Identifier string `json:"identifier"`
}

// LeaderboardRow is one completed attempt on the per-exam leaderboard.
type LeaderboardRow struct {
	AttemptID      int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	UserName       string    `json:"user_name"`
	Score          float64   `json:"score"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	CompletionSecs float64   `json:"completion_time_seconds"`
}

// StudentResult is a completed attempt joined with its exam, for the
// student results listing.
type StudentResult struct {
	AttemptID     int64      `json:"id"`
	ExamID        int64      `json:"exam_id"`
	ExamTitle     string     `json:"title"`
	Description   string     `json:"description"`
	TotalMarks    int        `json:"total_marks"`
	QuestionCount int        `json:"question_count"`
	Score         float64    `json:"score"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Percentage    int        `json:"percentage"`
}

// StudentStats aggregates a student's completed attempts.
type StudentStats struct {
	TotalExams     int     `json:"totalExams"`
	AverageScore   float64 `json:"averageScore"`
	HighestScore   float64 `json:"highestScore"`
	TotalQuestions int     `json:"totalQuestions"`
}
