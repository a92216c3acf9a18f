package bank

import (
	"errors"
	"time"
)

var ErrQuestionNotFound = errors.New("question not found")

// Question is a bank entry. Curriculum fields are denormalized text,
// matching how imported spreadsheets carry them.
type Question struct {
	ID              int64     `json:"id"`
	QSerial         string    `json:"qserial"`
	Classname       string    `json:"classname"`
	Subject         string    `json:"subject"`
	Chapter         string    `json:"chapter"`
	Topic           string    `json:"topic"`
	Ques            string    `json:"ques"`
	OptionA         string    `json:"option_a"`
	OptionB         string    `json:"option_b"`
	OptionC         string    `json:"option_c"`
	OptionD         string    `json:"option_d"`
	Answer          string    `json:"answer"`
	Explanation     string    `json:"explanation"`
	Hint            string    `json:"hint"`
	DifficultyLevel string    `json:"difficulty_level"`
	Reference       string    `json:"reference"`
	ImportBatchID   string    `json:"import_batch_id,omitempty"`
	CreatedBy       int64     `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NormalizedRecord is the extractor output contract: one row of
// normalized question data, not yet validated or deduplicated.
type NormalizedRecord struct {
	QSerial         string `json:"qserial"`
	Classname       string `json:"classname"`
	Subject         string `json:"subject"`
	Chapter         string `json:"chapter"`
	Topic           string `json:"topic"`
	Ques            string `json:"ques"`
	OptionA         string `json:"option_a"`
	OptionB         string `json:"option_b"`
	OptionC         string `json:"option_c"`
	OptionD         string `json:"option_d"`
	Answer          string `json:"answer"`
	Explanation     string `json:"explanation"`
	Hint            string `json:"hint"`
	DifficultyLevel string `json:"difficulty_level"`
	Reference       string `json:"reference"`
}

// ListFilter narrows a question listing. Zero values mean "no filter".
type ListFilter struct {
	Classname string
	Subject   string
	Chapter   string
	Topic     string
	Search    string
	Limit     int
	Offset    int
}

// Stats summarizes the bank for the dashboard.
type Stats struct {
	Total        int            `json:"total"`
	BySubject    map[string]int `json:"bySubject"`
	ByDifficulty map[string]int `json:"byDifficulty"`
}
