package bank

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RowError records why one record was rejected; the batch carries on.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummary reports what happened to a batch.
type ImportSummary struct {
	BatchID    string     `json:"batch_id"`
	Inserted   int        `json:"inserted"`
	Duplicates int        `json:"duplicates"`
	Errors     []RowError `json:"errors,omitempty"`
}

// difficultySynonyms folds the vocabulary seen in real import sheets
// onto easy|medium|hard. Unknown values pass through verbatim so bad
// data stays visible instead of silently becoming medium.
var difficultySynonyms = map[string]string{
	"easy":        "easy",
	"simple":      "easy",
	"beginner":    "easy",
	"medium":      "medium",
	"moderate":    "medium",
	"normal":      "medium",
	"hard":        "hard",
	"difficult":   "hard",
	"challenging": "hard",
	"tough":       "hard",
}

// NormalizeDifficulty maps a free-form difficulty onto the canonical
// scale. Empty becomes medium.
func NormalizeDifficulty(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "medium"
	}
	if canon, ok := difficultySynonyms[v]; ok {
		return canon
	}
	return v
}

// ImportBatch inserts a slice of normalized records under one batch id.
// Rows missing required fields or already present in the bank are
// skipped; every insert is its own attempt so one bad row never aborts
// the batch. Row numbers in errors are 1-based.
func (s *SQLStore) ImportBatch(ctx context.Context, records []NormalizedRecord, ownerID int64) (*ImportSummary, error) {
	sum := &ImportSummary{BatchID: uuid.NewString()}

	for i, rec := range records {
		row := i + 1
		rec.Ques = strings.TrimSpace(rec.Ques)
		rec.Classname = strings.TrimSpace(rec.Classname)
		rec.Subject = strings.TrimSpace(rec.Subject)

		switch {
		case rec.Ques == "":
			sum.Errors = append(sum.Errors, RowError{Row: row, Reason: "missing question text"})
			continue
		case rec.Subject == "":
			sum.Errors = append(sum.Errors, RowError{Row: row, Reason: "missing subject"})
			continue
		case rec.Classname == "":
			sum.Errors = append(sum.Errors, RowError{Row: row, Reason: "missing classname"})
			continue
		}

		dup, err := s.exists(ctx, rec.Classname, rec.Subject, rec.Ques)
		if err != nil {
			sum.Errors = append(sum.Errors, RowError{Row: row, Reason: fmt.Sprintf("duplicate check: %v", err)})
			continue
		}
		if dup {
			sum.Duplicates++
			continue
		}

		q := Question{
			QSerial:         rec.QSerial,
			Classname:       rec.Classname,
			Subject:         rec.Subject,
			Chapter:         rec.Chapter,
			Topic:           rec.Topic,
			Ques:            rec.Ques,
			OptionA:         rec.OptionA,
			OptionB:         rec.OptionB,
			OptionC:         rec.OptionC,
			OptionD:         rec.OptionD,
			Answer:          rec.Answer,
			Explanation:     rec.Explanation,
			Hint:            rec.Hint,
			DifficultyLevel: NormalizeDifficulty(rec.DifficultyLevel),
			Reference:       rec.Reference,
			ImportBatchID:   sum.BatchID,
			CreatedBy:       ownerID,
		}
		if _, err := s.Create(ctx, &q); err != nil {
			sum.Errors = append(sum.Errors, RowError{Row: row, Reason: err.Error()})
			continue
		}
		sum.Inserted++
	}
	return sum, nil
}
