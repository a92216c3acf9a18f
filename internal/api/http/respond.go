package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openqbank/qbank/internal/bank"
	"github.com/openqbank/qbank/internal/course"
	"github.com/openqbank/qbank/internal/curriculum"
	"github.com/openqbank/qbank/internal/exam"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps store errors onto HTTP statuses. Unknown errors are 500
// with a generic body; the real cause goes to the request log.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrExamNotFound),
		errors.Is(err, exam.ErrAttemptNotFound),
		errors.Is(err, bank.ErrQuestionNotFound),
		errors.Is(err, curriculum.ErrNotFound),
		errors.Is(err, course.ErrNotFound),
		errors.Is(err, course.ErrContentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrNotOwner),
		errors.Is(err, exam.ErrNotAvailable),
		errors.Is(err, exam.ErrInvalidPasscode),
		errors.Is(err, exam.ErrInvalidIdentifier),
		errors.Is(err, exam.ErrInvalidEmail),
		errors.Is(err, exam.ErrInvalidAccessType),
		errors.Is(err, exam.ErrAttemptLimit):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, exam.ErrAlreadyCompleted),
		errors.Is(err, exam.ErrAnswerLocked),
		errors.Is(err, curriculum.ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
