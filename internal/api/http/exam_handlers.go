package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openqbank/qbank/internal/exam"
	"github.com/openqbank/qbank/internal/rbac"
)

// gateUser assembles the caller's identity for the access gate from
// the token's id and role.
func gateUser(r *http.Request) exam.GateUser {
	return exam.GateUser{
		ID:   rbac.UserIDFromContext(r.Context()),
		Role: rbac.RoleFromContext(r.Context()),
	}
}

func ListExamsHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListExams(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, list)
	}
}

func CountExamsHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.CountExams(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]int{"count": n})
	}
}

func GetExamHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		e, err := store.GetExam(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		// Students never see the passcode or the allow lists.
		if rbac.RoleFromContext(r.Context()) != "admin" {
			e.AccessPasscode = ""
			e.IdentifierList = nil
			e.EmailList = nil
		}
		writeJSON(w, 200, e)
	}
}

func validateExam(e *exam.Exam) string {
	switch {
	case e.Title == "":
		return "title is required"
	case e.EndDatetime.Before(e.StartDatetime):
		return "end_datetime must not precede start_datetime"
	case e.NegativePercentage < 0 || e.NegativePercentage > 100:
		return "negative_percentage must be between 0 and 100"
	case e.AccessType == exam.AccessPasscode && e.AccessPasscode == "":
		return "passcode access requires a passcode"
	}
	return ""
}

func CreateExamHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if e.AccessType == "" {
			e.AccessType = exam.AccessAnyone
		}
		if e.AttemptLimitType == "" {
			e.AttemptLimitType = exam.AttemptsUnlimited
		}
		if msg := validateExam(&e); msg != "" {
			http.Error(w, msg, 400)
			return
		}
		e.CreatedBy = rbac.UserIDFromContext(r.Context())

		id, err := store.CreateExam(r.Context(), &e)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, map[string]int64{"id": id})
	}
}

func UpdateExamHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		e.ID = id
		if msg := validateExam(&e); msg != "" {
			http.Error(w, msg, 400)
			return
		}
		if err := store.UpdateExam(r.Context(), &e); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

func DeleteExamHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		if err := store.DeleteExam(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}

// POST /exams/{examID}/verify-access  { "passcode": "...", "identifier": "..." }
func VerifyAccessHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		var creds exam.Credentials
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&creds)
		}
		if err := store.VerifyAccess(r.Context(), gateUser(r), id, creds); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"access": true})
	}
}

func StartAttemptHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		var creds exam.Credentials
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&creds)
		}
		view, err := store.StartAttempt(r.Context(), gateUser(r), id, creds)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, view)
	}
}

// POST /exams/{examID}/response  { "attempt_id": N, "question_id": N, "selected_option": "A" }
func SaveResponseHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		var req struct {
			AttemptID      int64  `json:"attempt_id"`
			QuestionID     int64  `json:"question_id"`
			SelectedOption string `json:"selected_option"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.AttemptID == 0 || req.QuestionID == 0 {
			http.Error(w, "attempt_id and question_id required", 400)
			return
		}
		userID := rbac.UserIDFromContext(r.Context())
		err = store.SaveResponse(r.Context(), userID, examID, req.AttemptID, req.QuestionID, req.SelectedOption)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"saved": true})
	}
}

func SubmitHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		res, err := store.Submit(r.Context(), rbac.UserIDFromContext(r.Context()), examID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, res)
	}
}

func RecalculateHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		n, err := store.Recalculate(r.Context(), examID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]int{"recalculated": n})
	}
}

// GET /exams/{examID}/attempt resumes the caller's open attempt.
func GetAttemptHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		view, err := store.GetOpenAttempt(r.Context(), rbac.UserIDFromContext(r.Context()), examID)
		if errors.Is(err, exam.ErrAttemptNotFound) {
			writeJSON(w, 200, map[string]any{"attempt": nil})
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"attempt": view})
	}
}

func LeaderboardHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID, err := urlID(r, "examID")
		if err != nil {
			http.Error(w, "bad exam id", 400)
			return
		}
		rows, err := store.Leaderboard(r.Context(), examID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, rows)
	}
}
