package http

import (
	"net/http"

	"github.com/openqbank/qbank/internal/exam"
	"github.com/openqbank/qbank/internal/rbac"
)

// GET /student/exams — the caller's completed attempts.
func StudentResultsHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.StudentResults(r.Context(), rbac.UserIDFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

// GET /student/stats — aggregate numbers for the dashboard.
func StudentStatsHandler(store *exam.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.StudentStats(r.Context(), rbac.UserIDFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, st)
	}
}
