package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/openqbank/qbank/internal/activity"
	"github.com/openqbank/qbank/internal/rbac"
)

// POST /activity — append an entry attributed to the caller.
func LogActivityHandler(store *activity.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e activity.Entry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if e.Action == "" || e.EntityType == "" {
			http.Error(w, "action and entity_type are required", 400)
			return
		}
		e.UserID = rbac.UserIDFromContext(r.Context())
		if err := store.Log(r.Context(), &e); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, e)
	}
}

// GET /activity/recent?limit=N
func RecentActivityHandler(store *activity.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		out, err := store.Recent(r.Context(), n)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}
