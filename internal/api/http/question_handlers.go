package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openqbank/qbank/internal/bank"
	"github.com/openqbank/qbank/internal/rbac"
)

func ListQuestionsHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := bank.ListFilter{
			Classname: q.Get("classname"),
			Subject:   q.Get("subject"),
			Chapter:   q.Get("chapter"),
			Topic:     q.Get("topic"),
			Search:    q.Get("search"),
		}
		f.Limit, _ = strconv.Atoi(q.Get("limit"))
		f.Offset, _ = strconv.Atoi(q.Get("offset"))

		out, err := store.List(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateQuestionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q bank.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if q.Ques == "" {
			http.Error(w, "ques is required", 400)
			return
		}
		q.DifficultyLevel = bank.NormalizeDifficulty(q.DifficultyLevel)
		q.CreatedBy = rbac.UserIDFromContext(r.Context())

		id, err := store.Create(r.Context(), &q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, map[string]int64{"id": id})
	}
}

func UpdateQuestionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "questionID")
		if err != nil {
			http.Error(w, "bad question id", 400)
			return
		}
		var q bank.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if q.Ques == "" {
			http.Error(w, "ques is required", 400)
			return
		}
		q.ID = id
		q.DifficultyLevel = bank.NormalizeDifficulty(q.DifficultyLevel)
		if err := store.Update(r.Context(), &q); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

func DeleteQuestionHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "questionID")
		if err != nil {
			http.Error(w, "bad question id", 400)
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}

func CountQuestionsHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.Count(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]int{"count": n})
	}
}

func QuestionStatsHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.GetStats(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, st)
	}
}

func RecentQuestionsHandler(store *bank.SQLStore) http.HandlerFunc {
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

func QuestionSubjectsHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.Subjects(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

// DELETE /questions/import/{batchID} rolls back one import batch.
func DeleteImportBatchHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID := chi.URLParam(r, "batchID")
		if batchID == "" {
			http.Error(w, "batch id required", 400)
			return
		}
		n, err := store.DeleteImportBatch(r.Context(), batchID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]int64{"deleted": n})
	}
}
