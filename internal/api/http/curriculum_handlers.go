package http

import (
	"encoding/json"
	"net/http"

	"github.com/openqbank/qbank/internal/curriculum"
)

type nameReq struct {
	Name string `json:"name"`
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req nameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name is required", 400)
		return "", false
	}
	return req.Name, true
}

func ListClassesHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListClasses(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateClassHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		c, err := store.CreateClass(r.Context(), name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, c)
	}
}

func RenameClassHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "classID")
		if err != nil {
			http.Error(w, "bad class id", 400)
			return
		}
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		if err := store.RenameClass(r.Context(), id, name); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

func DeleteClassHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "classID")
		if err != nil {
			http.Error(w, "bad class id", 400)
			return
		}
		if err := store.DeleteClass(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}

func ListSubjectsHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID, err := urlID(r, "classID")
		if err != nil {
			http.Error(w, "bad class id", 400)
			return
		}
		out, err := store.ListSubjects(r.Context(), classID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateSubjectHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID, err := urlID(r, "classID")
		if err != nil {
			http.Error(w, "bad class id", 400)
			return
		}
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		sub, err := store.CreateSubject(r.Context(), classID, name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, sub)
	}
}

func RenameSubjectHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "subjectID")
		if err != nil {
			http.Error(w, "bad subject id", 400)
			return
		}
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		if err := store.RenameSubject(r.Context(), id, name); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

func DeleteSubjectHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "subjectID")
		if err != nil {
			http.Error(w, "bad subject id", 400)
			return
		}
		if err := store.DeleteSubject(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}

func ListChaptersHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID, err := urlID(r, "subjectID")
		if err != nil {
			http.Error(w, "bad subject id", 400)
			return
		}
		out, err := store.ListChapters(r.Context(), subjectID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateChapterHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID, err := urlID(r, "subjectID")
		if err != nil {
			http.Error(w, "bad subject id", 400)
			return
		}
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		ch, err := store.CreateChapter(r.Context(), subjectID, name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, ch)
	}
}

func RenameChapterHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "chapterID")
		if err != nil {
			http.Error(w, "bad chapter id", 400)
			return
		}
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		if err := store.RenameChapter(r.Context(), id, name); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

func DeleteChapterHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "chapterID")
		if err != nil {
			http.Error(w, "bad chapter id", 400)
			return
		}
		if err := store.DeleteChapter(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}

func ListTopicsHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chapterID, err := urlID(r, "chapterID")
		if err != nil {
			http.Error(w, "bad chapter id", 400)
			return
		}
		out, err := store.ListTopics(r.Context(), chapterID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateTopicHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chapterID, err := urlID(r, "chapterID")
		if err != nil {
			http.Error(w, "bad chapter id", 400)
			return
		}
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		tp, err := store.CreateTopic(r.Context(), chapterID, name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, tp)
	}
}

func RenameTopicHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "topicID")
		if err != nil {
			http.Error(w, "bad topic id", 400)
			return
		}
		name, ok := decodeName(w, r)
		if !ok {
			return
		}
		if err := store.RenameTopic(r.Context(), id, name); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

func DeleteTopicHandler(store *curriculum.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "topicID")
		if err != nil {
			http.Error(w, "bad topic id", 400)
			return
		}
		if err := store.DeleteTopic(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}
