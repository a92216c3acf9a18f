package http

import (
	"encoding/json"
	"net/http"

	"github.com/openqbank/qbank/internal/course"
	"github.com/openqbank/qbank/internal/rbac"
)

func ListCoursesHandler(store *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

func GetCourseHandler(store *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "courseID")
		if err != nil {
			http.Error(w, "bad course id", 400)
			return
		}
		c, err := store.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, c)
	}
}

func CreateCourseHandler(store *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c course.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if c.Name == "" {
			http.Error(w, "name is required", 400)
			return
		}
		c.CreatedBy = rbac.UserIDFromContext(r.Context())
		id, err := store.Create(r.Context(), &c)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, map[string]int64{"id": id})
	}
}

func UpdateCourseHandler(store *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "courseID")
		if err != nil {
			http.Error(w, "bad course id", 400)
			return
		}
		var c course.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if c.Name == "" {
			http.Error(w, "name is required", 400)
			return
		}
		c.ID = id
		if err := store.Update(r.Context(), &c); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

func DeleteCourseHandler(store *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "courseID")
		if err != nil {
			http.Error(w, "bad course id", 400)
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}

func AddCourseContentHandler(store *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := urlID(r, "courseID")
		if err != nil {
			http.Error(w, "bad course id", 400)
			return
		}
		var item course.Content
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if item.Title == "" {
			http.Error(w, "title is required", 400)
			return
		}
		item.CourseID = courseID
		id, err := store.AddContent(r.Context(), &item)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, map[string]int64{"id": id})
	}
}

func UpdateCourseContentHandler(store *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := urlID(r, "courseID")
		if err != nil {
			http.Error(w, "bad course id", 400)
			return
		}
		contentID, err := urlID(r, "contentID")
		if err != nil {
			http.Error(w, "bad content id", 400)
			return
		}
		var item course.Content
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		item.ID = contentID
		item.CourseID = courseID
		if err := store.UpdateContent(r.Context(), &item); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

func DeleteCourseContentHandler(store *course.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := urlID(r, "courseID")
		if err != nil {
			http.Error(w, "bad course id", 400)
			return
		}
		contentID, err := urlID(r, "contentID")
		if err != nil {
			http.Error(w, "bad content id", 400)
			return
		}
		if err := store.DeleteContent(r.Context(), courseID, contentID); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}
