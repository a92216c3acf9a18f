package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/openqbank/qbank/internal/rbac"
)

type userRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

var validRoles = map[string]bool{"student": true, "teacher": true, "admin": true}

// GET /users — admin listing.
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT id, name, email, role, created_at FROM users ORDER BY id`)
		if err != nil {
			writeErr(w, err)
			return
		}
		defer rows.Close()

		out := []userRow{}
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
				writeErr(w, err)
				return
			}
			out = append(out, u)
		}
		if err := rows.Err(); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, out)
	}
}

// POST /users — admin creates a user with an explicit role.
func CreateUserHandler(db *sql.DB, bcryptCost int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Name == "" || !strings.Contains(req.Email, "@") {
			http.Error(w, "name and a valid email are required", 400)
			return
		}
		if len(req.Password) < 6 {
			http.Error(w, "password must be at least 6 characters long", 400)
			return
		}
		if req.Role == "" {
			req.Role = "student"
		}
		if !validRoles[req.Role] {
			http.Error(w, "invalid role", 400)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			writeErr(w, err)
			return
		}

		var id int64
		err = db.QueryRowContext(r.Context(),
			`INSERT INTO users (name, email, password_hash, role) VALUES ($1,$2,$3,$4) RETURNING id`,
			req.Name, req.Email, string(hash), req.Role).Scan(&id)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				http.Error(w, "email already in use", http.StatusConflict)
				return
			}
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, map[string]int64{"id": id})
	}
}

// PUT /users/{userID} — admin edits name, role and optionally password.
func UpdateUserHandler(db *sql.DB, bcryptCost int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "userID")
		if err != nil {
			http.Error(w, "bad user id", 400)
			return
		}
		var req struct {
			Name     string `json:"name"`
			Role     string `json:"role"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", 400)
			return
		}
		if req.Role == "" {
			req.Role = "student"
		}
		if !validRoles[req.Role] {
			http.Error(w, "invalid role", 400)
			return
		}

		res, err := db.ExecContext(r.Context(),
			`UPDATE users SET name=$1, role=$2 WHERE id=$3`, req.Name, req.Role, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		if req.Password != "" {
			if len(req.Password) < 6 {
				http.Error(w, "password must be at least 6 characters long", 400)
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
			if err != nil {
				writeErr(w, err)
				return
			}
			if _, err := db.ExecContext(r.Context(),
				`UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), id); err != nil {
				writeErr(w, err)
				return
			}
		}
		writeJSON(w, 200, map[string]bool{"updated": true})
	}
}

// DELETE /users/{userID} — admins cannot delete themselves.
func DeleteUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "userID")
		if err != nil {
			http.Error(w, "bad user id", 400)
			return
		}
		if id == rbac.UserIDFromContext(r.Context()) {
			http.Error(w, "cannot delete your own account", 400)
			return
		}
		res, err := db.ExecContext(r.Context(), `DELETE FROM users WHERE id=$1`, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		writeJSON(w, 200, map[string]bool{"deleted": true})
	}
}

// POST /users/change-password — any authenticated user, own password.
func ChangePasswordHandler(db *sql.DB, bcryptCost int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if len(req.NewPassword) < 6 {
			http.Error(w, "password must be at least 6 characters long", 400)
			return
		}

		userID := rbac.UserIDFromContext(r.Context())
		var hash string
		err := db.QueryRowContext(r.Context(),
			`SELECT password_hash FROM users WHERE id=$1`, userID).Scan(&hash)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OldPassword)) != nil {
			http.Error(w, "invalid credentials", 400)
			return
		}

		newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			writeErr(w, err)
			return
		}
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET password_hash=$1 WHERE id=$2`, string(newHash), userID); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"changed": true})
	}
}
