package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openqbank/qbank/internal/db"
	"github.com/openqbank/qbank/internal/rbac"
)

func testAuth(t *testing.T) (*AuthService, *sql.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "auth_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	sdb, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })
	return NewAuthService("test-secret", 4), sdb
}

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("test-secret", 4)

	tok, err := a.IssueJWT(42, "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "42" || c.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", c)
	}

	other := NewAuthService("different-secret", 4)
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("token must not verify under a different secret")
	}
	if _, err := a.Parse("not.a.token"); err == nil {
		t.Fatal("garbage must not parse")
	}
}

func TestSignupThenLogin(t *testing.T) {
	a, sdb := testAuth(t)

	signup := SignupHandler(a, sdb)
	rec := httptest.NewRecorder()
	signup(rec, httptest.NewRequest("POST", "/auth/signup",
		strings.NewReader(`{"name":"Stu","email":"Stu@Example.com","password":"secret1"}`)))
	if rec.Code != 200 {
		t.Fatalf("signup status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token"`) {
		t.Fatalf("signup body missing token: %s", rec.Body.String())
	}

	// Duplicate email, case-insensitive.
	rec = httptest.NewRecorder()
	signup(rec, httptest.NewRequest("POST", "/auth/signup",
		strings.NewReader(`{"name":"Stu2","email":"stu@example.com","password":"secret1"}`)))
	if rec.Code != 400 {
		t.Fatalf("duplicate signup status %d", rec.Code)
	}

	login := LoginHandler(a, sdb)
	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"email":"stu@example.com","password":"secret1"}`)))
	if rec.Code != 200 {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"email":"stu@example.com","password":"wrong"}`)))
	if rec.Code != 400 {
		t.Fatalf("bad password status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"email":"nobody@example.com","password":"secret1"}`)))
	if rec.Code != 400 {
		t.Fatalf("unknown user status %d", rec.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	a, sdb := testAuth(t)
	signup := SignupHandler(a, sdb)

	for _, body := range []string{
		`{"name":"","email":"x@y.com","password":"secret1"}`,
		`{"name":"X","email":"not-an-email","password":"secret1"}`,
		`{"name":"X","email":"x@y.com","password":"short"}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		signup(rec, httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body)))
		if rec.Code != 400 {
			t.Errorf("body %q: status %d, want 400", body, rec.Code)
		}
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret", 4)
	tok, err := a.IssueJWT(7, "student")
	if err != nil {
		t.Fatal(err)
	}

	var gotRole string
	var gotID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = rbac.RoleFromContext(r.Context())
		gotID = rbac.UserIDFromContext(r.Context())
	})
	h := JWTMiddleware(a)(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)
	if rec.Code != 200 || gotRole != "student" || gotID != 7 {
		t.Fatalf("status %d, role %q, id %d", rec.Code, gotRole, gotID)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status %d", rec.Code)
	}
}
