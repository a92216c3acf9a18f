package rbac

import (
	"context"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role, perm string
		want       bool
	}{
		{"admin", "exam:delete", true},
		{"admin", "anything:at:all", true},
		{"teacher", "question:create", true},
		{"teacher", "exam:recalculate", false},
		{"teacher", "users:manage", false},
		{"student", "attempt:submit", true},
		{"student", "exam:create", false},
		{"student", "question:view", true},
		{"student", "question:delete", false},
		{"", "exam:view", false},
		{"ghost", "exam:view", false},
	}
	for _, tt := range tests {
		if got := c.Has(tt.role, tt.perm); got != tt.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "exam:create", "exam:view") {
		t.Error("student should match exam:view")
	}
	if c.Any("student", "exam:create", "users:manage") {
		t.Error("student should match neither")
	}
}

func TestMatchPerm(t *testing.T) {
	if !matchPerm("attempt:*", "attempt:submit") {
		t.Error("prefix wildcard should match")
	}
	if matchPerm("attempt:*", "exam:view") {
		t.Error("prefix wildcard must not match other prefixes")
	}
	if !matchPerm("*", "anything") {
		t.Error("bare wildcard matches everything")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRole(WithSubject(context.Background(), "42"), "admin")

	if got := RoleFromContext(ctx); got != "admin" {
		t.Errorf("role = %q", got)
	}
	if got := SubjectFromContext(ctx); got != "42" {
		t.Errorf("subject = %q", got)
	}
	if got := UserIDFromContext(ctx); got != 42 {
		t.Errorf("user id = %d", got)
	}
	if got := UserIDFromContext(context.Background()); got != 0 {
		t.Errorf("empty context user id = %d", got)
	}
}
