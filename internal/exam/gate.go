package exam

import (
	"errors"
	"strings"
	"time"
)

// Gate denial reasons. Each maps to a distinct message at the API layer
// so the client can tell a bad passcode from a closed window.
var (
	ErrNotAvailable      = errors.New("exam is not currently available")
	ErrInvalidPasscode   = errors.New("invalid passcode")
	ErrInvalidIdentifier = errors.New("identifier not authorized for this exam")
	ErrInvalidEmail      = errors.New("email not authorized for this exam")
	ErrInvalidAccessType = errors.New("invalid exam access type")
	ErrAttemptLimit      = errors.New("maximum attempts reached")
)

// GateUser is the slice of the caller the gate needs.
type GateUser struct {
	ID   int64
	Role string
}

// CanStart decides whether a user may begin an attempt right now.
// Rules run in order and the first failure wins; completedAttempts
// counts only finished attempts, so an abandoned open attempt never
// burns a try. Pure: the caller wraps it in the start transaction.
func CanStart(u GateUser, e *Exam, creds Credentials, now time.Time, completedAttempts int) error {
	if u.Role == "admin" {
		return nil
	}

	if now.Before(e.StartDatetime) || now.After(e.EndDatetime) {
		return ErrNotAvailable
	}

	switch e.AccessType {
	case AccessAnyone, "":
	case AccessPasscode:
		if creds.Passcode == "" || creds.Passcode != e.AccessPasscode {
			return ErrInvalidPasscode
		}
	case AccessIdentifierList:
		if !containsFold(e.IdentifierList, creds.Identifier) {
			return ErrInvalidIdentifier
		}
	case AccessEmailList:
		// Both list gates read the submitted identifier; for the email
		// gate the listed values happen to be addresses.
		if !containsFold(e.EmailList, creds.Identifier) {
			return ErrInvalidEmail
		}
	default:
		return ErrInvalidAccessType
	}

	if e.AttemptLimitType == AttemptsLimited && e.MaxAttempts > 0 && completedAttempts >= e.MaxAttempts {
		return ErrAttemptLimit
	}

	return nil
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}
