package exam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func gateExam() *Exam {
	return &Exam{
		StartDatetime:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		EndDatetime:      time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC),
		AccessType:       AccessAnyone,
		AttemptLimitType: AttemptsUnlimited,
	}
}

func TestCanStartWindow(t *testing.T) {
	e := gateExam()
	student := GateUser{ID: 1, Role: "student"}
	inWindow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, CanStart(student, e, Credentials{}, inWindow, 0))

	before := e.StartDatetime.Add(-time.Minute)
	assert.ErrorIs(t, CanStart(student, e, Credentials{}, before, 0), ErrNotAvailable)

	after := e.EndDatetime.Add(time.Minute)
	assert.ErrorIs(t, CanStart(student, e, Credentials{}, after, 0), ErrNotAvailable)
}

func TestCanStartAdminBypassesEverything(t *testing.T) {
	e := gateExam()
	e.AccessType = AccessPasscode
	e.AccessPasscode = "hunter2"
	e.AttemptLimitType = AttemptsLimited
	e.MaxAttempts = 1
	admin := GateUser{ID: 9, Role: "admin"}

	outside := e.EndDatetime.Add(48 * time.Hour)
	assert.NoError(t, CanStart(admin, e, Credentials{}, outside, 5))
}

func TestCanStartPasscode(t *testing.T) {
	e := gateExam()
	e.AccessType = AccessPasscode
	e.AccessPasscode = "hunter2"
	student := GateUser{ID: 1, Role: "student"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, CanStart(student, e, Credentials{}, now, 0), ErrInvalidPasscode)
	assert.ErrorIs(t, CanStart(student, e, Credentials{Passcode: "wrong"}, now, 0), ErrInvalidPasscode)
	assert.NoError(t, CanStart(student, e, Credentials{Passcode: "hunter2"}, now, 0))
}

func TestCanStartIdentifierList(t *testing.T) {
	e := gateExam()
	e.AccessType = AccessIdentifierList
	e.IdentifierList = []string{"ROLL-101", "roll-102"}
	student := GateUser{ID: 1, Role: "student"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, CanStart(student, e, Credentials{Identifier: "roll-101"}, now, 0))
	assert.NoError(t, CanStart(student, e, Credentials{Identifier: " ROLL-102 "}, now, 0))
	assert.ErrorIs(t, CanStart(student, e, Credentials{Identifier: "roll-999"}, now, 0), ErrInvalidIdentifier)
	assert.ErrorIs(t, CanStart(student, e, Credentials{}, now, 0), ErrInvalidIdentifier)
}

func TestCanStartEmailList(t *testing.T) {
	e := gateExam()
	e.AccessType = AccessEmailList
	e.EmailList = []string{"allowed@example.com"}
	student := GateUser{ID: 1, Role: "student"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// The gate reads the submitted identifier, not the account email.
	assert.NoError(t, CanStart(student, e, Credentials{Identifier: "Allowed@Example.com"}, now, 0))
	assert.NoError(t, CanStart(student, e, Credentials{Identifier: " allowed@example.com "}, now, 0))
	assert.ErrorIs(t, CanStart(student, e, Credentials{Identifier: "other@example.com"}, now, 0), ErrInvalidEmail)
	assert.ErrorIs(t, CanStart(student, e, Credentials{}, now, 0), ErrInvalidEmail)
}

func TestCanStartUnknownAccessType(t *testing.T) {
	e := gateExam()
	e.AccessType = "invite_only"
	student := GateUser{ID: 1, Role: "student"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, CanStart(student, e, Credentials{}, now, 0), ErrInvalidAccessType)
}

func TestCanStartAttemptLimit(t *testing.T) {
	e := gateExam()
	e.AttemptLimitType = AttemptsLimited
	e.MaxAttempts = 2
	student := GateUser{ID: 1, Role: "student"}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, CanStart(student, e, Credentials{}, now, 0))
	assert.NoError(t, CanStart(student, e, Credentials{}, now, 1))
	assert.ErrorIs(t, CanStart(student, e, Credentials{}, now, 2), ErrAttemptLimit)
	assert.ErrorIs(t, CanStart(student, e, Credentials{}, now, 3), ErrAttemptLimit)
}
