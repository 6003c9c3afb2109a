package domain

import "errors"

// Error kinds. Specific errors below wrap one of these so callers can classify with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrStore        = errors.New("store unavailable")
	ErrDecryption   = errors.New("decryption failed")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	// ErrAssignmentNotFound is returned when an assignment id does not resolve.
	ErrAssignmentNotFound = kind(ErrNotFound, "quiz assignment not found")
	// ErrResultNotFound also covers results owned by another student.
	ErrResultNotFound = kind(ErrNotFound, "result not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = kind(ErrNotFound, "quiz not found")
	// ErrUserNotFound is returned for unknown user ids.
	ErrUserNotFound = kind(ErrNotFound, "user not found")
	// ErrStudentNotFound is returned when an assignment targets a missing or non-student account.
	ErrStudentNotFound = kind(ErrNotFound, "student not found")

	// ErrNotAssignee is returned when a student acts on someone else's assignment.
	ErrNotAssignee = kind(ErrForbidden, "not authorized to take this quiz")
	// ErrSubmitNotAllowed hides whether a submitted assignment exists or belongs to someone else.
	ErrSubmitNotAllowed = kind(ErrForbidden, "not authorized or assignment not found")
	// ErrAlreadyCompleted is returned when serving questions for a finished assignment.
	ErrAlreadyCompleted = kind(ErrForbidden, "you have already completed this quiz")
	// ErrAlreadySubmitted is returned when a second submission loses the completion race.
	ErrAlreadySubmitted = kind(ErrForbidden, "quiz already submitted")
	// ErrNotScheduledToday is returned outside the assignment's scheduled day.
	ErrNotScheduledToday = kind(ErrForbidden, "this quiz is not scheduled for today")

	// ErrNoQuestions guards the percentage division.
	ErrNoQuestions = kind(ErrInvalidState, "quiz has no questions")

	// ErrAlreadyAssigned is returned for a second assignment of the same quiz to a student.
	ErrAlreadyAssigned = kind(ErrConflict, "student is already assigned this quiz")
	// ErrUsernameTaken is returned when provisioning a duplicate username.
	ErrUsernameTaken = kind(ErrConflict, "user already exists")
	// ErrQuizInUse blocks deleting a quiz that still has assignments.
	ErrQuizInUse = kind(ErrConflict, "quiz has assignments and cannot be deleted")

	// ErrInvalidCredentials is returned by login.
	ErrInvalidCredentials = kind(ErrUnauthorized, "invalid username or password")
	// ErrTokenRevoked is returned for tokens that were logged out.
	ErrTokenRevoked = kind(ErrUnauthorized, "token revoked")
)

// kindError carries a human message and the kind it belongs to.
type kindError struct {
	kind error
	msg  string
}

func kind(k error, msg string) error { return &kindError{kind: k, msg: msg} }

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Invalid builds an ErrInvalidInput with a caller-facing message.
func Invalid(msg string) error { return kind(ErrInvalidInput, msg) }

// Message returns the caller-facing message of a domain error, or "" when err has none.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return ""
}

// Permanent reports whether err is a domain outcome that retrying cannot change.
func Permanent(err error) bool {
	for _, k := range []error{ErrNotFound, ErrForbidden, ErrInvalidState, ErrDecryption, ErrInvalidInput, ErrConflict, ErrUnauthorized} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
