package subscriber

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidPayload    Kind = "invalid_payload"
	KindMissingName       Kind = "missing_name"
	KindInvalidName       Kind = "invalid_name"
	KindInvalidEmail      Kind = "invalid_email"
	KindInvalidPassword   Kind = "invalid_password"
	KindWeakPassword      Kind = "weak_password"
	KindInvalidID         Kind = "invalid_id"
	KindHashingFailure    Kind = "hashing_failure"
	KindRepositoryFailure Kind = "repository_failure"
	KindServiceFailure    Kind = "service_failure"
)

// Error carries a kind so callers can branch without comparing messages.
// Err is the underlying cause and is never rendered to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrServiceFailure)
// holds for every service failure regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidPayload  = &Error{Kind: KindInvalidPayload, Message: "Received an invalid payload format!"}
	ErrMissingName     = &Error{Kind: KindMissingName, Message: "Missing subscriber name!"}
	ErrInvalidName     = &Error{Kind: KindInvalidName, Message: fmt.Sprintf("Name exceeded %d characters or contains special characters!", MaxNameLength)}
	ErrInvalidEmail    = &Error{Kind: KindInvalidEmail, Message: "Missing/Invalid subscriber email address!"}
	ErrInvalidPassword = &Error{Kind: KindInvalidPassword, Message: "Missing password or password was not a string value!"}
	ErrWeakPassword    = &Error{Kind: KindWeakPassword, Message: "Password must be at least 12 characters, contain 1 uppercase and lowercase, 1 digit, and 1 special character."}
	ErrInvalidID       = &Error{Kind: KindInvalidID, Message: "Received an invalid subscriber id!"}

	ErrHashingFailure    = &Error{Kind: KindHashingFailure, Message: "Failed to hash/salt password!"}
	ErrRepositoryFailure = &Error{Kind: KindRepositoryFailure, Message: "Repository operation failed"}
	ErrServiceFailure    = &Error{Kind: KindServiceFailure, Message: "Service operation failed"}
)

// ErrNotFound is returned by repositories when no row matches. It is not a
// failure: the service turns it into an absent value.
var ErrNotFound = errors.New("subscriber not found")

func HashingFailure(cause error) error {
	return &Error{Kind: KindHashingFailure, Message: ErrHashingFailure.Message, Err: cause}
}

func RepositoryFailure(op string, cause error) error {
	return &Error{Kind: KindRepositoryFailure, Message: "subscriber repository: " + op, Err: cause}
}

// ServiceFailure deliberately drops the cause; it is what reaches clients.
func ServiceFailure(message string) error {
	return &Error{Kind: KindServiceFailure, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
