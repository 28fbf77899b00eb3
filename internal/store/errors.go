package store

import "fmt"

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictReason names the uniqueness rule a write would break.
type ConflictReason string

const (
	DuplicatePhone ConflictReason = "duplicate_phone"
	DuplicateEmail ConflictReason = "duplicate_email"
)

// ConflictError is returned when a phone number or email is already taken.
type ConflictError struct {
	Reason ConflictReason
}

func (e *ConflictError) Error() string {
	switch e.Reason {
	case DuplicatePhone:
		return "phone number already registered"
	case DuplicateEmail:
		return "email already registered"
	default:
		return "conflict: " + string(e.Reason)
	}
}

// AuthReason names why a caller was turned away.
type AuthReason string

const (
	InvalidCredentials AuthReason = "invalid_credentials"
	NotAdministrator   AuthReason = "not_administrator"
	NotMember          AuthReason = "not_member"
)

// AuthError covers bad credentials and missing privileges.
type AuthError struct {
	Reason AuthReason
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case InvalidCredentials:
		return "invalid credentials"
	case NotAdministrator:
		return "administrator privileges required"
	case NotMember:
		return "not a member of this group"
	default:
		return "unauthorized: " + string(e.Reason)
	}
}

// NotFoundError is returned when an identifier matches nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
