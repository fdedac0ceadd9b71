package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation marks input that failed shape or range checks.
	ErrValidation = errors.New("validation failed")
	// ErrRuleViolation marks requests rejected by a business rule (stock, subscriptions, discount windows).
	ErrRuleViolation = errors.New("business rule violation")
	// ErrPersistence marks a failed read or write against a backing store.
	ErrPersistence = errors.New("persistence failure")
)

// Problem is an error with a client-facing message, classified by one of the kinds above.
type Problem struct {
	Kind    error
	Message string
	Cause   error
}

func (p *Problem) Error() string {
	if p.Cause != nil {
		return p.Message + ": " + p.Cause.Error()
	}
	return p.Message
}

func (p *Problem) Unwrap() []error {
	if p.Cause != nil {
		return []error{p.Kind, p.Cause}
	}
	return []error{p.Kind}
}

// NotFound returns a Problem of kind ErrNotFound.
func NotFound(msg string) *Problem {
	return &Problem{Kind: ErrNotFound, Message: msg}
}

// Invalid returns a Problem of kind ErrValidation.
func Invalid(msg string) *Problem {
	return &Problem{Kind: ErrValidation, Message: msg}
}

// Rule returns a Problem of kind ErrRuleViolation.
func Rule(msg string) *Problem {
	return &Problem{Kind: ErrRuleViolation, Message: msg}
}

// Persistence wraps a storage error under a generic save-failed message.
func Persistence(msg string, cause error) *Problem {
	return &Problem{Kind: ErrPersistence, Message: msg, Cause: cause}
}

// Message extracts the client-facing message of err, falling back to def.
func Message(err error, def string) string {
	var p *Problem
	if errors.As(err, &p) {
		return p.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "not found"
	}
	return def
}
