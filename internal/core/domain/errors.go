package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrBudgetExceeded    = errors.New("text budget exceeded")
	ErrAITimeout         = errors.New("ai timeout")
	ErrExtraction        = errors.New("extraction failure")
	ErrTemporary         = errors.New("temporary failure")
	ErrMalformedResponse = errors.New("malformed response")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// UserError carries a human-readable, actionable message that is safe to
// return to the uploader verbatim.
type UserError struct {
	Kind    error
	Message string
}

func NewUserError(kind error, format string, args ...any) *UserError {
	return &UserError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Kind
}

// UserMessage returns the message of the first UserError in the chain.
func UserMessage(err error) (string, bool) {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Message, true
	}
	return "", false
}
