package workflow

import "fmt"

// Kind classifies engine errors so callers and the HTTP layer can map them
// without string matching.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "concurrent_modification"
	KindForbidden         Kind = "authorization_denied"
)

// Error is the typed error returned by every engine operation. Reason is a
// human-readable explanation suitable for API responses.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Reason
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// works regardless of the reason text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is checks.
var (
	ErrValidation        = &Error{Kind: KindValidation, Reason: "validation failed"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Reason: "operation not permitted from current status"}
	ErrNotFound          = &Error{Kind: KindNotFound, Reason: "not found"}
	ErrConflict          = &Error{Kind: KindConflict, Reason: "lost concurrent modification race"}
	ErrForbidden         = &Error{Kind: KindForbidden, Reason: "not permitted"}
)

func Validationf(format string, v ...interface{}) error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, v...)}
}

func InvalidTransitionf(format string, v ...interface{}) error {
	return &Error{Kind: KindInvalidTransition, Reason: fmt.Sprintf(format, v...)}
}

func NotFoundf(format string, v ...interface{}) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, v...)}
}

func Conflictf(format string, v ...interface{}) error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, v...)}
}

func Forbiddenf(format string, v ...interface{}) error {
	return &Error{Kind: KindForbidden, Reason: fmt.Sprintf(format, v...)}
}
