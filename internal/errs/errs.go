// Package errs defines the typed failure kinds the core route engine can
// surface, per the error handling design: the engine either returns a
// result or raises one of these, never partially.
package errs

import "fmt"

// Kind classifies a core failure.
type Kind int

const (
	// UnknownStation means an origin or destination code is not in the
	// network store.
	UnknownStation Kind = iota
	// InvalidProfile means the profile tag is outside {PHY, VIS, AUD, ELD}.
	InvalidProfile
	// InconsistentNetwork means reconstruction hit an order/adjacency
	// mismatch that should be impossible by construction.
	InconsistentNetwork
)

func (k Kind) String() string {
	switch k {
	case UnknownStation:
		return "UnknownStation"
	case InvalidProfile:
		return "InvalidProfile"
	case InconsistentNetwork:
		return "InconsistentNetwork"
	default:
		return "Unknown"
	}
}

// Error is the typed failure returned by the core for the kinds above.
// NoRoute is deliberately not represented here: an exhausted search
// returns an empty, non-error result.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is makes errors.Is(err, &errs.Error{Kind: errs.UnknownStation}) match any
// *Error of the same Kind, whatever its Message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
