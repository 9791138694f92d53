// Package fault defines the single error type used to report why a
// review processing run failed.
package fault

import (
	"errors"
	"fmt"
)

// Kind discriminates faults. Kind implements error so that
// errors.Is(err, fault.LoadTimeout) matches any fault of that kind.
type Kind int

const (
	// Unknown is the kind of any error that is not a *Error.
	Unknown Kind = iota
	// SessionInitFailed means no automation session could be started
	// within the retry bound.
	SessionInitFailed
	// LoadTimeout means the content marker never appeared.
	LoadTimeout
	// LoadFailed means navigation failed for a reason other than a timeout.
	LoadFailed
	// ElementStale means an element reference was invalidated by document
	// mutation between enumeration and read.
	ElementStale
	// PersistenceError means a store operation failed.
	PersistenceError
	// ClassificationError means the classifier could not label a text.
	ClassificationError
	// InvalidInput means a caller supplied an unusable argument.
	InvalidInput
	// NotFound means a requested record does not exist.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case SessionInitFailed:
		return "session init failed"
	case LoadTimeout:
		return "load timeout"
	case LoadFailed:
		return "load failed"
	case ElementStale:
		return "element stale"
	case PersistenceError:
		return "persistence error"
	case ClassificationError:
		return "classification error"
	case InvalidInput:
		return "invalid input"
	case NotFound:
		return "not found"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k := Unknown; k <= NotFound; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return Unknown, false
}

func (k Kind) Error() string {
	return k.String()
}

// Error is a fault of a given kind raised by operation Op.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this fault's Kind.
func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// New creates a fault of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates a fault of the given kind with a formatted cause.
func Newf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost fault in err's chain, or
// Unknown if there is none.
func KindOf(err error) Kind {
	var f *Error
	if errors.As(err, &f) {
		return f.Kind
	}
	return Unknown
}
