package snapshot

import "fmt"

// Kind distinguishes the four error categories spec.md §7 requires the
// engines to surface.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidGraph      Kind = "invalid_graph"
	KindInternalInvariant Kind = "internal_invariant"
)

// Error is the single error type returned across the snapshot, graph, delay,
// forecast and rules packages. Kind lets callers branch on category without
// string matching; Err, when set, is the wrapped underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// do errors.Is(err, &snapshot.Error{Kind: snapshot.KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

func NotFoundf(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func InvalidInputf(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func InvalidGraphf(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidGraph, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func InternalInvariantf(op, format string, args ...any) error {
	return &Error{Kind: KindInternalInvariant, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, op, msg string, err error) error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// IsKind reports whether err is a *Error of the given kind, unwrapping as
// needed.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
