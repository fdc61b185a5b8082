package corun

import "fmt"

// Verdict classifies an OptRes.
type Verdict uint8

const (
	// NoVerdict means the routine stopped without producing a value.
	NoVerdict Verdict = iota
	// Succeeded means the routine produced a value.
	Succeeded
	// Failed means the routine produced an error.
	Failed
)

func (v Verdict) String() string {
	switch v {
	case NoVerdict:
		return "none"
	case Succeeded:
		return "ok"
	case Failed:
		return "err"
	default:
		return fmt.Sprintf("Verdict(%d)", uint8(v))
	}
}

// OptRes is an optional result: no verdict, a success carrying a T, or
// a failure carrying an E. The zero value is the no-verdict state.
//
// It is the outcome type of every routine and the value a driver
// answers a yield with.
type OptRes[T, E any] struct {
	kind  Verdict
	value T
	err   E
}

// None returns the no-verdict outcome.
func None[T, E any]() OptRes[T, E] {
	return OptRes[T, E]{}
}

// Sok wraps value in a success outcome.
func Sok[T, E any](value T) OptRes[T, E] {
	return OptRes[T, E]{kind: Succeeded, value: value}
}

// Serr wraps err in a failure outcome.
func Serr[T, E any](err E) OptRes[T, E] {
	return OptRes[T, E]{kind: Failed, err: err}
}

// Kind returns the verdict of o.
func (o OptRes[T, E]) Kind() Verdict { return o.kind }

// IsNone reports whether o carries no verdict.
func (o OptRes[T, E]) IsNone() bool { return o.kind == NoVerdict }

// IsOk reports whether o is a success.
func (o OptRes[T, E]) IsOk() bool { return o.kind == Succeeded }

// IsErr reports whether o is a failure.
func (o OptRes[T, E]) IsErr() bool { return o.kind == Failed }

// Ok returns the success value and whether o is a success.
func (o OptRes[T, E]) Ok() (T, bool) {
	return o.value, o.kind == Succeeded
}

// Err returns the failure value and whether o is a failure.
func (o OptRes[T, E]) Err() (E, bool) {
	return o.err, o.kind == Failed
}

// OrElse returns o unless it carries no verdict, in which case it
// returns f().
func (o OptRes[T, E]) OrElse(f func() OptRes[T, E]) OptRes[T, E] {
	if o.kind == NoVerdict {
		return f()
	}
	return o
}

// Result collapses o into a value/error pair. ok is true only for a
// success; a no-verdict outcome reports the zero E.
func (o OptRes[T, E]) Result() (value T, err E, ok bool) {
	return o.value, o.err, o.kind == Succeeded
}

// Transpose turns o into an optional value plus an error: a success
// gives a non-nil pointer, no verdict gives nil, and only a failure
// reports ok == false.
func (o OptRes[T, E]) Transpose() (*T, E, bool) {
	switch o.kind {
	case Succeeded:
		v := o.value
		return &v, o.err, true
	case Failed:
		return nil, o.err, false
	default:
		return nil, o.err, true
	}
}

func (o OptRes[T, E]) String() string {
	switch o.kind {
	case Succeeded:
		return fmt.Sprintf("Ok(%v)", o.value)
	case Failed:
		return fmt.Sprintf("Err(%v)", o.err)
	default:
		return "None"
	}
}

// MapOk applies f to the value of a success and leaves the other
// states untouched.
func MapOk[T, U, E any](o OptRes[T, E], f func(T) U) OptRes[U, E] {
	switch o.kind {
	case Succeeded:
		return Sok[U, E](f(o.value))
	case Failed:
		return Serr[U](o.err)
	default:
		return None[U, E]()
	}
}

// MapErr applies f to the error of a failure and leaves the other
// states untouched.
func MapErr[T, E, F any](o OptRes[T, E], f func(E) F) OptRes[T, F] {
	switch o.kind {
	case Succeeded:
		return Sok[T, F](o.value)
	case Failed:
		return Serr[T](f(o.err))
	default:
		return None[T, F]()
	}
}
