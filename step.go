package corun

import "fmt"

// Yield is a payload handed to the driver at a suspension point. It is
// either success-flavored (YieldOk) or error-flavored (YieldErr).
type Yield[Y, E any] struct {
	value Y
	err   E
	isErr bool
}

// YieldOf builds a success-flavored payload.
func YieldOf[Y, E any](value Y) Yield[Y, E] {
	return Yield[Y, E]{value: value}
}

// YieldError builds an error-flavored payload.
func YieldError[Y, E any](err E) Yield[Y, E] {
	return Yield[Y, E]{err: err, isErr: true}
}

// IsErr reports whether the payload is error-flavored.
func (y Yield[Y, E]) IsErr() bool { return y.isErr }

// Value returns the payload of a success-flavored yield.
func (y Yield[Y, E]) Value() (Y, bool) { return y.value, !y.isErr }

// Err returns the payload of an error-flavored yield.
func (y Yield[Y, E]) Err() (E, bool) { return y.err, y.isErr }

func (y Yield[Y, E]) String() string {
	if y.isErr {
		return fmt.Sprintf("err(%v)", y.err)
	}
	return fmt.Sprintf("ok(%v)", y.value)
}

// Step is what a single advance of a task body reports: either a fresh
// yield or the final outcome.
type Step[Y, R, E any] struct {
	yield   Yield[Y, E]
	yielded bool
	outcome OptRes[R, E]
}

// Yielded reports a suspension with payload y.
func Yielded[R, Y, E any](y Yield[Y, E]) Step[Y, R, E] {
	return Step[Y, R, E]{yield: y, yielded: true}
}

// Done reports completion with outcome o.
func Done[Y, R, E any](o OptRes[R, E]) Step[Y, R, E] {
	return Step[Y, R, E]{outcome: o}
}

// Yield returns the payload and true if the step suspended.
func (s Step[Y, R, E]) Yield() (Yield[Y, E], bool) {
	return s.yield, s.yielded
}

// Outcome returns the final outcome and true if the step completed.
func (s Step[Y, R, E]) Outcome() (OptRes[R, E], bool) {
	return s.outcome, !s.yielded
}

// Stepper is a task body written as an explicit state machine. Step
// is called once per poll with the driver's answer to the previous
// yield (None on the first call) and must not be called again once it
// has returned Done.
type Stepper[Y, R, E any] interface {
	Step(resume OptRes[R, E], w Waker) Step[Y, R, E]
}

// StepperFunc adapts a function to Stepper.
type StepperFunc[Y, R, E any] func(resume OptRes[R, E], w Waker) Step[Y, R, E]

// Step calls f(resume, w).
func (f StepperFunc[Y, R, E]) Step(resume OptRes[R, E], w Waker) Step[Y, R, E] {
	return f(resume, w)
}
