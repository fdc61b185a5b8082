package corun

// Waker is the notification handle a suspended routine could use to ask
// for another poll. The Manager polls on its own schedule and never
// waits for a wake-up, so the only Waker it hands out is NoopWaker.
//
// A routine that parks until some external event calls Wake is not
// supported: under Manager it would be polled again immediately, find
// nothing to do and keep the run loop spinning.
type Waker interface {
	Clone() Waker
	Wake()
	WakeByRef()
	Drop()
}

type noopWaker struct{}

func (noopWaker) Clone() Waker { return noopWaker{} }
func (noopWaker) Wake()        {}
func (noopWaker) WakeByRef()   {}
func (noopWaker) Drop()        {}

// NoopWaker returns a Waker whose every operation does nothing.
func NoopWaker() Waker {
	return noopWaker{}
}

// IsNoop reports whether w ignores wake-ups.
func IsNoop(w Waker) bool {
	_, ok := w.(noopWaker)
	return ok
}
