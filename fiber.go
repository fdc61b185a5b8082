package corun

import (
	"errors"
	"unsafe"
)

var (
	// ErrCanceled is raised inside a routine whose task was released
	// by Manager.Close, and when a suspension primitive is used after
	// its routine has completed.
	ErrCanceled = errors.New("corun: routine canceled")
	_           unsafe.Pointer
)

// coroutine represents a native Go coroutine instance. It's an opaque
// struct used by the runtime functions.
type coroutine struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*coroutine)) *coroutine

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*coroutine)

// fiber runs a function on its own coroutine. Control moves between
// the caller and the function only through resume and suspend, so at
// most one side is ever executing.
type fiber struct {
	c        *coroutine
	done     bool
	canceled bool
	perr     error

	// absorb reports whether a value recovered from the function is a
	// controlled exit rather than a fault.
	absorb func(any) bool
}

// newFiber prepares fn to run on a fresh coroutine. Nothing executes
// until the first resume.
func newFiber(fn func(suspend func()), absorb func(any) bool) *fiber {
	f := &fiber{absorb: absorb}

	f.c = newcoro(func(*coroutine) {
		defer func() {
			if p := recover(); p != nil && !f.absorbs(p) {
				f.perr = newPanicError(p)
			}
			f.done = true
		}()

		if f.canceled {
			return
		}
		fn(f.suspend)
	})

	return f
}

func (f *fiber) absorbs(p any) bool {
	if err, ok := p.(error); ok && f.canceled && errors.Is(err, ErrCanceled) {
		return true
	}
	return f.absorb != nil && f.absorb(p)
}

// suspend hands control back to whoever called resume.
func (f *fiber) suspend() {
	if f.done || f.canceled {
		panic(ErrCanceled)
	}
	coroswitch(f.c)
	if f.canceled {
		panic(ErrCanceled)
	}
}

// resume runs the function until it suspends or returns and reports
// whether it is still running. A panic raised by the function is
// re-raised here, with the original stack attached.
func (f *fiber) resume() bool {
	if f.perr != nil {
		panic(f.perr)
	}
	if f.done {
		return false
	}
	coroswitch(f.c)
	if f.perr != nil {
		panic(f.perr)
	}
	return !f.done
}

// cancel unwinds a suspended function by raising ErrCanceled at its
// suspension point; a function that never started is discarded. Calling
// cancel on a finished fiber is a no-op.
func (f *fiber) cancel() {
	if f.done {
		return
	}
	f.canceled = true
	coroswitch(f.c)
	if f.perr != nil {
		panic(f.perr)
	}
}
