package corun

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// panicError carries a value recovered from a routine together with
// the stack of the routine at the moment it panicked.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("%v", p.value)
}

func (p *panicError) ErrorWithStack() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

func (p *panicError) Unwrap() error {
	err, ok := p.value.(error)
	if !ok {
		return nil
	}
	return err
}

func (p *panicError) DebugString() string {
	return debugString(p)
}

func newPanicError(v any) error {
	return &panicError{
		value: v,
		stack: debug.Stack(),
	}
}

// TaskPanicError is the value Run panics with when a routine body
// panics. Err holds the recovered value and the routine's own stack.
type TaskPanicError struct {
	Task TaskID
	Err  error
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("corun: task %d panicked: %v", e.Task, e.Err)
}

func (e *TaskPanicError) Unwrap() error {
	return e.Err
}

// DebugString renders the whole chain, including every captured stack.
func (e *TaskPanicError) DebugString() string {
	return debugString(e)
}

func debugString(err error) string {
	var sb strings.Builder
	seen := make(map[error]bool)

	var unwrap func(error)
	unwrap = func(e error) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		if p, ok := e.(*panicError); ok {
			sb.WriteString(p.ErrorWithStack())
		} else {
			sb.WriteString(e.Error())
		}

		if unwrapper, ok := e.(interface{ Unwrap() []error }); ok {
			for _, ue := range unwrapper.Unwrap() {
				unwrap(ue)
			}
		} else if ue := errors.Unwrap(e); ue != nil {
			unwrap(ue)
		}
	}

	unwrap(err)
	return sb.String()
}
