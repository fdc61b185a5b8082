package corun

import (
	"errors"
	"testing"

	"go.uber.org/goleak"
)

func TestFiberSuspendResume(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		shared   int
		received []int
	)
	f := newFiber(func(suspend func()) {
		for i := 1; i <= 2; i++ {
			shared = i
			suspend()
			received = append(received, shared)
		}
	}, nil)
	defer f.cancel()

	if shared != 0 {
		t.Error("Expected fiber not to start before resume")
	}

	if !f.resume() {
		t.Error("Expected fiber to be running")
	}
	if shared != 1 {
		t.Errorf("Expected shared to be 1, got %d", shared)
	}

	shared = 10
	if !f.resume() {
		t.Error("Expected fiber to be running")
	}
	if shared != 2 {
		t.Errorf("Expected shared to be 2, got %d", shared)
	}

	shared = 20
	if f.resume() {
		t.Error("Expected fiber to be completed")
	}
	if f.resume() {
		t.Error("Expected completed fiber to stay completed")
	}

	if len(received) != 2 || received[0] != 10 || received[1] != 20 {
		t.Errorf("Expected received to be [10 20], got %v", received)
	}
}

func TestFiberNoSuspension(t *testing.T) {
	defer goleak.VerifyNone(t)

	ran := 0
	f := newFiber(func(func()) { ran++ }, nil)

	if f.resume() {
		t.Error("Expected fiber to be completed")
	}
	if ran != 1 {
		t.Errorf("Expected body to run once, ran %d times", ran)
	}
}

func TestFiberPanicRecovery(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFiber(func(suspend func()) {
		suspend()
		panic("test panic")
	}, nil)

	if !f.resume() {
		t.Error("Expected fiber to be running")
	}

	for i := 0; i < 2; i++ {
		func() {
			defer func() {
				r := recover()
				if r == nil {
					t.Error("Expected panic but got none")
				}
				err, ok := r.(error)
				if !ok {
					t.Errorf("Expected error type from panic, got %T", r)
					return
				}
				if err.Error() != "test panic" {
					t.Errorf("Expected panic message 'test panic', got '%s'", err.Error())
				}
			}()
			f.resume()
		}()
	}

	f.cancel()
}

func TestFiberCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	returned := false
	reached := false
	f := newFiber(func(suspend func()) {
		defer func() { returned = true }()
		suspend()
		reached = true
	}, nil)

	if !f.resume() {
		t.Error("Expected fiber to be running")
	}

	f.cancel()
	f.cancel()

	if !returned {
		t.Error("Expected deferred calls to run on cancel")
	}
	if reached {
		t.Error("Expected fiber to unwind at its suspension point")
	}
	if f.resume() {
		t.Error("Expected canceled fiber to be completed")
	}
}

func TestFiberCancelBeforeResume(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFiber(func(func()) {
		t.Error("fiber should not start")
	}, nil)

	f.cancel()

	if f.resume() {
		t.Error("Expected canceled fiber to be completed")
	}
}

func TestFiberCancelRecoveredThenSuspend(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFiber(func(suspend func()) {
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrCanceled) {
					t.Errorf("Expected ErrCanceled, got %v", r)
				}
			}()
			suspend()
		}()
		suspend()
		t.Error("Expected second suspend to unwind")
	}, nil)

	if !f.resume() {
		t.Error("Expected fiber to be running")
	}
	f.cancel()
	if !f.done {
		t.Error("Expected fiber to be done")
	}
}

func TestFiberCancelWithDeferredPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFiber(func(suspend func()) {
		defer func() {
			panic("deferred error")
		}()
		suspend()
	}, nil)

	if !f.resume() {
		t.Error("Expected fiber to be running")
	}

	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Error("Expected panic but got none")
			}
			err, ok := r.(error)
			if !ok {
				t.Errorf("Expected error type from panic, got %T", r)
				return
			}
			if err.Error() != "deferred error" {
				t.Errorf("Expected panic message 'deferred error', got '%s'", err.Error())
			}
		}()
		f.cancel()
	}()
}

func TestFiberSuspendEscaped(t *testing.T) {
	defer goleak.VerifyNone(t)

	var escaped func()
	f := newFiber(func(suspend func()) {
		escaped = suspend
		suspend()
	}, nil)

	if !f.resume() {
		t.Error("Expected fiber to be running")
	}
	if f.resume() {
		t.Error("Expected fiber to be completed")
	}

	func() {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !errors.Is(err, ErrCanceled) {
				t.Errorf("Expected ErrCanceled, got %v", r)
			}
		}()
		escaped()
	}()
}

func TestFiberAbsorb(t *testing.T) {
	defer goleak.VerifyNone(t)

	type stop struct{}
	f := newFiber(func(suspend func()) {
		suspend()
		panic(stop{})
	}, func(p any) bool {
		_, ok := p.(stop)
		return ok
	})

	if !f.resume() {
		t.Error("Expected fiber to be running")
	}
	if f.resume() {
		t.Error("Expected absorbed panic to complete the fiber")
	}
	if f.perr != nil {
		t.Errorf("Expected no panic error, got %v", f.perr)
	}
}
