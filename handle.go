package corun

// Routine is a suspendable body. It receives its Coro handle and
// returns its final outcome; every YieldOk or YieldErr call inside it
// is a suspension point.
type Routine[Y, R, E any] func(c *Coro[Y, R, E]) OptRes[R, E]

// Coro is the yield/resume channel between one routine and the
// Manager driving it. It is only valid inside the routine it was
// handed to.
type Coro[Y, R, E any] struct {
	id      TaskID
	fiber   *fiber
	suspend func()

	pending Yield[Y, E]
	resume  OptRes[R, E]
	waker   Waker
	outcome OptRes[R, E]
}

// earlyReturn unwinds a routine from Try back to its fiber.
type earlyReturn[R, E any] struct {
	owner   any
	outcome OptRes[R, E]
}

// ID returns the task the handle belongs to.
func (c *Coro[Y, R, E]) ID() TaskID { return c.id }

// Waker returns the waker of the poll currently running the routine.
func (c *Coro[Y, R, E]) Waker() Waker { return c.waker }

// YieldOk hands value to the driver and suspends until it answers.
func (c *Coro[Y, R, E]) YieldOk(value Y) OptRes[R, E] {
	return c.yield(YieldOf[Y, E](value))
}

// YieldErr hands an error-flavored payload to the driver and suspends
// until it answers.
func (c *Coro[Y, R, E]) YieldErr(err E) OptRes[R, E] {
	return c.yield(YieldError[Y](err))
}

func (c *Coro[Y, R, E]) yield(y Yield[Y, E]) OptRes[R, E] {
	c.pending = y
	c.suspend()
	r := c.resume
	c.resume = None[R, E]()
	return r
}

// Try returns the value of a success. For a failure or no verdict it
// ends the routine right away with r as its outcome; deferred calls
// still run.
func (c *Coro[Y, R, E]) Try(r OptRes[R, E]) R {
	if v, ok := r.Ok(); ok {
		return v
	}
	panic(&earlyReturn[R, E]{owner: c, outcome: r})
}

func newCoro[Y, R, E any](id TaskID, fn Routine[Y, R, E]) *Coro[Y, R, E] {
	c := &Coro[Y, R, E]{id: id, waker: NoopWaker()}

	absorb := func(p any) bool {
		er, ok := p.(*earlyReturn[R, E])
		if !ok || er.owner != any(c) {
			return false
		}
		c.outcome = er.outcome
		return true
	}

	c.fiber = newFiber(func(suspend func()) {
		c.suspend = suspend
		c.outcome = fn(c)
	}, absorb)

	return c
}

// step implements body for coroutine-backed routines.
func (c *Coro[Y, R, E]) step(resume OptRes[R, E], w Waker) Step[Y, R, E] {
	c.resume = resume
	c.waker = w
	if c.fiber.resume() {
		return Yielded[R](c.pending)
	}
	return Done[Y](c.outcome)
}

func (c *Coro[Y, R, E]) release() {
	c.fiber.cancel()
}

// stepperBody implements body for an explicit state machine.
type stepperBody[Y, R, E any] struct {
	s Stepper[Y, R, E]
}

func (b stepperBody[Y, R, E]) step(resume OptRes[R, E], w Waker) Step[Y, R, E] {
	return b.s.Step(resume, w)
}

func (stepperBody[Y, R, E]) release() {}
