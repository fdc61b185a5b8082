package corun

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrClosed is returned by TryPush after Close, and raised by Run
	// on a closed manager.
	ErrClosed = errors.New("corun: manager is closed")

	// ErrFull is returned by TryPush when a WithMaxTasks limit is
	// reached.
	ErrFull = errors.New("corun: manager is full")

	// ErrRunning is raised when Run or Close is called while Run is
	// already driving the manager.
	ErrRunning = errors.New("corun: manager is running")

	// ErrNilRoutine is returned by TryPush for a nil routine or stepper.
	ErrNilRoutine = errors.New("corun: nil routine")
)

// Manager is a registry of routines driven cooperatively on the
// calling goroutine. Only one task body executes at any instant.
//
// A Manager is not safe for concurrent use.
type Manager[Y, R, E any] struct {
	tasks   []*task[Y, R, E]
	cfg     config
	log     *zap.Logger
	running bool
	closed  bool
}

// NewManager returns an empty Manager.
func NewManager[Y, R, E any](opts ...Option) *Manager[Y, R, E] {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Manager[Y, R, E]{
		tasks: make([]*task[Y, R, E], 0, cfg.capacity),
		cfg:   cfg,
		log:   cfg.logger.Named("corun"),
	}
}

// Push registers fn as a new Runnable task and returns its id. It
// panics with the error TryPush would return.
func (m *Manager[Y, R, E]) Push(fn Routine[Y, R, E]) TaskID {
	id, err := m.TryPush(fn)
	if err != nil {
		panic(err)
	}
	return id
}

// TryPush registers fn as a new Runnable task. The routine does not
// start before Run.
func (m *Manager[Y, R, E]) TryPush(fn Routine[Y, R, E]) (TaskID, error) {
	if fn == nil {
		return -1, ErrNilRoutine
	}
	return m.register(func(id TaskID) body[Y, R, E] {
		return newCoro(id, fn)
	})
}

// PushStepper registers an explicit state machine as a new task. It
// panics with the error TryPushStepper would return.
func (m *Manager[Y, R, E]) PushStepper(s Stepper[Y, R, E]) TaskID {
	id, err := m.TryPushStepper(s)
	if err != nil {
		panic(err)
	}
	return id
}

// TryPushStepper registers an explicit state machine as a new task.
func (m *Manager[Y, R, E]) TryPushStepper(s Stepper[Y, R, E]) (TaskID, error) {
	if s == nil {
		return -1, ErrNilRoutine
	}
	return m.register(func(TaskID) body[Y, R, E] {
		return stepperBody[Y, R, E]{s: s}
	})
}

func (m *Manager[Y, R, E]) register(build func(TaskID) body[Y, R, E]) (TaskID, error) {
	if m.closed {
		return -1, ErrClosed
	}
	if m.cfg.maxTasks > 0 && len(m.tasks) >= m.cfg.maxTasks {
		return -1, fmt.Errorf("%w: limit %d", ErrFull, m.cfg.maxTasks)
	}

	id := TaskID(len(m.tasks))
	m.tasks = append(m.tasks, &task[Y, R, E]{
		id:    id,
		state: Runnable,
		body:  build(id),
	})
	m.log.Debug("task registered", zap.Int("task", int(id)))
	return id, nil
}

// Run drives every registered task to Finished, visiting unfinished
// tasks in registration order. A visit performs at most one exchange:
// the task's pending yield is answered by d and the answer delivered,
// after which the next task is visited. Tasks pushed while Run is in
// progress are picked up in the same sweep.
//
// A nil d answers every yield with a success holding the zero R.
//
// Run returns only when no task is left unfinished. A panic in d or in
// a routine aborts Run; routine panics surface as *TaskPanicError, and
// a later Run raises the same error again for that task.
func (m *Manager[Y, R, E]) Run(d Driver[Y, R, E]) {
	if m.running {
		panic(ErrRunning)
	}
	if m.closed {
		panic(ErrClosed)
	}
	if d == nil {
		var zero R
		d = Ack[Y](Sok[R, E](zero))
	}

	m.running = true
	defer func() { m.running = false }()

	w := NoopWaker()
	sweeps := 0
	for {
		unfinished := false
		for i := 0; i < len(m.tasks); i++ {
			t := m.tasks[i]
			if t.state == Finished {
				continue
			}
			m.visit(t, d, w)
			if t.state != Finished {
				unfinished = true
			}
		}
		sweeps++
		if !unfinished {
			break
		}
	}

	m.log.Info("run complete",
		zap.Int("tasks", len(m.tasks)),
		zap.Int("sweeps", sweeps),
		zap.Int("failed", m.count(Failed)),
		zap.Int("no_verdict", m.count(NoVerdict)),
	)
}

func (m *Manager[Y, R, E]) visit(t *task[Y, R, E], d Driver[Y, R, E], w Waker) {
	// AwaitingResume here means an earlier Run aborted while delivering
	// the answer; polling again re-raises the routine's panic.
	if t.state == Runnable || t.state == AwaitingResume {
		m.poll(t, d, w)
	}
	if t.state != AwaitingConsumption {
		return
	}

	t.resume = d.OnYield(t.id, t.pending)
	t.state = AwaitingResume
	m.log.Debug("task resumed",
		zap.Int("task", int(t.id)),
		zap.Stringer("answer", t.resume),
	)
	m.poll(t, d, w)
}

func (m *Manager[Y, R, E]) poll(t *task[Y, R, E], d Driver[Y, R, E], w Waker) {
	resume := t.resume
	t.resume = None[R, E]()
	t.polls++

	st := m.step(t, resume, w)
	if y, ok := st.Yield(); ok {
		t.pending = y
		t.yields++
		t.state = AwaitingConsumption
		m.log.Debug("task yielded",
			zap.Int("task", int(t.id)),
			zap.Stringer("payload", y),
		)
		return
	}

	t.outcome, _ = st.Outcome()
	t.pending = Yield[Y, E]{}
	t.state = Finished
	m.log.Debug("task finished",
		zap.Int("task", int(t.id)),
		zap.Stringer("outcome", t.outcome),
		zap.Int("yields", t.yields),
	)
	d.OnFinish(t.id, t.outcome)
}

func (m *Manager[Y, R, E]) step(t *task[Y, R, E], resume OptRes[R, E], w Waker) Step[Y, R, E] {
	defer func() {
		if p := recover(); p != nil {
			if pe, ok := p.(*panicError); ok {
				m.log.Error("task panicked", zap.Int("task", int(t.id)), zap.Error(pe))
				panic(&TaskPanicError{Task: t.id, Err: pe})
			}
			panic(p)
		}
	}()
	return t.body.step(resume, w)
}

// Close releases every unfinished task and rejects later pushes.
// Suspended routines are unwound with ErrCanceled so their deferred
// calls run; Finished outcomes stay readable. Close must not be called
// from inside Run.
func (m *Manager[Y, R, E]) Close() {
	if m.running {
		panic(ErrRunning)
	}
	if m.closed {
		return
	}
	m.closed = true

	for _, t := range m.tasks {
		if t.state == Finished {
			continue
		}
		t.body.release()
		m.log.Debug("task released",
			zap.Int("task", int(t.id)),
			zap.Stringer("state", t.state),
		)
	}
}

// Len returns the number of registered tasks.
func (m *Manager[Y, R, E]) Len() int { return len(m.tasks) }

// Unfinished returns the number of tasks that have not finished.
func (m *Manager[Y, R, E]) Unfinished() int {
	n := 0
	for _, t := range m.tasks {
		if t.state != Finished {
			n++
		}
	}
	return n
}

// State returns the state of task id. It panics if id is unknown.
func (m *Manager[Y, R, E]) State(id TaskID) TaskState {
	return m.task(id).state
}

// Outcome returns the outcome of task id and whether it has finished.
func (m *Manager[Y, R, E]) Outcome(id TaskID) (OptRes[R, E], bool) {
	t := m.task(id)
	return t.outcome, t.state == Finished
}

// Outcomes returns the outcome of every task in registration order.
// Unfinished tasks report None.
func (m *Manager[Y, R, E]) Outcomes() []OptRes[R, E] {
	out := make([]OptRes[R, E], len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.outcome
	}
	return out
}

// Info returns a snapshot of task id.
func (m *Manager[Y, R, E]) Info(id TaskID) TaskInfo[R, E] {
	return m.task(id).info()
}

// Tasks returns a snapshot of every task in registration order.
func (m *Manager[Y, R, E]) Tasks() []TaskInfo[R, E] {
	out := make([]TaskInfo[R, E], len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.info()
	}
	return out
}

func (m *Manager[Y, R, E]) task(id TaskID) *task[Y, R, E] {
	if id < 0 || int(id) >= len(m.tasks) {
		panic(fmt.Sprintf("corun: unknown task %d", id))
	}
	return m.tasks[id]
}

func (m *Manager[Y, R, E]) count(v Verdict) int {
	n := 0
	for _, t := range m.tasks {
		if t.state == Finished && t.outcome.Kind() == v {
			n++
		}
	}
	return n
}
