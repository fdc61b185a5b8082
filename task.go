package corun

import "fmt"

// TaskID is the registration index of a task. It never changes and is
// never reused within a Manager.
type TaskID int

// TaskState is the position of a task in its yield/resume cycle.
type TaskState uint8

const (
	// Runnable tasks are polled on their next visit.
	Runnable TaskState = iota
	// AwaitingConsumption tasks hold a yield the driver has not
	// answered yet.
	AwaitingConsumption
	// AwaitingResume tasks hold the driver's answer, to be delivered by
	// the next poll.
	AwaitingResume
	// Finished tasks have an outcome and are never polled again.
	Finished
)

func (s TaskState) String() string {
	switch s {
	case Runnable:
		return "runnable"
	case AwaitingConsumption:
		return "awaiting-consumption"
	case AwaitingResume:
		return "awaiting-resume"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("TaskState(%d)", uint8(s))
	}
}

// TaskInfo is a snapshot of one task.
type TaskInfo[R, E any] struct {
	ID      TaskID
	State   TaskState
	Yields  int
	Polls   int
	Outcome OptRes[R, E]
}

// body is what the registry stores for every task: advance once, and
// release whatever the body holds when the registry is closed.
type body[Y, R, E any] interface {
	step(resume OptRes[R, E], w Waker) Step[Y, R, E]
	release()
}

type task[Y, R, E any] struct {
	id      TaskID
	state   TaskState
	body    body[Y, R, E]
	pending Yield[Y, E]
	resume  OptRes[R, E]
	outcome OptRes[R, E]
	yields  int
	polls   int
}

func (t *task[Y, R, E]) info() TaskInfo[R, E] {
	return TaskInfo[R, E]{
		ID:      t.id,
		State:   t.state,
		Yields:  t.yields,
		Polls:   t.polls,
		Outcome: t.outcome,
	}
}
