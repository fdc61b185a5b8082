package corun

// Driver decides how yields are answered. OnYield is called once per
// yield, in the order yields are observed, and its result is delivered
// to the routine as the return value of YieldOk or YieldErr. OnFinish
// is called once when a task finishes.
//
// A panic in either method aborts Manager.Run.
type Driver[Y, R, E any] interface {
	OnYield(id TaskID, y Yield[Y, E]) OptRes[R, E]
	OnFinish(id TaskID, outcome OptRes[R, E])
}

// DriverFunc adapts a function to Driver. Finishes are ignored.
type DriverFunc[Y, R, E any] func(id TaskID, y Yield[Y, E]) OptRes[R, E]

// OnYield calls f(id, y).
func (f DriverFunc[Y, R, E]) OnYield(id TaskID, y Yield[Y, E]) OptRes[R, E] {
	return f(id, y)
}

// OnFinish does nothing.
func (DriverFunc[Y, R, E]) OnFinish(TaskID, OptRes[R, E]) {}

type ackDriver[Y, R, E any] struct {
	answer OptRes[R, E]
}

func (d ackDriver[Y, R, E]) OnYield(TaskID, Yield[Y, E]) OptRes[R, E] {
	return d.answer
}

func (ackDriver[Y, R, E]) OnFinish(TaskID, OptRes[R, E]) {}

// Ack returns a driver that answers every yield with answer.
func Ack[Y, R, E any](answer OptRes[R, E]) Driver[Y, R, E] {
	return ackDriver[Y, R, E]{answer: answer}
}

// EventKind tells what a recorded Event observed.
type EventKind uint8

const (
	// EventYield records a payload handed over by a routine.
	EventYield EventKind = iota
	// EventResume records the driver's answer to a yield.
	EventResume
	// EventFinish records a task's outcome.
	EventFinish
)

func (k EventKind) String() string {
	switch k {
	case EventYield:
		return "yield"
	case EventResume:
		return "resume"
	case EventFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Event is one observation made by a Recorder. Yield is set for
// EventYield, Answer for EventResume and EventFinish (the outcome).
type Event[Y, R, E any] struct {
	Kind   EventKind
	Task   TaskID
	Yield  Yield[Y, E]
	Answer OptRes[R, E]
}

func (e Event[Y, R, E]) String() string {
	switch e.Kind {
	case EventYield:
		return "yield " + e.Yield.String()
	default:
		return e.Kind.String() + " " + e.Answer.String()
	}
}

// Recorder is a Driver that records every event before delegating to
// the wrapped driver.
type Recorder[Y, R, E any] struct {
	next   Driver[Y, R, E]
	events []Event[Y, R, E]
}

// NewRecorder wraps next. A nil next answers every yield with None.
func NewRecorder[Y, R, E any](next Driver[Y, R, E]) *Recorder[Y, R, E] {
	if next == nil {
		next = Ack[Y](None[R, E]())
	}
	return &Recorder[Y, R, E]{next: next}
}

func (r *Recorder[Y, R, E]) OnYield(id TaskID, y Yield[Y, E]) OptRes[R, E] {
	r.events = append(r.events, Event[Y, R, E]{Kind: EventYield, Task: id, Yield: y})
	answer := r.next.OnYield(id, y)
	r.events = append(r.events, Event[Y, R, E]{Kind: EventResume, Task: id, Answer: answer})
	return answer
}

func (r *Recorder[Y, R, E]) OnFinish(id TaskID, outcome OptRes[R, E]) {
	r.events = append(r.events, Event[Y, R, E]{Kind: EventFinish, Task: id, Answer: outcome})
	r.next.OnFinish(id, outcome)
}

// Events returns every event recorded so far.
func (r *Recorder[Y, R, E]) Events() []Event[Y, R, E] {
	return r.events
}

// TaskEvents returns the events of a single task, in order.
func (r *Recorder[Y, R, E]) TaskEvents(id TaskID) []Event[Y, R, E] {
	var out []Event[Y, R, E]
	for _, e := range r.events {
		if e.Task == id {
			out = append(out, e)
		}
	}
	return out
}
