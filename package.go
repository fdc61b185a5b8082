// Package corun provides a cooperative scheduler for suspendable
// routines. Routines are multiplexed on the goroutine that calls
// Manager.Run: only one of them executes at any instant, and each one
// runs until it reaches a suspension point or returns.
//
// A routine is registered with Manager.Push. It receives a *Coro
// handle whose YieldOk and YieldErr methods hand a payload to the
// Manager and suspend the routine until a Driver answers. The answer,
// an OptRes, is the return value of the yield call, so a routine and
// its driver hold a strictly alternating conversation: yield, resume,
// yield, resume, finish.
//
// Outcomes are tri-state. Sok and Serr build a success or a failure,
// None means the routine stopped without a verdict. Coro.Try gives
// early-return propagation: a failed or empty answer ends the routine
// with that same outcome.
//
// Run visits unfinished tasks in registration order. On each visit a
// task performs at most one exchange with the driver before the next
// task is visited, and Run returns once every task has finished. A
// failed task never changes the outcome of another. Nothing waits on
// external events: the only Waker the Manager polls with is NoopWaker.
//
// Routines run on runtime coroutines, so a Manager that is abandoned
// before Run completes should be closed to unwind the routines still
// suspended.
package corun
