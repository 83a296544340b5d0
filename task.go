// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import (
	"context"
	"fmt"
)

// A TaskFunc is a client routine run by the scheduler. It returns a
// result of type T and an error value. Any other inputs to the routine
// are expected to be provided by specifying the TaskFunc as a [function
// literal] that references and therefore captures local variables via
// [lexical closure].
//
// The routine runs cooperatively: it executes without interruption until
// it suspends via [Await] (directly, or through [WithTimeout]) or
// returns. Exactly one routine runs at a time, so routines may freely
// read and mutate state shared with other routines of the same scheduler
// between suspension points.
//
// A panic inside the routine is recovered and converted into a task
// failure wrapping [ErrTaskPanic].
//
// [function literal]: https://go.dev/ref/spec#Function_literals
// [lexical closure]: https://en.wikipedia.org/wiki/Closure_(computer_programming)
type TaskFunc[T any] = func(context.Context) (T, error)

// taskStatus is the explicit per-task state machine.
type taskStatus int

const (
	statePending taskStatus = iota
	stateRunning
	stateSuspended
	stateDoneSuccess
	stateDoneFailed
)

func (st taskStatus) String() string {
	switch st {
	case statePending:
		return "pending"
	case stateRunning:
		return "running"
	case stateSuspended:
		return "suspended"
	case stateDoneSuccess:
		return "done"
	case stateDoneFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// taskState is the scheduler-side representation of one task. All fields
// are guarded by the cooperative single-thread discipline: they are only
// touched either by the scheduler goroutine while the task is parked, or
// by the task goroutine while the scheduler is blocked waiting for it to
// park.
type taskState struct {
	sched   *Scheduler
	id      int64
	name    string
	ctx     context.Context
	routine func(ctx context.Context) (any, error)
	status  taskStatus

	// resume carries the wake value from the scheduler to the suspended
	// task goroutine; parked carries the suspend/finish report back.
	// Both are unbuffered, making every resumption a strict handoff.
	resume chan wake
	parked chan parkMsg

	waitingOn     Trigger
	join          *joinTrigger
	joined        bool
	killRequested bool
	result        any
	err           error
}

type parkMsg struct {
	done  bool
	value any
	err   error
}

// A Task is the handle returned by [Start]. It can be awaited directly
// (equivalent to awaiting its join trigger), joined, queried for its
// result, or killed.
type Task[T any] struct {
	st *taskState
}

// Start creates a task wrapping fn and schedules it to run at the next
// scheduling checkpoint. It returns immediately; the routine has not run
// yet when Start returns. An empty name is replaced with a generated
// one.
//
// Panics if the scheduler has been shut down or fn is nil.
func Start[T any](s *Scheduler, name string, fn TaskFunc[T]) *Task[T] {
	if s == nil {
		panic("scheduler must be non-nil")
	}
	if fn == nil {
		panic("task function must be non-nil")
	}
	s.panicIfClosed()
	st := s.newTaskState(name, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	return &Task[T]{st: st}
}

// Name returns the task's diagnostic name.
func (t *Task[T]) Name() string { return t.st.name }

// Join returns a trigger that fires when the task reaches its terminal
// state, carrying the task's result or propagating its error to whoever
// awaits it. Awaiting an already-finished task completes at the next
// scheduling checkpoint.
func (t *Task[T]) Join() Trigger {
	t.st.joined = true
	return t.st.join
}

// Done reports whether the task has reached a terminal state.
func (t *Task[T]) Done() bool { return t.st.terminal() }

// Result returns the task's result and error. The result is meaningful
// only once Done reports true.
func (t *Task[T]) Result() (T, error) {
	var zero T
	if v, ok := t.st.result.(T); ok {
		return v, t.st.err
	}
	return zero, t.st.err
}

// Kill requests cooperative termination: [ErrTaskKilled] is delivered at
// the task's current (or, for a running task, next) suspension point.
// A pending task is finalized without ever running. Killing a terminal
// task has no effect. Killed tasks fail with ErrTaskKilled but are not
// reported as unhandled failures.
func (t *Task[T]) Kill() { t.st.kill() }

// waitTrigger makes a Task awaitable; awaiting it marks it joined.
func (t *Task[T]) waitTrigger() Trigger {
	t.st.joined = true
	return t.st.join
}

func (st *taskState) terminal() bool {
	return st.status == stateDoneSuccess || st.status == stateDoneFailed
}

// run is the body of the task goroutine. It reports back through parked
// exactly once, after the routine returns or panics.
func (st *taskState) run() {
	defer st.sched.wg.Done()
	value, err := st.invoke()
	st.parked <- parkMsg{done: true, value: value, err: err}
}

func (st *taskState) invoke() (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return st.routine(st.ctx)
}

func (st *taskState) kill() {
	if st.terminal() {
		return
	}
	switch st.status {
	case statePending:
		// Never ran; finalize directly. runPending skips it.
		st.sched.finalize(st, nil, ErrTaskKilled)
	case stateSuspended:
		if st.waitingOn != nil {
			unsubscribeTask(st.waitingOn, st)
		}
		st.sched.resumeAndWait(st, wake{err: ErrTaskKilled})
	case stateRunning:
		// Cannot preempt running code; deliver at the next Await.
		st.killRequested = true
	}
}

// Await suspends the calling task until aw fires, returning the value
// the firing carries: the trigger itself for a plain trigger, a
// [FirstResult] for First, and the task's result for a task join. It is
// the only suspension point; all other code runs to completion without
// yielding.
//
// Construction and arming errors are returned synchronously, without
// suspending. Panics if called from outside a task routine.
func Await(ctx context.Context, aw Awaitable) (any, error) {
	t := taskFromContext(ctx)
	if t == nil {
		panic("cosched: Await called outside a task routine")
	}
	if aw == nil {
		panic("awaitable must be non-nil")
	}
	s := t.sched
	if s.closed {
		return nil, ErrSchedulerClosed
	}
	if t.killRequested {
		t.killRequested = false
		return nil, ErrTaskKilled
	}
	trig := aw.waitTrigger()
	if err := subscribe(trig, waiter{task: t}); err != nil {
		return nil, err
	}
	t.waitingOn = trig
	t.status = stateSuspended
	t.parked <- parkMsg{}
	w := <-t.resume
	return w.value, w.err
}

// joinTrigger fires when its task reaches a terminal state. Unlike the
// engine-backed triggers it latches: arming it against an
// already-finished task schedules delivery at the next timestep end.
type joinTrigger struct {
	triggerCore
	task *taskState
}

func (jt *joinTrigger) waitTrigger() Trigger { return jt }

func (jt *joinTrigger) Arm() error {
	if jt.armed {
		return nil
	}
	jt.armed = true
	if jt.task.terminal() {
		jt.sched.scheduleCheckpoint(func() {
			if jt.armed {
				jt.sched.deliver(jt, jt.task.result, jt.task.err)
			}
		})
	}
	return nil
}

func (jt *joinTrigger) Cancel() {
	jt.armed = false
}

func (jt *joinTrigger) String() string {
	return fmt.Sprintf("Join(%s)", jt.task.name)
}
