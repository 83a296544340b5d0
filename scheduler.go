// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gammazero/deque"
	"github.com/joeycumines/logiface"
)

// Scheduler is the process-wide authority over a set of cooperatively
// scheduled tasks and their pending trigger registrations. It owns the
// edge trigger cache and the registry of non-terminal tasks, drives task
// resumption when the engine reports a trigger has fired, and enforces
// the ordering and cancellation rules.
//
// Tasks are resumed strictly in the order they suspended on a trigger,
// and each resumed task runs synchronously to its next suspension point
// or completion before the next waiting task is resumed. The scheduler
// never reorders the engine's notification sequence; it only fans each
// notification out to the tasks waiting on it.
//
// A Scheduler is not safe for concurrent use from multiple goroutines:
// all interaction must come either from the engine's driving goroutine
// or from within task routines (which the scheduler serializes).
type Scheduler struct {
	ctx       context.Context
	cancel    context.CancelFunc
	engine    Engine
	log       *logiface.Logger[logiface.Event]
	onFailure func(task string, err error)

	edges     map[edgeKey]*EdgeTrigger
	tasks     map[*taskState]struct{}
	pending   deque.Deque[*taskState]
	failed    []*taskState
	failure   error
	nextID    int64
	pumpArmed bool
	closed    bool
	wg        sync.WaitGroup
}

// An Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger attaches a structured logger. A nil logger disables
// logging, which is the default.
func WithLogger(log *logiface.Logger[logiface.Event]) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// WithFailureHandler installs a callback invoked at the scheduling
// checkpoint where an unhandled task failure is surfaced (a task that
// finished with an error but was never joined or awaited). The default
// handler only logs and records the failure.
func WithFailureHandler(fn func(task string, err error)) Option {
	return func(s *Scheduler) {
		s.onFailure = fn
	}
}

// New creates a Scheduler bound to the given engine. The context is the
// root of every task routine's context and is cancelled on Shutdown.
//
// Panics if the engine is nil.
func New(ctx context.Context, engine Engine, opts ...Option) *Scheduler {
	if engine == nil {
		panic("engine must be non-nil")
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		engine: engine,
		edges:  make(map[edgeKey]*EdgeTrigger),
		tasks:  make(map[*taskState]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Failure returns the first unhandled task failure surfaced so far, or
// nil.
func (s *Scheduler) Failure() error { return s.failure }

// Shutdown kills every non-terminal task, waits for their goroutines to
// exit, and cancels the scheduler context. Subsequent Await calls return
// [ErrSchedulerClosed] and Start panics. Idempotent. Must not be called
// from within a task routine.
func (s *Scheduler) Shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	live := make([]*taskState, 0, len(s.tasks))
	for st := range s.tasks {
		live = append(live, st)
	}
	for _, st := range live {
		st.kill()
	}
	s.cancel()
	s.wg.Wait()
	s.log.Debug().Int("tasks", len(live)).Log("scheduler shut down")
}

func (s *Scheduler) panicIfClosed() {
	if s.closed {
		panic("scheduler is closed")
	}
}

type taskContextMarkerType struct{}

var taskContextMarkerKey any = taskContextMarkerType{}

func (s *Scheduler) makeTaskContext(st *taskState) context.Context {
	return context.WithValue(s.ctx, taskContextMarkerKey, st)
}

func taskFromContext(ctx context.Context) *taskState {
	st, _ := ctx.Value(taskContextMarkerKey).(*taskState)
	return st
}

func (s *Scheduler) newTaskState(name string, routine func(context.Context) (any, error)) *taskState {
	s.nextID++
	if name == "" {
		name = fmt.Sprintf("task-%d", s.nextID)
	}
	st := &taskState{
		sched:   s,
		id:      s.nextID,
		name:    name,
		routine: routine,
		status:  statePending,
		resume:  make(chan wake),
		parked:  make(chan parkMsg),
	}
	st.ctx = s.makeTaskContext(st)
	st.join = &joinTrigger{task: st}
	st.join.sched = s
	s.tasks[st] = struct{}{}
	s.pending.PushBack(st)
	s.requestPump()
	s.log.Trace().Str("task", st.name).Log("task created")
	return st
}

// requestPump schedules a timestep-end checkpoint so pending tasks start
// even when no trigger is about to fire. Only one pump is kept armed.
func (s *Scheduler) requestPump() {
	if s.pumpArmed || s.closed {
		return
	}
	s.pumpArmed = true
	s.engine.RegisterTimestepEnd(func() {
		s.pumpArmed = false
		s.roundEnd()
	})
}

// scheduleCheckpoint runs fn at the end of the current timestep,
// followed by normal round-end processing.
func (s *Scheduler) scheduleCheckpoint(fn func()) {
	s.engine.RegisterTimestepEnd(func() {
		fn()
		s.roundEnd()
	})
}

// react is the entry point for engine notifications: it marks trig
// fired, fans the firing out to every waiter in suspension order, then
// completes the delivery round before control returns to the engine.
func (s *Scheduler) react(trig Trigger, value any, err error) {
	s.deliver(trig, value, err)
	s.roundEnd()
}

// deliver marks trig fired and wakes the waiters subscribed at this
// moment, strictly FIFO. Each task waiter runs synchronously to its next
// suspension point or completion before the next waiter is woken.
// Subscriptions added during delivery (for example a task re-awaiting
// the same edge) belong to the next cycle and are not woken here.
//
// The round's waiters are drained out of the queue before any of them
// runs: a waiter resumed early in the round may detach co-waiters of the
// same trigger (killing a queued task, a combinator cancelling its
// remaining subscriptions), and that must not disturb the round's
// iteration. The drained round stays visible through tc.delivering so
// removeWaiters can neutralize entries removed mid-round; neutralized
// entries are skipped when their turn comes.
func (s *Scheduler) deliver(trig Trigger, value any, err error) {
	tc := trig.core()
	tc.armed = false
	tc.reg = nil
	tc.fired = true
	s.log.Trace().Stringer("trigger", trig).Int("waiters", tc.waiters.Len()).Log("trigger fired")
	n := tc.waiters.Len()
	round := make([]waiter, 0, n)
	for i := 0; i < n; i++ {
		round = append(round, tc.waiters.PopFront())
	}
	prev := tc.delivering
	tc.delivering = round
	for i := range round {
		switch w := round[i]; {
		case w.task != nil:
			s.resumeAndWait(w.task, wake{value: value, err: err})
		case w.hook != nil:
			w.hook(wake{value: value, err: err})
		}
	}
	tc.delivering = prev
}

// roundEnd finishes a delivery round: newly started tasks get their
// first run, and unhandled failures are surfaced.
func (s *Scheduler) roundEnd() {
	s.runPending()
	s.flushFailures()
}

func (s *Scheduler) runPending() {
	for s.pending.Len() > 0 {
		st := s.pending.PopFront()
		if st.status != statePending {
			continue
		}
		s.resumeAndWait(st, wake{})
	}
}

// resumeAndWait hands control to one task and blocks until it parks
// again, either suspended on a trigger or finished. This handoff is what
// makes the scheduling model cooperative: exactly one routine runs at a
// time, and the caller observes its complete run-to-suspension.
func (s *Scheduler) resumeAndWait(st *taskState, w wake) {
	switch st.status {
	case statePending:
		st.status = stateRunning
		s.log.Trace().Str("task", st.name).Log("task starting")
		s.wg.Add(1)
		go st.run()
	case stateSuspended:
		st.status = stateRunning
		st.waitingOn = nil
		st.resume <- w
	default:
		return
	}
	msg := <-st.parked
	if msg.done {
		s.finalize(st, msg.value, msg.err)
	}
}

func (s *Scheduler) finalize(st *taskState, value any, err error) {
	st.result = value
	st.err = err
	if err != nil {
		st.status = stateDoneFailed
	} else {
		st.status = stateDoneSuccess
	}
	delete(s.tasks, st)
	s.log.Debug().Str("task", st.name).Stringer("state", st.status).Err(err).Log("task finished")
	if err != nil && !st.joined && !errors.Is(err, ErrTaskKilled) {
		s.failed = append(s.failed, st)
	}
	s.deliver(st.join, value, err)
}

// flushFailures surfaces tasks that finished with an error and were
// never joined or awaited. Such failures terminate the run as a failure
// rather than being swallowed: the first one is retained and reported
// through Failure.
func (s *Scheduler) flushFailures() {
	for _, st := range s.failed {
		if st.joined {
			continue
		}
		s.log.Err().Str("task", st.name).Err(st.err).Log("unhandled task failure")
		if s.failure == nil {
			s.failure = fmt.Errorf("unhandled failure in task %s: %w", st.name, st.err)
		}
		if s.onFailure != nil {
			s.onFailure(st.name, st.err)
		}
	}
	s.failed = s.failed[:0]
}
