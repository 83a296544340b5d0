// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import "github.com/gammazero/deque"

// An Awaitable is anything a task can suspend on via [Await]: every
// [Trigger], plus [Task] (which stands for its join trigger).
type Awaitable interface {
	// waitTrigger resolves the awaitable to the concrete trigger a task
	// suspends on.
	waitTrigger() Trigger
}

// A Trigger describes a condition to wait for. It fires at most once per
// arming cycle; awaiting a trigger arms it automatically, and a trigger
// that has fired is re-armed the next time it is awaited.
//
// Every trigger exposes a stable textual descriptor via String,
// embedding its kind and, where applicable, the bound handle's path and
// parameters. Equivalent triggers render identically.
type Trigger interface {
	Awaitable

	// Arm registers the trigger's condition with the engine. It is a
	// no-op if the trigger is already armed. Arming a fired trigger
	// begins a new cycle.
	Arm() error

	// Cancel withdraws the trigger's registration if it has not yet
	// fired, so it produces no further effect. Safe to call on an
	// unarmed or already-fired trigger.
	Cancel()

	// Fired reports whether the trigger has fired in its current arming
	// cycle, not whether a past firing is what woke the caller. A shared
	// trigger re-armed by another waiter in the same delivery round (a
	// cached edge re-subscribed by a cycle counter, say) begins a new
	// cycle and reports false again.
	Fired() bool

	String() string

	core() *triggerCore
}

// wake is the payload delivered to a waiter when its trigger fires.
type wake struct {
	value any
	err   error
}

// A waiter is one subscription to a trigger firing: either a suspended
// task, or a hook belonging to a derived trigger (First, Combine,
// ClockCycles). Waiters are delivered strictly in subscription order.
type waiter struct {
	task  *taskState
	owner any // identifies the derived trigger owning hook, for removal
	hook  func(wake)
}

// triggerCore holds the state shared by every trigger implementation.
type triggerCore struct {
	sched   *Scheduler
	armed   bool
	fired   bool
	reg     Registration
	waiters deque.Deque[waiter]

	// delivering is the waiter round currently being fanned out, if any.
	// Unsubscribing mid-round neutralizes entries here in place.
	delivering []waiter
}

func (tc *triggerCore) core() *triggerCore { return tc }

func (tc *triggerCore) Fired() bool { return tc.fired }

// Cancel is the default cancellation for engine-backed triggers. Derived
// triggers shadow it to also detach their child subscriptions.
func (tc *triggerCore) Cancel() {
	tc.unprime()
}

func (tc *triggerCore) unprime() {
	if tc.reg != nil {
		tc.reg.Cancel()
		tc.reg = nil
	}
	tc.armed = false
}

// subscribe arms trig and appends w to its waiter queue. The waiter will
// be woken by the next firing. Subscriptions made while a firing is
// being delivered belong to the following cycle.
func subscribe(trig Trigger, w waiter) error {
	if err := trig.Arm(); err != nil {
		return err
	}
	trig.core().waiters.PushBack(w)
	return nil
}

func unsubscribeTask(trig Trigger, t *taskState) {
	removeWaiters(trig, func(w waiter) bool { return w.task == t })
}

func unsubscribeOwner(trig Trigger, owner any) {
	removeWaiters(trig, func(w waiter) bool { return w.owner == owner })
}

// removeWaiters drops every matching waiter, including any drained into
// an in-flight delivery round but not yet woken. If none remain and the
// trigger is still armed, its registration is withdrawn so it produces
// no stray firing into torn-down state.
func removeWaiters(trig Trigger, match func(waiter) bool) {
	tc := trig.core()
	for i := tc.waiters.Len(); i > 0; i-- {
		w := tc.waiters.PopFront()
		if !match(w) {
			tc.waiters.PushBack(w)
		}
	}
	for i := range tc.delivering {
		if w := tc.delivering[i]; (w.task != nil || w.hook != nil) && match(w) {
			tc.delivering[i] = waiter{}
		}
	}
	if tc.armed && tc.waiters.Len() == 0 {
		trig.Cancel()
	}
}
