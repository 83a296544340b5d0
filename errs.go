// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

type constError string

func (e constError) Error() string {
	return string(e)
}

// ErrTimeout is returned by [WithTimeout] when the timeout timer fires
// before the raced awaitable completes.
const ErrTimeout = constError("simulated-time timeout")

// ErrTaskPanic wraps the recovered value of a task routine that panicked.
// The task transitions to its failed state and the panic is reported to
// joiners like any other task error.
const ErrTaskPanic = constError("task panicked")

// ErrTaskKilled is delivered at a task's suspension point when the task is
// killed via [Task.Kill] or [Scheduler.Shutdown]. Killed tasks are not
// reported as unhandled failures.
const ErrTaskKilled = constError("task killed")

// ErrSchedulerClosed is returned by [Await] once the scheduler has been
// shut down.
const ErrSchedulerClosed = constError("scheduler closed")

// ErrNotObservable indicates a trigger was constructed against a handle
// that does not support value-change notification.
const ErrNotObservable = constError("handle does not support value-change notification")

// ErrNotScalar indicates RisingEdge or FallingEdge was constructed against
// a handle whose value is not a single bit.
const ErrNotScalar = constError("handle is not a single-bit logic value")

// ErrZeroDelay indicates a timer was constructed with a zero delay.
const ErrZeroDelay = constError("timer delay must be positive")

// ErrZeroCount indicates ClockCycles was constructed with a non-positive
// cycle count.
const ErrZeroCount = constError("clock cycle count must be positive")

// ErrNoConstituents indicates First or Combine was constructed without any
// awaitables.
const ErrNoConstituents = constError("combinator requires at least one awaitable")

// ErrOddPeriod indicates a clock was constructed with a period that cannot
// be split into two equal half-periods.
const ErrOddPeriod = constError("clock period must be an even number of units")
