// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"cmp"
	"context"
	"fmt"

	"github.com/addrummond/heap"
	"github.com/cohdl/cosched"
	"github.com/gammazero/deque"
)

type constError string

func (e constError) Error() string {
	return string(e)
}

// ErrForeignHandle indicates a value-change registration against a
// handle that was not created by this engine.
const ErrForeignHandle = constError("handle was not created by this engine")

// Engine is an in-process discrete-event implementation of
// [cosched.Engine]. Notifications are kept in a min-heap ordered by
// (time, registration sequence), so same-instant notifications deliver
// strictly in registration order and an edge notification is never
// delivered after a time advance that logically follows it.
//
// The zero value is not usable; create engines with [New].
type Engine struct {
	now     cosched.Steps
	seq     uint64
	stopped bool
	events  heap.Heap[event, heap.Min]
	eos     deque.Deque[*registration]
}

type event struct {
	time cosched.Steps
	seq  uint64
	reg  *registration
}

func (a *event) Cmp(b *event) int {
	if c := cmp.Compare(a.time, b.time); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// registration is the engine-side receipt for one requested
// notification. One-shot: it fires at most once, and cancellation wins
// over a queued but undelivered firing.
type registration struct {
	notify    func()
	kind      cosched.EdgeKind
	fired     bool
	cancelled bool
}

func (r *registration) Cancel() {
	r.cancelled = true
}

// New creates an empty engine at simulated time zero.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) Now() cosched.Steps { return e.now }

// Stop makes the current Run call return once the notification being
// delivered (if any) completes. Used by testbenches to abort a run, for
// example on an unhandled task failure.
func (e *Engine) Stop() { e.stopped = true }

func (e *Engine) RegisterTimeDelay(d cosched.Steps, notify func()) (cosched.Registration, error) {
	if notify == nil {
		panic("notify must be non-nil")
	}
	reg := &registration{notify: notify}
	e.push(e.now+d, reg)
	return reg, nil
}

func (e *Engine) RegisterValueChange(h cosched.Handle, kind cosched.EdgeKind, notify func()) (cosched.Registration, error) {
	if notify == nil {
		panic("notify must be non-nil")
	}
	sig, ok := h.(*Signal)
	if !ok || sig.eng != e {
		return nil, fmt.Errorf("%w: %s", ErrForeignHandle, h.Path())
	}
	reg := &registration{notify: notify, kind: kind}
	sig.watchers = append(sig.watchers, reg)
	return reg, nil
}

func (e *Engine) RegisterTimestepEnd(notify func()) cosched.Registration {
	if notify == nil {
		panic("notify must be non-nil")
	}
	reg := &registration{notify: notify}
	e.eos.PushBack(reg)
	return reg
}

// Run advances simulated time and delivers notifications until no work
// remains, the context is done, or Stop is called. Do not use plain Run
// with free-running stimulus like [cosched.Clock]; it would never
// return. Use RunUntil instead.
func (e *Engine) Run(ctx context.Context) error {
	return e.run(ctx, false, 0)
}

// RunUntil is Run with a horizon: the engine stops before advancing past
// the given simulated time. Work already queued at or before the horizon
// is still delivered.
func (e *Engine) RunUntil(ctx context.Context, horizon cosched.Steps) error {
	return e.run(ctx, true, horizon)
}

func (e *Engine) run(ctx context.Context, limited bool, horizon cosched.Steps) error {
	e.stopped = false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.stopped {
			return nil
		}
		// Deliver everything pending at the current instant first.
		if ev, ok := heap.Peek(&e.events); ok && ev.time == e.now {
			heap.PopOrderable(&e.events)
			e.dispatch(ev.reg)
			continue
		}
		// Then end-of-timestep callbacks; these may queue more work at
		// the current instant, so loop back before advancing.
		if e.eos.Len() > 0 {
			e.drainTimestepEnd()
			continue
		}
		ev, ok := heap.Peek(&e.events)
		if !ok {
			return nil
		}
		if limited && ev.time > horizon {
			return nil
		}
		e.now = ev.time
	}
}

func (e *Engine) dispatch(reg *registration) {
	if reg.cancelled || reg.fired {
		return
	}
	reg.fired = true
	reg.notify()
}

func (e *Engine) drainTimestepEnd() {
	n := e.eos.Len()
	for i := 0; i < n; i++ {
		e.dispatch(e.eos.PopFront())
	}
}

func (e *Engine) push(at cosched.Steps, reg *registration) {
	e.seq++
	heap.PushOrderable(&e.events, event{time: at, seq: e.seq, reg: reg})
}
