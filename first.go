// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import (
	"slices"
	"strings"
)

// FirstResult is the await value of a [First]: which constituent fired,
// and the value it carried (a task's result, or the trigger itself for a
// plain trigger), so callers can branch on the winner.
type FirstResult struct {
	Winner Awaitable
	Value  any
}

// First fires as soon as any one constituent awaitable completes. The
// moment one fires, the remaining still-pending constituents are
// cancelled: their subscriptions are detached and, where no other waiter
// remains, their underlying engine registrations withdrawn, so the
// losers produce no further effect.
//
// If several constituents become eligible in the same simulated instant,
// the winner is the one whose underlying engine registration was made
// first; the engine delivers same-instant notifications in registration
// order.
type First struct {
	triggerCore
	children []Awaitable
}

// First creates a trigger over the given awaitables. At least one is
// required, and none may be nil.
func (s *Scheduler) First(aws ...Awaitable) (*First, error) {
	if len(aws) == 0 {
		return nil, ErrNoConstituents
	}
	for _, aw := range aws {
		if aw == nil {
			panic("awaitable must be non-nil")
		}
	}
	f := &First{children: slices.Clone(aws)}
	f.sched = s
	return f, nil
}

func (f *First) waitTrigger() Trigger { return f }

func (f *First) Arm() error {
	if f.armed {
		return nil
	}
	f.fired = false
	for i, aw := range f.children {
		hook := func(w wake) { f.childFired(aw, w) }
		if err := subscribe(aw.waitTrigger(), waiter{owner: f, hook: hook}); err != nil {
			for _, prev := range f.children[:i] {
				unsubscribeOwner(prev.waitTrigger(), f)
			}
			return err
		}
	}
	f.armed = true
	return nil
}

func (f *First) Cancel() {
	if !f.armed {
		return
	}
	f.armed = false
	for _, aw := range f.children {
		unsubscribeOwner(aw.waitTrigger(), f)
	}
}

func (f *First) childFired(winner Awaitable, w wake) {
	if !f.armed {
		return
	}
	f.armed = false
	// The winner's own subscription was consumed by its delivery; this
	// detaches every loser, withdrawing registrations nobody else waits on.
	for _, aw := range f.children {
		unsubscribeOwner(aw.waitTrigger(), f)
	}
	f.sched.deliver(f, FirstResult{Winner: winner, Value: w.value}, w.err)
}

func (f *First) String() string {
	var b strings.Builder
	b.WriteString("First(")
	for i, aw := range f.children {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(aw.waitTrigger().String())
	}
	b.WriteString(")")
	return b.String()
}
