// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import "fmt"

// ClockCycles fires after observing n qualifying edges on a signal. It is
// built on the scheduler's shared, cached [EdgeTrigger] for that signal
// and direction, but each ClockCycles instance owns its own countdown and
// its own subscription, so independently started instances on the same
// signal (for example from two forked tasks) count without interfering.
type ClockCycles struct {
	triggerCore
	edge      *EdgeTrigger
	count     int
	rising    bool
	remaining int
}

// ClockCycles creates a trigger that fires after n rising (or, with
// rising false, falling) edges of h.
func (s *Scheduler) ClockCycles(h Handle, n int, rising bool) (*ClockCycles, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrZeroCount, n)
	}
	kind := EdgeRising
	if !rising {
		kind = EdgeFalling
	}
	edge, err := s.edgeFor(h, kind)
	if err != nil {
		return nil, err
	}
	t := &ClockCycles{edge: edge, count: n, rising: rising}
	t.sched = s
	return t, nil
}

func (t *ClockCycles) waitTrigger() Trigger { return t }

// Remaining returns how many qualifying edges are still outstanding in
// the current arming cycle.
func (t *ClockCycles) Remaining() int { return t.remaining }

func (t *ClockCycles) Arm() error {
	if t.armed {
		return nil
	}
	t.remaining = t.count
	if err := subscribe(t.edge, waiter{owner: t, hook: t.edgeFired}); err != nil {
		return err
	}
	t.armed = true
	t.fired = false
	return nil
}

func (t *ClockCycles) Cancel() {
	if !t.armed {
		return
	}
	t.armed = false
	unsubscribeOwner(t.edge, t)
}

// edgeFired consumes one qualifying edge. The shared edge trigger was
// unprimed when it fired, so resubscribing here re-arms it; if several
// counters resubscribe during the same delivery round, only the first
// re-registers with the engine.
func (t *ClockCycles) edgeFired(w wake) {
	if !t.armed {
		return
	}
	if w.err != nil {
		t.armed = false
		t.sched.deliver(t, t, w.err)
		return
	}
	t.remaining--
	if t.remaining > 0 {
		if err := subscribe(t.edge, waiter{owner: t, hook: t.edgeFired}); err != nil {
			t.armed = false
			t.sched.deliver(t, t, err)
		}
		return
	}
	t.armed = false
	t.sched.deliver(t, t, nil)
}

// String renders the signal path and count. Rising is the default
// direction and is elided; only falling counters carry a direction
// suffix.
func (t *ClockCycles) String() string {
	if !t.rising {
		return fmt.Sprintf("ClockCycles(%s, %d, falling)", t.edge.handle.Path(), t.count)
	}
	return fmt.Sprintf("ClockCycles(%s, %d)", t.edge.handle.Path(), t.count)
}
