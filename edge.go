// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import "fmt"

// An EdgeTrigger fires when a bound signal handle transitions. Instances
// are cached by the scheduler: for a given (handle, kind) pair within one
// scheduler there is exactly one EdgeTrigger, so repeated construction
// returns the identical object and every waiter on "the same" transition
// observes one canonical firing.
type EdgeTrigger struct {
	triggerCore
	handle Handle
	kind   EdgeKind
}

type edgeKey struct {
	handle Handle
	kind   EdgeKind
}

// RisingEdge returns the cached trigger that fires on a 0 to 1
// transition of h. Fails if h does not support value-change notification
// or is not a single-bit logic value.
func (s *Scheduler) RisingEdge(h Handle) (*EdgeTrigger, error) {
	return s.edgeFor(h, EdgeRising)
}

// FallingEdge returns the cached trigger that fires on a 1 to 0
// transition of h. Fails if h does not support value-change notification
// or is not a single-bit logic value.
func (s *Scheduler) FallingEdge(h Handle) (*EdgeTrigger, error) {
	return s.edgeFor(h, EdgeFalling)
}

// Edge returns the cached trigger that fires on any observable change of
// h's value, including multi-bit handles. A round trip away from and
// back to a baseline value counts as two firings.
func (s *Scheduler) Edge(h Handle) (*EdgeTrigger, error) {
	return s.edgeFor(h, EdgeAny)
}

func (s *Scheduler) edgeFor(h Handle, kind EdgeKind) (*EdgeTrigger, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handle", ErrNotObservable)
	}
	if !h.Observable() {
		return nil, fmt.Errorf("%w: %s", ErrNotObservable, h.Path())
	}
	if kind != EdgeAny && h.Width() != 1 {
		return nil, fmt.Errorf("%w: %s is %d bits wide", ErrNotScalar, h.Path(), h.Width())
	}
	key := edgeKey{handle: h, kind: kind}
	if et, ok := s.edges[key]; ok {
		return et, nil
	}
	et := &EdgeTrigger{handle: h, kind: kind}
	et.sched = s
	s.edges[key] = et
	return et, nil
}

func (t *EdgeTrigger) waitTrigger() Trigger { return t }

// Handle returns the signal handle the trigger is bound to.
func (t *EdgeTrigger) Handle() Handle { return t.handle }

// Kind returns which transitions of the handle qualify.
func (t *EdgeTrigger) Kind() EdgeKind { return t.kind }

func (t *EdgeTrigger) Arm() error {
	if t.armed {
		return nil
	}
	reg, err := t.sched.engine.RegisterValueChange(t.handle, t.kind, func() {
		t.sched.react(t, t, nil)
	})
	if err != nil {
		return err
	}
	t.reg = reg
	t.armed = true
	t.fired = false
	return nil
}

func (t *EdgeTrigger) String() string {
	switch t.kind {
	case EdgeRising:
		return fmt.Sprintf("RisingEdge(%s)", t.handle.Path())
	case EdgeFalling:
		return fmt.Sprintf("FallingEdge(%s)", t.handle.Path())
	default:
		return fmt.Sprintf("Edge(%s)", t.handle.Path())
	}
}
