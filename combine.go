// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import (
	"slices"
	"strings"
)

// Combine fires only once every constituent awaitable has completed.
// Failure of any one constituent propagates as the Combine's failure
// immediately, without waiting for the others; the remaining still-live
// constituents are cancelled. The await value of a Combine is the
// Combine itself.
type Combine struct {
	triggerCore
	children  []Awaitable
	remaining int
}

// Combine creates a trigger over the given awaitables. At least one is
// required, and none may be nil.
func (s *Scheduler) Combine(aws ...Awaitable) (*Combine, error) {
	if len(aws) == 0 {
		return nil, ErrNoConstituents
	}
	for _, aw := range aws {
		if aw == nil {
			panic("awaitable must be non-nil")
		}
	}
	c := &Combine{children: slices.Clone(aws)}
	c.sched = s
	return c, nil
}

func (c *Combine) waitTrigger() Trigger { return c }

func (c *Combine) Arm() error {
	if c.armed {
		return nil
	}
	c.fired = false
	c.remaining = len(c.children)
	for i, aw := range c.children {
		if err := subscribe(aw.waitTrigger(), waiter{owner: c, hook: c.childDone}); err != nil {
			for _, prev := range c.children[:i] {
				unsubscribeOwner(prev.waitTrigger(), c)
			}
			return err
		}
	}
	c.armed = true
	return nil
}

func (c *Combine) Cancel() {
	if !c.armed {
		return
	}
	c.armed = false
	for _, aw := range c.children {
		unsubscribeOwner(aw.waitTrigger(), c)
	}
}

func (c *Combine) childDone(w wake) {
	if !c.armed {
		return
	}
	if w.err != nil {
		// At-least-one-failure short-circuits.
		c.armed = false
		for _, aw := range c.children {
			unsubscribeOwner(aw.waitTrigger(), c)
		}
		c.sched.deliver(c, c, w.err)
		return
	}
	c.remaining--
	if c.remaining == 0 {
		c.armed = false
		c.sched.deliver(c, c, nil)
	}
}

func (c *Combine) String() string {
	var b strings.Builder
	b.WriteString("Combine(")
	for i, aw := range c.children {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(aw.waitTrigger().String())
	}
	b.WriteString(")")
	return b.String()
}
