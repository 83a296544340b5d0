// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import "fmt"

// A Timer fires once after a fixed amount of simulated time has elapsed
// from arming. Timers are not cached: every construction is a distinct
// instance, and a fired timer can be re-armed by awaiting it again.
type Timer struct {
	triggerCore
	amount uint64
	unit   TimeUnit
	delay  Steps
}

// Timer creates a timer that fires after the given amount of simulated
// time. A zero amount is a construction error.
func (s *Scheduler) Timer(amount uint64, unit TimeUnit) (*Timer, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: Timer(0 %s)", ErrZeroDelay, unit)
	}
	t := &Timer{amount: amount, unit: unit, delay: AsSteps(amount, unit)}
	t.sched = s
	return t, nil
}

func (t *Timer) waitTrigger() Trigger { return t }

// Delay returns the timer's delay in base steps.
func (t *Timer) Delay() Steps { return t.delay }

func (t *Timer) Arm() error {
	if t.armed {
		return nil
	}
	reg, err := t.sched.engine.RegisterTimeDelay(t.delay, func() {
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

func (t *Timer) String() string {
	return fmt.Sprintf("Timer(%d %s)", t.amount, t.unit)
}
