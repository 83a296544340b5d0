// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

import "fmt"

// Steps is a quantity of simulated time in the engine's base precision.
// One step is one femtosecond, which is fine enough to represent the
// precision of any supported simulator without loss.
type Steps uint64

// TimeUnit names a simulated-time unit accepted by [Scheduler.Timer],
// [WithTimeout], and [NewClock].
type TimeUnit int

const (
	Fs TimeUnit = iota
	Ps
	Ns
	Us
	Ms
	Sec
)

func (u TimeUnit) String() string {
	switch u {
	case Fs:
		return "fs"
	case Ps:
		return "ps"
	case Ns:
		return "ns"
	case Us:
		return "us"
	case Ms:
		return "ms"
	case Sec:
		return "s"
	default:
		return fmt.Sprintf("TimeUnit(%d)", int(u))
	}
}

// stepsPer returns the number of base steps in one unit.
func (u TimeUnit) stepsPer() Steps {
	switch u {
	case Fs:
		return 1
	case Ps:
		return 1e3
	case Ns:
		return 1e6
	case Us:
		return 1e9
	case Ms:
		return 1e12
	case Sec:
		return 1e15
	default:
		panic(fmt.Sprintf("invalid time unit %d", int(u)))
	}
}

// AsSteps converts an amount of simulated time in the given unit to base
// steps. Panics if the unit is not one of the defined constants.
func AsSteps(amount uint64, unit TimeUnit) Steps {
	return Steps(amount) * unit.stepsPer()
}
