// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

// A Handle is a typed reference into the simulation's design hierarchy.
// The scheduler needs only a narrow view of it: a stable hierarchical
// path for diagnostics, the bit width and current value for trigger type
// validation, and whether the handle supports value-change notification
// at all. Handles are compared by identity; the same design object must
// always be represented by the same Handle value.
type Handle interface {
	// Path returns the fully qualified hierarchical path of the handle,
	// e.g. "top.sub.clk".
	Path() string

	// Width returns the bit width of the handle's value. Scalar logic
	// handles have width 1.
	Width() int

	// Value returns the current value of the handle.
	Value() uint64

	// Observable reports whether the handle supports value-change
	// notification. Trigger construction fails against handles that do
	// not.
	Observable() bool
}

// A WriteHandle is a Handle the testbench side may drive, such as a clock
// or stimulus signal.
type WriteHandle interface {
	Handle

	// SetValue drives a new value onto the handle, effective in the
	// current timestep.
	SetValue(v uint64)
}

// EdgeKind selects which value transitions of a handle qualify as an
// edge.
type EdgeKind uint8

const (
	// EdgeAny qualifies on any observable change of the handle's value.
	EdgeAny EdgeKind = iota
	// EdgeRising qualifies on a 0 to 1 transition of a scalar handle.
	EdgeRising
	// EdgeFalling qualifies on a 1 to 0 transition of a scalar handle.
	EdgeFalling
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeAny:
		return "any"
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	default:
		return "invalid"
	}
}
