// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

package cosched

// A Registration is the engine's receipt for a requested notification.
// Cancel withdraws the request; it is safe to call after the notification
// has already been delivered, and more than once.
type Registration interface {
	Cancel()
}

// An Engine is the external simulation authority the scheduler registers
// its trigger conditions with. It advances simulated time, evaluates the
// hardware model, and invokes the registered notify callbacks when a
// requested condition occurs.
//
// The engine delivers notify callbacks one at a time, on its own driving
// goroutine, each exactly once unless its registration was cancelled
// first. While a notify callback (or code it resumes) is running, the
// engine must accept reentrant Register* and Cancel calls; the scheduler
// issues them from inside delivery. The [github.com/cohdl/cosched/sim]
// package provides an in-process implementation of this contract.
type Engine interface {
	// RegisterValueChange asks to be notified of the next change of h
	// that qualifies under kind. For EdgeRising and EdgeFalling the
	// handle must be scalar; the scheduler validates this before
	// registering.
	RegisterValueChange(h Handle, kind EdgeKind, notify func()) (Registration, error)

	// RegisterTimeDelay asks to be notified once simulated time has
	// advanced d steps past the current instant.
	RegisterTimeDelay(d Steps, notify func()) (Registration, error)

	// RegisterTimestepEnd asks to be notified when the engine has
	// delivered every notification pending at the current instant,
	// before simulated time next advances.
	RegisterTimestepEnd(notify func()) Registration

	// Now returns the current simulated time.
	Now() Steps
}
