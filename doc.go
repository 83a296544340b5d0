// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

// Package cosched provides cooperative task scheduling for routines that
// react to events in an externally driven, time-stepped simulation of a
// digital hardware model. Client routines describe what to wait for -- a
// signal transitioning, a number of clock edges elapsing, a fixed amount
// of simulated time passing, or a combination of such conditions -- and
// the scheduler suspends and resumes them in an order consistent with
// the simulation's own event ordering.
//
// Routines run as tasks started with [Start]. A task suspends only by
// awaiting a [Trigger] via [Await]; between suspension points it runs to
// completion without yielding, and exactly one task runs at a time.
// Apparent concurrency between tasks is interleaving driven entirely by
// the engine's notifications, so shared state needs no locking.
//
// Triggers come in a small taxonomy: edge triggers bound to a signal
// handle ([Scheduler.RisingEdge], [Scheduler.FallingEdge],
// [Scheduler.Edge]), cached so repeated requests for the same (signal,
// kind) pair return the identical object; timers ([Scheduler.Timer]);
// and derived conditions ([Scheduler.ClockCycles], [Scheduler.First],
// [Scheduler.Combine], [WithTimeout]) composed from them. Tasks are
// themselves awaitable through their join triggers.
//
// The simulation engine is an external collaborator behind the [Engine]
// interface; the sim subpackage provides an in-process discrete-event
// implementation suitable for testbenches and development.
package cosched
