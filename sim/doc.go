// Copyright (c) the cosched authors. All rights reserved.
// Licensed under the MIT License.

// Package sim provides an in-process discrete-event engine implementing
// [cosched.Engine], along with [Signal] handles for driving and
// observing values. It is suitable for testbenches and development; a
// production deployment would instead bridge cosched to an external
// simulator.
package sim
