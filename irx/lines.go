// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

// Lines abstracts the GPIO lines a Device drives and samples.
// Implementations are expected to be cheap: Get and Set sit on the
// carrier hot path and are called with interrupt-grade frequency.
type Lines interface {
	// Get samples the receive line level.
	Get(line int) (bool, error)

	// Set drives an output line to the given level.
	Set(line int, level bool) error

	// IntrID returns the interrupt identifier bound to the given
	// line, for registration with an Intr.
	IntrID(line int) (int, error)
}

// EdgeHandler is invoked for every level transition on a receive
// line, with the new line level and a monotonic timestamp in
// microseconds.
type EdgeHandler func(level bool, now uint64)

// Intr abstracts the interrupt subsystem that delivers edge events.
type Intr interface {
	// Register arranges for h to run on every edge of the line
	// identified by id.
	Register(id int, h EdgeHandler) error

	// Unregister stops edge delivery for id.
	Unregister(id int) error
}

// Clock abstracts the monotonic microsecond clock the engine times
// against.
type Clock interface {
	// Now returns the current monotonic time in microseconds.
	Now() uint64

	// Wait busy-waits for the given number of microseconds.
	Wait(us uint32)
}
