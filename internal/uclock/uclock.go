// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uclock provides a monotonic microsecond clock and a bounded
// busy-wait, the timing primitives needed to bit-bang IR waveforms
// from user space.
package uclock // import "github.com/go-lirc/tegra/internal/uclock"

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// maxSpan is the longest single busy-wait, in microseconds. Longer
// waits are split so the scheduler gets a chance to run between
// chunks.
const maxSpan = 5000

// Sys is a clock backed by CLOCK_MONOTONIC.
type Sys struct{}

// System returns the monotonic system clock.
func System() *Sys { return &Sys{} }

// Now returns the monotonic time, in microseconds.
func (c *Sys) Now() uint64 {
	var ts unix.Timespec
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	return uint64(ts.Sec)*1000000 + uint64(ts.Nsec)/1000
}

// Wait busy-waits for us microseconds, splitting long waits into
// maxSpan chunks.
func (c *Sys) Wait(us uint32) {
	for us > maxSpan {
		c.spin(maxSpan)
		us -= maxSpan
		runtime.Gosched()
	}
	c.spin(us)
}

func (c *Sys) spin(us uint32) {
	deadline := c.Now() + uint64(us)
	for c.Now() < deadline {
	}
}
