// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package irx implements an infrared transceiver timing engine: it
// turns edge transitions on a receive line into a stream of pulse and
// space durations, and plays an application-supplied duration stream
// back out on one or more transmit lines, optionally modulated by a
// software-generated carrier.
package irx // import "github.com/go-lirc/tegra/irx"

import (
	"fmt"

	"github.com/go-lirc/tegra/internal/mode2"
)

const (
	// maxTransmitters is the number of output lines a device may drive.
	maxTransmitters = 8

	// txLatency is the output-toggling overhead floor: carrier
	// half-widths must exceed it (in the carrier fixed-point scale)
	// or the parameter update is rejected.
	txLatency = 50

	// rbufLen is the default capacity of the receive ring buffer.
	rbufLen = 256

	// agcPulseMax is the longest pulse treated as receiver AGC noise
	// while tracking a long gap, in microseconds.
	agcPulseMax = 250

	// longGapMin is the space duration past which the noise filter
	// arms and starts coalescing, in microseconds.
	longGapMin = 20000

	// idleTimeout flags a really long time between edges, in
	// microseconds.
	idleTimeout = 15000000
)

// Record is one decoded pulse or space duration, in the mode2
// encoding: bit 24 tags a pulse, the low 24 bits hold the duration in
// microseconds, saturated at PulseMask.
type Record uint32

const (
	PulseBit  = Record(mode2.PulseBit)
	PulseMask = Record(mode2.PulseMask)
)

// Pulse returns a pulse record of d microseconds, saturating at
// PulseMask.
func Pulse(d uint32) Record { return Record(mode2.Pulse(d)) }

// Space returns a space record of d microseconds, saturating at
// PulseMask.
func Space(d uint32) Record { return Record(mode2.Space(d)) }

// IsPulse reports whether r is a pulse.
func (r Record) IsPulse() bool { return r&PulseBit != 0 }

// Duration returns the duration of r, in microseconds.
func (r Record) Duration() uint32 { return uint32(r & PulseMask) }

func (r Record) String() string {
	kind := "space"
	if r.IsPulse() {
		kind = "pulse"
	}
	return fmt.Sprintf("%s(%d)", kind, r.Duration())
}
