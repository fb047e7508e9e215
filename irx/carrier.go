// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"fmt"
)

// maxCarrier is the highest carrier frequency a device accepts, in Hz.
const maxCarrier = 500000

// initTiming recomputes the carrier half-periods for the given duty
// cycle (percent) and frequency (Hz). Widths are held in nanoseconds
// so low duty cycles at high frequencies keep their precision.
// Callers hold tx.mu.
func (d *Device) initTiming(duty, freq uint32) error {
	period := uint64(1000*1000000) / uint64(freq)
	pulseW := period * uint64(duty) / 100
	spaceW := period - pulseW
	if pulseW <= txLatency || spaceW <= txLatency {
		return fmt.Errorf("irx: carrier %d Hz at %d%% duty is below the transmitter latency", freq, duty)
	}
	d.tx.duty = duty
	d.tx.freq = freq
	d.tx.period = uint32(period)
	d.tx.pulseW = uint32(pulseW)
	d.tx.spaceW = uint32(spaceW)
	return nil
}

// SetCarrier sets the transmit carrier frequency in Hz. A zero
// frequency switches the output to unmodulated pulses.
func (d *Device) SetCarrier(freq uint32) error {
	d.tx.mu.Lock()
	defer d.tx.mu.Unlock()
	if freq == 0 {
		d.tx.freq = 0
		return nil
	}
	if freq > maxCarrier {
		return fmt.Errorf("irx: carrier frequency %d Hz out of range (max=%d)", freq, maxCarrier)
	}
	return d.initTiming(d.tx.duty, freq)
}

// Carrier returns the current transmit carrier frequency in Hz.
func (d *Device) Carrier() uint32 {
	d.tx.mu.Lock()
	defer d.tx.mu.Unlock()
	return d.tx.freq
}

// SetDutyCycle sets the transmit carrier duty cycle in percent.
func (d *Device) SetDutyCycle(duty uint32) error {
	if duty < 1 || duty > 100 {
		return fmt.Errorf("irx: duty cycle %d%% out of range", duty)
	}
	d.tx.mu.Lock()
	defer d.tx.mu.Unlock()
	if d.tx.freq == 0 {
		d.tx.duty = duty
		return nil
	}
	return d.initTiming(duty, d.tx.freq)
}

// DutyCycle returns the current transmit carrier duty cycle in
// percent.
func (d *Device) DutyCycle() uint32 {
	d.tx.mu.Lock()
	defer d.tx.mu.Unlock()
	return d.tx.duty
}
