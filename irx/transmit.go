// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"fmt"
	"math/bits"
)

// Transmit plays an alternating pulse/space duration sequence, in
// microseconds, out on the enabled transmit lines. The sequence must
// start with a pulse and end with a space, so its length is even.
// Transmissions are serialized: a second call blocks until the first
// one finishes. The lines are idle when Transmit returns.
func (d *Device) Transmit(seq []uint32) error {
	if len(d.cfg.out) == 0 {
		return fmt.Errorf("irx: device has no transmit line")
	}
	if len(seq) == 0 || len(seq)%2 != 0 {
		return fmt.Errorf("irx: invalid transmit sequence length %d", len(seq))
	}

	d.tx.mu.Lock()
	defer d.tx.mu.Unlock()

	var delta uint32 // carrier overshoot carried into the next space
	for i, dur := range seq {
		if i%2 == 0 {
			delta = d.sendPulse(dur)
			continue
		}
		if dur > delta {
			d.sendSpace(dur - delta)
		} else {
			d.setTxLines(false)
		}
	}
	d.setTxLines(false)
	return nil
}

func (d *Device) sendPulse(length uint32) uint32 {
	if length == 0 {
		return 0
	}
	if d.cfg.soft && d.tx.freq > 0 {
		return d.sendPulseSoft(length)
	}
	d.setTxLines(true)
	d.clk.Wait(length)
	return 0
}

func (d *Device) sendSpace(length uint32) {
	d.setTxLines(false)
	if length == 0 {
		return
	}
	d.clk.Wait(length)
}

// sendPulseSoft generates the carrier on the transmit lines for
// length microseconds by toggling them in software. Accounting runs
// in nanoseconds against the actual elapsed clock, so per-half-cycle
// rounding does not accumulate into drift. The return value is the
// overshoot past the requested length, in microseconds.
func (d *Device) sendPulseSoft(length uint32) uint32 {
	var (
		want   = uint64(length) * 1000
		actual uint64
		target uint64
		active = true
	)
	now := d.clk.Now()
	for actual < want {
		if active {
			d.setTxLines(true)
			target += uint64(d.tx.pulseW)
		} else {
			d.setTxLines(false)
			target += uint64(d.tx.spaceW)
		}
		if target > actual {
			d.clk.Wait(uint32((target - actual) / 1000))
		}
		cur := d.clk.Now()
		actual += (cur - now) * 1000
		now = cur
		active = !active
	}
	return uint32((actual - want) / 1000)
}

// setTxLines drives the enabled transmit lines to the given logical
// state. Disabled and idle lines are driven to their inactive level.
func (d *Device) setTxLines(active bool) {
	level := active != d.cfg.invert
	idle := d.cfg.invert
	for i, line := range d.cfg.out {
		lvl := level
		if active && d.tx.mask&(1<<uint(i)) == 0 {
			lvl = idle
		}
		if err := d.lines.Set(line, lvl); err != nil {
			d.msg.Printf("could not drive transmit line %d: %+v", line, err)
		}
	}
}

// SetTxMask selects which transmit lines Transmit drives, one bit per
// line in WithOutputLines order. It returns the number of enabled
// transmitters. A mask with bits beyond the configured lines is
// rejected, returning the number of available transmitters alongside
// the error.
func (d *Device) SetTxMask(mask uint32) (int, error) {
	n := len(d.cfg.out)
	if n == 0 {
		return 0, fmt.Errorf("irx: device has no transmit line")
	}
	if mask&^(uint32(1)<<uint(n)-1) != 0 {
		return n, fmt.Errorf("irx: invalid transmitter mask 0x%x (n-transmitters=%d)", mask, n)
	}
	d.tx.mu.Lock()
	defer d.tx.mu.Unlock()
	d.tx.mask = mask
	d.setTxLines(false)
	return bits.OnesCount32(mask), nil
}

// TxMask returns the current transmitter enable mask.
func (d *Device) TxMask() uint32 {
	d.tx.mu.Lock()
	defer d.tx.mu.Unlock()
	return d.tx.mask
}
