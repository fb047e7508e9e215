// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

// onEdge turns a level transition on the receive line into a pulse or
// space record for the interval that just ended. It runs on the
// interrupt subsystem's delivery goroutine.
func (d *Device) onEdge(level bool, now uint64) {
	last := d.rx.last
	d.rx.last = now

	pol := Polarity(d.sense.Load())

	var dur uint32
	switch {
	case now < last:
		d.msg.Printf("AIEEE: clock jumped backwards (now=%d, last=%d)", now, last)
		dur = uint32(PulseMask)
	case now-last > idleTimeout:
		dur = uint32(PulseMask)
		// The interval that just ended was a long idle stretch,
		// so this edge must leave the idle level. When it does
		// not, the configured polarity is inverted: flip it so
		// the idle interval classifies as a space.
		if level == (pol == ActiveLow) {
			pol = pol.flip()
			d.sense.Store(int32(pol))
			d.msg.Printf("inverted receive line polarity detected, now %v", pol)
		}
	default:
		dur = uint32(now - last)
	}

	rec := Space(dur)
	if level == (pol == ActiveLow) {
		rec = Pulse(dur)
	}
	d.flt.write(rec)
}
