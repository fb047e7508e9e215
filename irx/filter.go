// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

// noiseFilter screens out receiver AGC artifacts around long gaps.
// After a space longer than longGapMin it withholds the gap and
// swallows the short pulses some receivers emit while their gain
// ramps back up, merging them into the gap. The gap and the first
// real pulse are released together once that pulse grows past
// agcPulseMax.
type noiseFilter struct {
	armed bool
	pulse uint32
	space uint32
	out   func(Record)
}

func (f *noiseFilter) write(r Record) {
	if f.armed && r.IsPulse() {
		f.pulse += r.Duration()
		if f.pulse > agcPulseMax {
			f.out(Space(f.space))
			f.out(Pulse(f.pulse))
			f.armed = false
			f.pulse = 0
		}
		return
	}
	if !r.IsPulse() {
		d := r.Duration()
		switch {
		case !f.armed:
			if d > longGapMin {
				f.space = d
				f.armed = true
				return
			}
		case d > longGapMin:
			// consecutive long gap: fold the swallowed
			// pulses and the new gap into the held one
			f.space += f.pulse
			if f.space > uint32(PulseMask) {
				f.space = uint32(PulseMask)
			}
			f.space += d
			if f.space > uint32(PulseMask) {
				f.space = uint32(PulseMask)
			}
			f.pulse = 0
			return
		default:
			f.out(Space(f.space))
			f.out(Pulse(f.pulse))
			f.armed = false
			f.pulse = 0
		}
	}
	f.out(r)
}
