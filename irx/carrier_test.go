// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"testing"

	"pgregory.net/rapid"
)

func TestInitTiming(t *testing.T) {
	for _, tc := range []struct {
		name string
		duty uint32
		freq uint32
		want [3]uint32 // period, pulseW, spaceW (ns)
		err  string
	}{
		{
			name: "38kHz-50pc",
			duty: 50,
			freq: 38000,
			want: [3]uint32{26315, 13157, 13158},
		},
		{
			name: "36kHz-33pc",
			duty: 33,
			freq: 36000,
			want: [3]uint32{27777, 9166, 18611},
		},
		{
			name: "500kHz-50pc",
			duty: 50,
			freq: 500000,
			want: [3]uint32{2000, 1000, 1000},
		},
		{
			name: "500kHz-1pc",
			duty: 1,
			freq: 500000,
			err:  "irx: carrier 500000 Hz at 1% duty is below the transmitter latency",
		},
		{
			name: "500kHz-99pc",
			duty: 99,
			freq: 500000,
			err:  "irx: carrier 500000 Hz at 99% duty is below the transmitter latency",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rig := newFakeRig()
			dev, err := New(rig, rig, rig.clk, WithOutputLines(17))
			if err != nil {
				t.Fatalf("could not create device: %+v", err)
			}

			err = dev.initTiming(tc.duty, tc.freq)
			switch {
			case err != nil && tc.err == "":
				t.Fatalf("could not init timing: %+v", err)
			case err != nil:
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error:\ngot= %s\nwant=%s", got, want)
				}
				return
			case tc.err != "":
				t.Fatalf("expected an error (%s)", tc.err)
			}

			got := [3]uint32{dev.tx.period, dev.tx.pulseW, dev.tx.spaceW}
			if got != tc.want {
				t.Fatalf("invalid timing: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestCarrierTiming(t *testing.T) {
	rig := newFakeRig()
	dev, err := New(rig, rig, rig.clk, WithOutputLines(17))
	if err != nil {
		t.Fatalf("could not create device: %+v", err)
	}

	rapid.Check(t, func(t *rapid.T) {
		duty := rapid.Uint32Range(1, 99).Draw(t, "duty")
		freq := rapid.Uint32Range(20, maxCarrier).Draw(t, "freq")

		err := dev.initTiming(duty, freq)
		if err != nil {
			return
		}
		period := uint32(uint64(1000*1000000) / uint64(freq))
		if dev.tx.period != period {
			t.Fatalf("invalid period: got=%d, want=%d", dev.tx.period, period)
		}
		if dev.tx.pulseW+dev.tx.spaceW != period {
			t.Fatalf("half-widths do not cover the period: %d+%d != %d",
				dev.tx.pulseW, dev.tx.spaceW, period,
			)
		}
		if dev.tx.pulseW <= txLatency || dev.tx.spaceW <= txLatency {
			t.Fatalf("half-width below latency: pulse=%d space=%d", dev.tx.pulseW, dev.tx.spaceW)
		}
	})
}

func TestSetCarrier(t *testing.T) {
	rig := newFakeRig()
	dev, err := New(rig, rig, rig.clk, WithOutputLines(17))
	if err != nil {
		t.Fatalf("could not create device: %+v", err)
	}

	if got, want := dev.Carrier(), uint32(38000); got != want {
		t.Fatalf("invalid default carrier: got=%d, want=%d", got, want)
	}
	if got, want := dev.DutyCycle(), uint32(50); got != want {
		t.Fatalf("invalid default duty cycle: got=%d, want=%d", got, want)
	}

	if err := dev.SetCarrier(40000); err != nil {
		t.Fatalf("could not set carrier: %+v", err)
	}
	if got, want := dev.Carrier(), uint32(40000); got != want {
		t.Fatalf("invalid carrier: got=%d, want=%d", got, want)
	}

	if err := dev.SetCarrier(maxCarrier + 1); err == nil {
		t.Fatalf("expected an out-of-range error")
	}

	if err := dev.SetCarrier(0); err != nil {
		t.Fatalf("could not disable carrier: %+v", err)
	}
	if got, want := dev.Carrier(), uint32(0); got != want {
		t.Fatalf("invalid carrier: got=%d, want=%d", got, want)
	}

	// with the carrier off, any duty cycle in range is accepted.
	if err := dev.SetDutyCycle(1); err != nil {
		t.Fatalf("could not set duty cycle: %+v", err)
	}
	for _, duty := range []uint32{0, 101} {
		if err := dev.SetDutyCycle(duty); err == nil {
			t.Fatalf("expected an out-of-range error for duty=%d", duty)
		}
	}

	// re-enabling the carrier revalidates the pair.
	if err := dev.SetCarrier(maxCarrier); err == nil {
		t.Fatalf("expected a below-latency error for freq=%d, duty=%d", maxCarrier, uint32(1))
	}
}
