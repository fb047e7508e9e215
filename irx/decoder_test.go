// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"context"
	"testing"
	"time"
)

func testDevice(t *testing.T, rig *fakeRig, opts ...Option) *Device {
	t.Helper()
	dev, err := New(rig, rig, rig.clk, opts...)
	if err != nil {
		t.Fatalf("could not create device: %+v", err)
	}
	err = dev.Open()
	if err != nil {
		t.Fatalf("could not open device: %+v", err)
	}
	t.Cleanup(func() {
		err := dev.Close()
		if err != nil {
			t.Fatalf("could not close device: %+v", err)
		}
	})
	return dev
}

func readAll(t *testing.T, dev *Device, n int) []Record {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := make([]Record, n)
	for i := range out {
		rec, err := dev.Read(ctx)
		if err != nil {
			t.Fatalf("could not read record %d: %+v", i, err)
		}
		out[i] = rec
	}
	return out
}

func TestDecodeEdges(t *testing.T) {
	rig := newFakeRig()
	dev := testDevice(t, rig, WithInputLine(4), WithSense(ActiveLow))

	// 30ms of idle line, then a 900µs burst.
	rig.edge(4, false, 30000)
	rig.edge(4, true, 30900)
	rig.edge(4, false, 31500)

	got := readAll(t, dev, 3)
	want := []Record{Space(30000), Pulse(900), Space(600)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("invalid record %d: got=%v, want=%v", i, got[i], want[i])
		}
	}
}

func TestDecodeClockJump(t *testing.T) {
	rig := newFakeRig()
	dev := testDevice(t, rig, WithInputLine(4), WithSense(ActiveLow))

	rig.edge(4, true, 31500)

	// the clock jumps backwards: the interval is unusable and
	// reported saturated. decoding restarts from the new origin.
	rig.edge(4, false, 20000)
	rig.edge(4, true, 20400)
	rig.edge(4, false, 21000)

	got := readAll(t, dev, 4)
	want := []Record{
		Pulse(31500),
		Space(uint32(PulseMask)),
		Pulse(400),
		Space(600),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("invalid record %d: got=%v, want=%v", i, got[i], want[i])
		}
	}
}

func TestDecodeIdleFlipsSense(t *testing.T) {
	rig := newFakeRig()
	dev := testDevice(t, rig, WithInputLine(4), WithSense(ActiveHigh))

	// an active-high receiver idles low. after 16s of idle the
	// line "leaves" idle towards... low: the polarity was wrong.
	rig.edge(4, false, 16000000)
	if got, want := dev.Polarity(), ActiveLow; got != want {
		t.Fatalf("invalid polarity: got=%v, want=%v", got, want)
	}

	// decoding carries on with the fixed polarity.
	rig.edge(4, true, 16000400)
	rig.edge(4, false, 16001000)

	got := readAll(t, dev, 3)
	want := []Record{
		Space(uint32(PulseMask)),
		Pulse(400),
		Space(600),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("invalid record %d: got=%v, want=%v", i, got[i], want[i])
		}
	}
}

func TestDecodeOverflow(t *testing.T) {
	rig := newFakeRig()
	dev := testDevice(t, rig,
		WithInputLine(4), WithSense(ActiveLow),
		WithBufferLen(4),
	)

	now := uint64(0)
	level := true
	for i := 0; i < 6; i++ {
		now += 500
		rig.edge(4, level, now)
		level = !level
	}

	if !dev.Overflow() {
		t.Fatalf("overflow not reported")
	}
	if dev.Overflow() {
		t.Fatalf("overflow not cleared")
	}

	got := readAll(t, dev, 4)
	for i, rec := range got {
		if rec.Duration() != 500 {
			t.Fatalf("invalid record %d: got=%v", i, rec)
		}
	}
}
