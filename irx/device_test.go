// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"strings"
	"testing"
)

func TestNewInvalidConfig(t *testing.T) {
	rig := newFakeRig()
	for _, tc := range []struct {
		name string
		opts []Option
		want string
	}{
		{
			name: "no-lines",
			opts: nil,
			want: "irx: no receive nor transmit line configured",
		},
		{
			name: "too-many-transmitters",
			opts: []Option{WithOutputLines(0, 1, 2, 3, 4, 5, 6, 7, 8)},
			want: "irx: too many transmit lines (got=9, max=8)",
		},
		{
			name: "tiny-buffer",
			opts: []Option{WithInputLine(4), WithBufferLen(1)},
			want: "irx: invalid receive buffer length 1",
		},
		{
			name: "bad-duty",
			opts: []Option{WithOutputLines(17), WithDutyCycle(0)},
			want: "irx: duty cycle 0% out of range",
		},
		{
			name: "bad-carrier",
			opts: []Option{WithOutputLines(17), WithCarrier(600000)},
			want: "irx: carrier frequency 600000 Hz out of range (max=500000)",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(rig, rig, rig.clk, tc.opts...)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got, want := err.Error(), tc.want; got != want {
				t.Fatalf("invalid error:\ngot= %s\nwant=%s", got, want)
			}
		})
	}
}

func TestOpenRejectsBelowLatencyCarrier(t *testing.T) {
	rig := newFakeRig()
	dev, err := New(rig, rig, rig.clk,
		WithOutputLines(17),
		WithCarrier(500000), WithDutyCycle(1),
	)
	if err != nil {
		t.Fatalf("could not create device: %+v", err)
	}
	err = dev.Open()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(err.Error(), "below the transmitter latency") {
		t.Fatalf("invalid error: %+v", err)
	}
}

func TestFeatures(t *testing.T) {
	rig := newFakeRig()
	for _, tc := range []struct {
		name string
		opts []Option
		want Features
	}{
		{
			name: "receive-only",
			opts: []Option{WithInputLine(4), WithSoftCarrier(false)},
			want: CanRecMode2,
		},
		{
			name: "receive-only-soft-carrier",
			opts: []Option{WithInputLine(4)},
			want: CanRecMode2 | CanSetCarrier | CanSetDutyCycle,
		},
		{
			name: "single-transmitter",
			opts: []Option{WithOutputLines(17)},
			want: CanSendPulse | CanSetCarrier | CanSetDutyCycle,
		},
		{
			name: "multi-transmitter",
			opts: []Option{WithOutputLines(17, 27)},
			want: CanSendPulse | CanSetTxMask | CanSetCarrier | CanSetDutyCycle,
		},
		{
			name: "transmit-hard-carrier",
			opts: []Option{WithOutputLines(17), WithSoftCarrier(false)},
			want: CanSendPulse,
		},
		{
			name: "transceiver",
			opts: []Option{WithInputLine(4), WithOutputLines(17, 27)},
			want: CanRecMode2 | CanSendPulse | CanSetTxMask | CanSetCarrier | CanSetDutyCycle,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dev, err := New(rig, rig, rig.clk, tc.opts...)
			if err != nil {
				t.Fatalf("could not create device: %+v", err)
			}
			if got := dev.Features(); got != tc.want {
				t.Fatalf("invalid features: got=0x%08x, want=0x%08x", uint32(got), uint32(tc.want))
			}
		})
	}
}

func TestCloseUnregisters(t *testing.T) {
	rig := newFakeRig()
	dev, err := New(rig, rig, rig.clk, WithInputLine(4), WithSense(ActiveLow))
	if err != nil {
		t.Fatalf("could not create device: %+v", err)
	}
	if err := dev.Open(); err != nil {
		t.Fatalf("could not open device: %+v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("could not close device: %+v", err)
	}
	if len(rig.intrs) != 0 {
		t.Fatalf("edge handler still registered after close")
	}

	// reopening re-registers.
	if err := dev.Open(); err != nil {
		t.Fatalf("could not reopen device: %+v", err)
	}
	if len(rig.intrs) != 1 {
		t.Fatalf("edge handler not registered after reopen")
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("could not close device: %+v", err)
	}
}
