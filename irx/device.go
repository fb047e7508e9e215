// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Features describes what a Device can do, as a capability bitset.
type Features uint32

const (
	CanSendPulse    Features = 0x00000002
	CanSetCarrier   Features = 0x00000100
	CanSetDutyCycle Features = 0x00000200
	CanSetTxMask    Features = 0x00000400
	CanRecMode2     Features = 0x00040000
)

// Device is an infrared transceiver built from a set of GPIO lines,
// an interrupt subsystem and a monotonic clock.
type Device struct {
	msg   *log.Logger
	cfg   config
	lines Lines
	intr  Intr
	clk   Clock

	sense  atomic.Int32 // Polarity
	intrID int

	rx struct {
		last uint64 // timestamp of the previous edge, µs
	}
	flt  *noiseFilter
	rbuf *rbuf

	tx struct {
		mu     sync.Mutex
		mask   uint32
		freq   uint32 // Hz, 0 when unmodulated
		duty   uint32 // percent
		period uint32 // carrier period, ns
		pulseW uint32 // carrier active half-period, ns
		spaceW uint32 // carrier inactive half-period, ns
	}
}

// New creates an infrared transceiver device from the given
// collaborators. At least one of WithInputLine and WithOutputLines
// must be provided.
func New(lines Lines, intr Intr, clk Clock, opts ...Option) (*Device, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.in < 0 && len(cfg.out) == 0 {
		return nil, fmt.Errorf("irx: no receive nor transmit line configured")
	}
	if len(cfg.out) > maxTransmitters {
		return nil, fmt.Errorf("irx: too many transmit lines (got=%d, max=%d)", len(cfg.out), maxTransmitters)
	}
	if cfg.rbufLen < 2 {
		return nil, fmt.Errorf("irx: invalid receive buffer length %d", cfg.rbufLen)
	}
	if cfg.duty < 1 || cfg.duty > 100 {
		return nil, fmt.Errorf("irx: duty cycle %d%% out of range", cfg.duty)
	}
	if cfg.freq > maxCarrier {
		return nil, fmt.Errorf("irx: carrier frequency %d Hz out of range (max=%d)", cfg.freq, maxCarrier)
	}

	dev := &Device{
		msg:   log.New(os.Stdout, "irx: ", 0),
		cfg:   cfg,
		lines: lines,
		intr:  intr,
		clk:   clk,
		rbuf:  newRBuf(cfg.rbufLen),
	}
	dev.flt = &noiseFilter{out: func(r Record) { dev.rbuf.write(r) }}
	dev.sense.Store(int32(cfg.sense))
	dev.tx.mask = cfg.txMask
	dev.tx.freq = cfg.freq
	dev.tx.duty = cfg.duty
	return dev, nil
}

// Open readies the device: it parks the transmit lines, computes the
// carrier timing, autodetects the receive polarity when requested and
// starts edge capture.
func (d *Device) Open() error {
	if len(d.cfg.out) > 0 {
		d.tx.mu.Lock()
		if d.tx.freq > 0 {
			if err := d.initTiming(d.tx.duty, d.tx.freq); err != nil {
				d.tx.mu.Unlock()
				return err
			}
		}
		d.setTxLines(false)
		d.tx.mu.Unlock()
	}

	if d.cfg.in < 0 {
		return nil
	}

	if Polarity(d.sense.Load()) == SenseAuto {
		pol, err := calibrateSense(d.lines, d.cfg.in)
		if err != nil {
			return err
		}
		d.msg.Printf("autodetected %v receiver on line %d", pol, d.cfg.in)
		d.sense.Store(int32(pol))
	}

	id, err := d.lines.IntrID(d.cfg.in)
	if err != nil {
		return fmt.Errorf("irx: could not resolve interrupt for line %d: %w", d.cfg.in, err)
	}
	d.intrID = id
	d.rx.last = d.clk.Now()
	err = d.intr.Register(id, d.onEdge)
	if err != nil {
		return fmt.Errorf("irx: could not register edge handler: %w", err)
	}
	return nil
}

// Close stops edge capture and parks the transmit lines.
func (d *Device) Close() error {
	if d.cfg.in >= 0 {
		err := d.intr.Unregister(d.intrID)
		if err != nil {
			return fmt.Errorf("irx: could not unregister edge handler: %w", err)
		}
	}
	if len(d.cfg.out) > 0 {
		d.tx.mu.Lock()
		d.setTxLines(false)
		d.tx.mu.Unlock()
	}
	return nil
}

// Read returns the next decoded pulse or space, blocking until one is
// available or the context is done.
func (d *Device) Read(ctx context.Context) (Record, error) {
	return d.rbuf.read(ctx)
}

// Overflow reports whether the receive buffer dropped records since
// the last call, and clears the condition.
func (d *Device) Overflow() bool {
	return d.rbuf.overflow()
}

// Polarity returns the receive line polarity currently in effect.
func (d *Device) Polarity() Polarity {
	return Polarity(d.sense.Load())
}

// Features returns the capability set of the device.
func (d *Device) Features() Features {
	var fts Features
	if d.cfg.soft {
		fts |= CanSetCarrier | CanSetDutyCycle
	}
	if len(d.cfg.out) > 0 {
		fts |= CanSendPulse
	}
	if len(d.cfg.out) > 1 {
		fts |= CanSetTxMask
	}
	if d.cfg.in >= 0 {
		fts |= CanRecMode2
	}
	return fts
}
