// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpiodev drives infrared transceiver lines through the Linux
// GPIO character device.
package gpiodev // import "github.com/go-lirc/tegra/gpiodev"

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/go-lirc/tegra/irx"
)

// Device hands the lines of one GPIO chip to an irx.Device. It
// implements irx.Lines and irx.Intr.
type Device struct {
	chip string

	mu   sync.Mutex
	outs map[int]*gpiocdev.Line // lines requested as outputs
	evts map[int]*gpiocdev.Line // lines requested with edge events
}

// Open binds to the given GPIO chip, e.g. "gpiochip0".
func Open(chip string) (*Device, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("gpiodev: could not open chip %q: %w", chip, err)
	}
	defer c.Close()

	return &Device{
		chip: chip,
		outs: make(map[int]*gpiocdev.Line),
		evts: make(map[int]*gpiocdev.Line),
	}, nil
}

// Close releases every requested line.
func (dev *Device) Close() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	var first error
	for id, line := range dev.evts {
		if err := line.Close(); err != nil && first == nil {
			first = fmt.Errorf("gpiodev: could not release line %d: %w", id, err)
		}
		delete(dev.evts, id)
	}
	for id, line := range dev.outs {
		if err := line.Close(); err != nil && first == nil {
			first = fmt.Errorf("gpiodev: could not release line %d: %w", id, err)
		}
		delete(dev.outs, id)
	}
	return first
}

// Get samples the given line level. The line is requested as an input
// for the duration of the call, so Get must not be used on a line
// with a registered edge handler.
func (dev *Device) Get(line int) (bool, error) {
	l, err := gpiocdev.RequestLine(dev.chip, line, gpiocdev.AsInput)
	if err != nil {
		return false, fmt.Errorf("gpiodev: could not request input line %d: %w", line, err)
	}
	defer l.Close()

	v, err := l.Value()
	if err != nil {
		return false, fmt.Errorf("gpiodev: could not read line %d: %w", line, err)
	}
	return v != 0, nil
}

// Set drives the given line. The line is requested as an output on
// first use and kept until Close.
func (dev *Device) Set(line int, level bool) error {
	v := 0
	if level {
		v = 1
	}

	dev.mu.Lock()
	l, ok := dev.outs[line]
	if !ok {
		var err error
		l, err = gpiocdev.RequestLine(dev.chip, line, gpiocdev.AsOutput(v))
		if err != nil {
			dev.mu.Unlock()
			return fmt.Errorf("gpiodev: could not request output line %d: %w", line, err)
		}
		dev.outs[line] = l
		dev.mu.Unlock()
		return nil
	}
	dev.mu.Unlock()

	if err := l.SetValue(v); err != nil {
		return fmt.Errorf("gpiodev: could not drive line %d: %w", line, err)
	}
	return nil
}

// IntrID returns the interrupt identifier of the given line. For the
// character device the line offset is its own identifier.
func (dev *Device) IntrID(line int) (int, error) {
	return line, nil
}

// Register requests the line with both-edge event delivery. Event
// timestamps come from the kernel monotonic clock, taken in interrupt
// context, so scheduling jitter between the edge and the handler does
// not degrade the decoded durations.
func (dev *Device) Register(id int, h irx.EdgeHandler) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if _, dup := dev.evts[id]; dup {
		return fmt.Errorf("gpiodev: line %d already registered", id)
	}

	l, err := gpiocdev.RequestLine(dev.chip, id,
		gpiocdev.WithBothEdges,
		gpiocdev.WithMonotonicEventClock,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			level := evt.Type == gpiocdev.LineEventRisingEdge
			h(level, uint64(evt.Timestamp.Microseconds()))
		}),
	)
	if err != nil {
		return fmt.Errorf("gpiodev: could not request event line %d: %w", id, err)
	}
	dev.evts[id] = l
	return nil
}

// Unregister releases the event line.
func (dev *Device) Unregister(id int) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	l, ok := dev.evts[id]
	if !ok {
		return fmt.Errorf("gpiodev: line %d not registered", id)
	}
	delete(dev.evts, id)

	if err := l.Close(); err != nil {
		return fmt.Errorf("gpiodev: could not release line %d: %w", id, err)
	}
	return nil
}

var (
	_ irx.Lines = (*Device)(nil)
	_ irx.Intr  = (*Device)(nil)
)
