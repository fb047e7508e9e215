// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pcf8574 drives infrared transmit lines through a PCF8574
// I2C port expander. The expander has no edge events, so it only
// suits slow unmodulated transmitters (blasters with a hardware
// carrier): it implements irx.Lines but not irx.Intr.
package pcf8574 // import "github.com/go-lirc/tegra/pcf8574"

import (
	"fmt"
	"sync"

	"github.com/go-daq/smbus"

	"github.com/go-lirc/tegra/irx"
)

// nlines is the width of the expander port.
const nlines = 8

// Device is a PCF8574 expander on an I2C bus.
type Device struct {
	conn *smbus.Conn
	addr uint8

	mu   sync.Mutex
	port uint8 // last written port state
}

// Open connects to the expander at addr on the given I2C bus number.
func Open(bus int, addr uint8) (*Device, error) {
	conn, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("pcf8574: could not open i2c-%d (addr=0x%x): %w", bus, addr, err)
	}

	dev := &Device{
		conn: conn,
		addr: addr,
		port: 0xFF, // power-on state: all lines high
	}
	// park every line low.
	if err := dev.flush(0x00); err != nil {
		conn.Close()
		return nil, err
	}
	return dev, nil
}

// Close parks the port and releases the bus.
func (dev *Device) Close() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if err := dev.flush(0x00); err != nil {
		dev.conn.Close()
		return err
	}
	if err := dev.conn.Close(); err != nil {
		return fmt.Errorf("pcf8574: could not close i2c connection: %w", err)
	}
	return nil
}

// Get reads back the given line from the port register.
func (dev *Device) Get(line int) (bool, error) {
	if line < 0 || line >= nlines {
		return false, fmt.Errorf("pcf8574: invalid line %d", line)
	}
	var buf [1]byte
	if _, err := dev.conn.Read(buf[:]); err != nil {
		return false, fmt.Errorf("pcf8574: could not read port: %w", err)
	}
	return buf[0]&(1<<uint(line)) != 0, nil
}

// Set drives the given line.
func (dev *Device) Set(line int, level bool) error {
	if line < 0 || line >= nlines {
		return fmt.Errorf("pcf8574: invalid line %d", line)
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()

	port := dev.port
	if level {
		port |= 1 << uint(line)
	} else {
		port &^= 1 << uint(line)
	}
	if port == dev.port {
		return nil
	}
	return dev.flush(port)
}

// IntrID always fails: the expander delivers no edge events.
func (dev *Device) IntrID(line int) (int, error) {
	return 0, fmt.Errorf("pcf8574: line %d has no edge events", line)
}

// flush writes the port state. Callers hold dev.mu (or are the only
// ones with access to dev).
func (dev *Device) flush(port uint8) error {
	if _, err := dev.conn.WriteByte(port); err != nil {
		return fmt.Errorf("pcf8574: could not write port: %w", err)
	}
	dev.port = port
	return nil
}

var _ irx.Lines = (*Device)(nil)
