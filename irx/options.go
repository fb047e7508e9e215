// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

// Option configures a Device.
type Option func(*config)

type config struct {
	in      int // receive line, -1 when receive-less
	out     []int
	sense   Polarity
	soft    bool // software carrier generation
	invert  bool // drive outputs active-low
	rbufLen int
	txMask  uint32
	freq    uint32
	duty    uint32
}

func newConfig() config {
	return config{
		in:      -1,
		sense:   SenseAuto,
		soft:    true,
		rbufLen: rbufLen,
		txMask:  0xFFFFFFFF,
		freq:    38000,
		duty:    50,
	}
}

// WithInputLine selects the receive line. Without it the device is
// transmit-only.
func WithInputLine(line int) Option {
	return func(cfg *config) { cfg.in = line }
}

// WithOutputLines selects the transmit lines, in transmitter order.
// Without it the device is receive-only.
func WithOutputLines(lines ...int) Option {
	return func(cfg *config) { cfg.out = lines }
}

// WithSense fixes the receive line polarity instead of autodetecting
// it at Open.
func WithSense(p Polarity) Option {
	return func(cfg *config) { cfg.sense = p }
}

// WithSoftCarrier enables or disables software carrier generation on
// transmit. It is enabled by default.
func WithSoftCarrier(on bool) Option {
	return func(cfg *config) { cfg.soft = on }
}

// WithInvert drives the transmit lines active-low.
func WithInvert(on bool) Option {
	return func(cfg *config) { cfg.invert = on }
}

// WithBufferLen sets the receive ring buffer capacity.
func WithBufferLen(n int) Option {
	return func(cfg *config) { cfg.rbufLen = n }
}

// WithTxMask sets the initial transmitter enable mask.
func WithTxMask(mask uint32) Option {
	return func(cfg *config) { cfg.txMask = mask }
}

// WithCarrier sets the initial carrier frequency in Hz.
func WithCarrier(freq uint32) Option {
	return func(cfg *config) { cfg.freq = freq }
}

// WithDutyCycle sets the initial carrier duty cycle in percent.
func WithDutyCycle(duty uint32) Option {
	return func(cfg *config) { cfg.duty = duty }
}
