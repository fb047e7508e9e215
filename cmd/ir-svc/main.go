// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ir-svc exposes an infrared transceiver over TCP.
package main // import "github.com/go-lirc/tegra/cmd/ir-svc"

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/go-lirc/tegra/gpiodev"
	"github.com/go-lirc/tegra/internal/uclock"
	"github.com/go-lirc/tegra/irx"
)

func main() {
	var (
		addr   = flag.String("addr", ":9999", "ir-svc [addr]:port")
		chip   = flag.String("chip", "gpiochip0", "GPIO chip")
		in     = flag.Int("in", -1, "receive GPIO line")
		out    = flag.String("out", "", "comma-separated transmit GPIO lines")
		sense  = flag.String("sense", "auto", "receive polarity (auto, low, high)")
		soft   = flag.Bool("soft-carrier", true, "generate the carrier in software")
		invert = flag.Bool("invert", false, "drive transmit lines active-low")
		freq   = flag.Uint("freq", 38000, "carrier frequency (Hz)")
		duty   = flag.Uint("duty", 50, "carrier duty cycle (%)")
	)

	log.SetPrefix("ir-svc: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(*addr, *chip, *in, *out, *sense, *soft, *invert, uint32(*freq), uint32(*duty))
	if err != nil {
		log.Fatalf("could not run ir-svc: %+v", err)
	}
}

func run(addr, chip string, in int, out, sense string, soft, invert bool, freq, duty uint32) error {
	opts, err := options(in, out, sense, soft, invert, freq, duty)
	if err != nil {
		return err
	}

	dev, err := gpiodev.Open(chip)
	if err != nil {
		return fmt.Errorf("could not open GPIO chip %q: %w", chip, err)
	}
	defer dev.Close()

	return irx.Serve(addr, dev, dev, uclock.System(), opts...)
}

func options(in int, out, sense string, soft, invert bool, freq, duty uint32) ([]irx.Option, error) {
	opts := []irx.Option{
		irx.WithSoftCarrier(soft),
		irx.WithInvert(invert),
		irx.WithCarrier(freq),
		irx.WithDutyCycle(duty),
	}

	if in >= 0 {
		opts = append(opts, irx.WithInputLine(in))
	}

	if out != "" {
		var lines []int
		for _, v := range strings.Split(out, ",") {
			line, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("could not parse transmit line %q: %w", v, err)
			}
			lines = append(lines, line)
		}
		opts = append(opts, irx.WithOutputLines(lines...))
	}

	switch sense {
	case "auto":
		opts = append(opts, irx.WithSense(irx.SenseAuto))
	case "low":
		opts = append(opts, irx.WithSense(irx.ActiveLow))
	case "high":
		opts = append(opts, irx.WithSense(irx.ActiveHigh))
	default:
		return nil, fmt.Errorf("invalid sense value %q", sense)
	}

	return opts, nil
}
