// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ir-send transmits an infrared signal, read from a mode2
// text file or from the signal database.
package main // import "github.com/go-lirc/tegra/cmd/ir-send"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-lirc/tegra/gpiodev"
	"github.com/go-lirc/tegra/internal/mode2"
	"github.com/go-lirc/tegra/internal/uclock"
	"github.com/go-lirc/tegra/irx"
	"github.com/go-lirc/tegra/pcf8574"
	"github.com/go-lirc/tegra/sigdb"
)

func main() {
	var (
		chip   = flag.String("chip", "gpiochip0", "GPIO chip")
		i2c    = flag.Int("i2c", -1, "I2C bus of a PCF8574 expander (instead of the GPIO chip)")
		i2cad  = flag.Uint("i2c-addr", 0x20, "I2C address of the PCF8574 expander")
		out    = flag.String("out", "17", "comma-separated transmit lines")
		soft   = flag.Bool("soft-carrier", true, "generate the carrier in software")
		invert = flag.Bool("invert", false, "drive transmit lines active-low")
		freq   = flag.Uint("freq", 38000, "carrier frequency (Hz)")
		duty   = flag.Uint("duty", 50, "carrier duty cycle (%)")
		mask   = flag.Uint("mask", 0xFFFFFFFF, "transmitter enable mask")
		fname  = flag.String("f", "", "mode2 text file to transmit")
		dbname = flag.String("db", "", "signal database name")
		signam = flag.String("sig", "", "signal name to fetch from the database")
		count  = flag.Int("n", 1, "number of times to send the signal")
	)

	log.SetPrefix("ir-send: ")
	log.SetFlags(0)

	flag.Parse()

	if *fname == "" && (*dbname == "" || *signam == "") {
		log.Fatalf("missing signal: give -f, or -db and -sig")
	}

	err := run(*chip, *i2c, uint8(*i2cad), *out, *soft, *invert,
		uint32(*freq), uint32(*duty), uint32(*mask),
		*fname, *dbname, *signam, *count,
	)
	if err != nil {
		log.Fatalf("could not run ir-send: %+v", err)
	}
}

func run(chip string, i2c int, i2cad uint8, out string, soft, invert bool, freq, duty, mask uint32, fname, dbname, signam string, count int) error {
	seq, freq, err := signal(fname, dbname, signam, freq)
	if err != nil {
		return err
	}

	var (
		lines irx.Lines
		done  func() error
	)
	switch {
	case i2c >= 0:
		dev, err := pcf8574.Open(i2c, i2cad)
		if err != nil {
			return fmt.Errorf("could not open expander: %w", err)
		}
		lines = dev
		done = dev.Close
	default:
		dev, err := gpiodev.Open(chip)
		if err != nil {
			return fmt.Errorf("could not open GPIO chip %q: %w", chip, err)
		}
		lines = dev
		done = dev.Close
	}
	defer done()

	var outs []int
	for _, v := range strings.Split(out, ",") {
		line, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("could not parse transmit line %q: %w", v, err)
		}
		outs = append(outs, line)
	}

	dev, err := irx.New(lines, nil, uclock.System(),
		irx.WithOutputLines(outs...),
		irx.WithSoftCarrier(soft),
		irx.WithInvert(invert),
		irx.WithCarrier(freq),
		irx.WithDutyCycle(duty),
		irx.WithTxMask(mask),
	)
	if err != nil {
		return fmt.Errorf("could not create IR device: %w", err)
	}

	err = dev.Open()
	if err != nil {
		return fmt.Errorf("could not open IR device: %w", err)
	}
	defer dev.Close()

	for i := 0; i < count; i++ {
		err = dev.Transmit(seq)
		if err != nil {
			return fmt.Errorf("could not transmit signal: %w", err)
		}
	}

	return nil
}

// signal resolves the duration sequence to send and the carrier to
// send it on. A carrier stored with the signal wins over the flag.
func signal(fname, dbname, name string, freq uint32) ([]uint32, uint32, error) {
	if fname != "" {
		f, err := os.Open(fname)
		if err != nil {
			return nil, freq, fmt.Errorf("could not open %q: %w", fname, err)
		}
		defer f.Close()

		seq, err := mode2.ParseText(f)
		if err != nil {
			return nil, freq, fmt.Errorf("could not parse %q: %w", fname, err)
		}
		return seq, freq, nil
	}

	db, err := sigdb.Open(dbname)
	if err != nil {
		return nil, freq, fmt.Errorf("could not open signal db: %w", err)
	}
	defer db.Close()

	sig, err := db.Signal(context.Background(), name)
	if err != nil {
		return nil, freq, fmt.Errorf("could not fetch signal %q: %w", name, err)
	}
	if sig.Carrier != 0 {
		freq = sig.Carrier
	}
	return sig.Seq, freq, nil
}
