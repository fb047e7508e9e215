// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ir-daq captures decoded infrared pulses and spaces to a
// file, in textual or raw mode2 format.
package main // import "github.com/go-lirc/tegra/cmd/ir-daq"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-lirc/tegra/gpiodev"
	"github.com/go-lirc/tegra/internal/mode2"
	"github.com/go-lirc/tegra/internal/uclock"
	"github.com/go-lirc/tegra/irx"
)

func main() {
	var (
		chip  = flag.String("chip", "gpiochip0", "GPIO chip")
		in    = flag.Int("in", 18, "receive GPIO line")
		sense = flag.String("sense", "auto", "receive polarity (auto, low, high)")
		oname = flag.String("o", "", "output file (default: stdout)")
		raw   = flag.Bool("raw", false, "write raw mode2 words instead of text")
	)

	log.SetPrefix("ir-daq: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(*chip, *in, *sense, *oname, *raw)
	if err != nil {
		log.Fatalf("could not run ir-daq: %+v", err)
	}
}

func run(chip string, in int, sense, oname string, raw bool) error {
	pol, err := polarity(sense)
	if err != nil {
		return err
	}

	gpio, err := gpiodev.Open(chip)
	if err != nil {
		return fmt.Errorf("could not open GPIO chip %q: %w", chip, err)
	}
	defer gpio.Close()

	dev, err := irx.New(gpio, gpio, uclock.System(),
		irx.WithInputLine(in),
		irx.WithSense(pol),
	)
	if err != nil {
		return fmt.Errorf("could not create IR device: %w", err)
	}

	err = dev.Open()
	if err != nil {
		return fmt.Errorf("could not open IR device: %w", err)
	}
	defer dev.Close()

	out := os.Stdout
	if oname != "" {
		out, err = os.Create(oname)
		if err != nil {
			return fmt.Errorf("could not create output file %q: %w", oname, err)
		}
		defer out.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Printf("streaming records...")

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return capture(ctx, dev, out, raw)
	})
	grp.Go(func() error {
		tick := time.NewTicker(10 * time.Second)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-tick.C:
				if dev.Overflow() {
					log.Printf("receive buffer overflowed, records dropped")
				}
			}
		}
	})

	err = grp.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func capture(ctx context.Context, dev *irx.Device, out *os.File, raw bool) error {
	for {
		rec, err := dev.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("could not read record: %w", err)
		}
		switch {
		case raw:
			err = mode2.Write(out, []uint32{uint32(rec)})
		default:
			err = mode2.WriteText(out, []uint32{uint32(rec)})
		}
		if err != nil {
			return fmt.Errorf("could not write record: %w", err)
		}
	}
}

func polarity(sense string) (irx.Polarity, error) {
	switch sense {
	case "auto":
		return irx.SenseAuto, nil
	case "low":
		return irx.ActiveLow, nil
	case "high":
		return irx.ActiveHigh, nil
	}
	return irx.SenseAuto, fmt.Errorf("invalid sense value %q", sense)
}
