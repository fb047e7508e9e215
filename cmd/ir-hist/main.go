// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ir-hist histograms the pulse and space durations of a
// mode2 capture file, as produced by ir-daq.
package main // import "github.com/go-lirc/tegra/cmd/ir-hist"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go-hep.org/x/hep/hbook"

	"github.com/go-lirc/tegra/internal/mode2"
)

func main() {
	var (
		oname = flag.String("o", "ir-hist.yoda", "output YODA file")
		raw   = flag.Bool("raw", false, "input holds raw mode2 words instead of text")
		nbins = flag.Int("bins", 100, "number of histogram bins")
		max   = flag.Float64("max", 20000, "histogram upper edge (µs)")
	)

	log.SetPrefix("ir-hist: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("missing input mode2 file")
	}

	err := run(flag.Arg(0), *oname, *raw, *nbins, *max)
	if err != nil {
		log.Fatalf("could not run ir-hist: %+v", err)
	}
}

func run(fname, oname string, raw bool, nbins int, max float64) error {
	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	ws, err := words(f, raw)
	if err != nil {
		return fmt.Errorf("could not read %q: %w", fname, err)
	}

	var (
		pulses = hbook.NewH1D(nbins, 0, max)
		spaces = hbook.NewH1D(nbins, 0, max)
	)
	pulses.Annotation()["name"] = "/ir/pulses"
	spaces.Annotation()["name"] = "/ir/spaces"

	for _, w := range ws {
		switch {
		case mode2.IsPulse(w):
			pulses.Fill(float64(mode2.Duration(w)), 1)
		default:
			spaces.Fill(float64(mode2.Duration(w)), 1)
		}
	}

	log.Printf("pulses: n=%d mean=%8.1fµs", int(pulses.Entries()), pulses.XMean())
	log.Printf("spaces: n=%d mean=%8.1fµs", int(spaces.Entries()), spaces.XMean())

	out, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", oname, err)
	}
	defer out.Close()

	for _, h := range []*hbook.H1D{pulses, spaces} {
		buf, err := h.MarshalYODA()
		if err != nil {
			return fmt.Errorf("could not marshal histogram: %w", err)
		}
		_, err = out.Write(buf)
		if err != nil {
			return fmt.Errorf("could not write %q: %w", oname, err)
		}
	}

	return out.Close()
}

// words decodes a capture file, textual ("pulse N"/"space N" lines)
// or raw u32-LE mode2 words.
func words(r io.Reader, raw bool) ([]uint32, error) {
	if !raw {
		return mode2.ScanText(r)
	}

	var ws []uint32
	for {
		w, err := mode2.Read(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ws, nil
			}
			return nil, err
		}
		ws = append(ws, w)
	}
}
