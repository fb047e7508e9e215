// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mode2 describes and handles pulse/space duration streams in
// the LIRC mode2 wire format: little-endian 32-bit words, where bit 24
// tags a pulse and the low 24 bits carry the duration in microseconds,
// saturated at PulseMask.
package mode2 // import "github.com/go-lirc/tegra/internal/mode2"

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	PulseBit  uint32 = 0x01000000 // pulse marker
	PulseMask uint32 = 0x00FFFFFF // duration mask (us)

	WordSize = 4
)

// Pulse returns the mode2 word for a pulse of d microseconds.
func Pulse(d uint32) uint32 {
	if d > PulseMask {
		d = PulseMask
	}
	return d | PulseBit
}

// Space returns the mode2 word for a space of d microseconds.
func Space(d uint32) uint32 {
	if d > PulseMask {
		d = PulseMask
	}
	return d
}

// IsPulse reports whether the mode2 word w encodes a pulse.
func IsPulse(w uint32) bool { return w&PulseBit != 0 }

// Duration returns the duration of the mode2 word w, in microseconds.
func Duration(w uint32) uint32 { return w & PulseMask }

// Write writes the mode2 words ws to w.
func Write(w io.Writer, ws []uint32) error {
	var buf [WordSize]byte
	for _, v := range ws {
		binary.LittleEndian.PutUint32(buf[:], v)
		_, err := w.Write(buf[:])
		if err != nil {
			return fmt.Errorf("mode2: could not write word 0x%08x: %w", v, err)
		}
	}
	return nil
}

// Read reads one mode2 word from r.
func Read(r io.Reader) (uint32, error) {
	var buf [WordSize]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// DecodeSend decodes a transmit request: a packed array of u32-LE
// durations in microseconds, alternating pulse/space.
// The durations carry no pulse tag: position defines the kind.
func DecodeSend(p []byte) ([]uint32, error) {
	if len(p) == 0 || len(p)%WordSize != 0 {
		return nil, fmt.Errorf("mode2: invalid send buffer length %d", len(p))
	}
	vs := make([]uint32, len(p)/WordSize)
	for i := range vs {
		vs[i] = binary.LittleEndian.Uint32(p[WordSize*i:])
	}
	return vs, nil
}

// ParseText parses the textual form of a duration sequence: one
// "pulse N" or "space N" per line, blank lines and '#' comments
// ignored. It returns plain microsecond durations in file order.
func ParseText(r io.Reader) ([]uint32, error) {
	var (
		scan = bufio.NewScanner(r)
		line int
		vs   []uint32
	)
	for scan.Scan() {
		line++
		txt := strings.TrimSpace(scan.Text())
		if txt == "" || strings.HasPrefix(txt, "#") {
			continue
		}
		toks := strings.Fields(txt)
		if len(toks) != 2 {
			return nil, fmt.Errorf("mode2: invalid line %d: %q", line, txt)
		}
		switch toks[0] {
		case "pulse", "space":
			// ok.
		default:
			return nil, fmt.Errorf("mode2: invalid kind %q (line:%d)", toks[0], line)
		}
		v, err := strconv.ParseUint(toks[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("mode2: could not parse duration %q (line:%d): %w", toks[1], line, err)
		}
		want := "pulse"
		if len(vs)%2 == 1 {
			want = "space"
		}
		if toks[0] != want {
			return nil, fmt.Errorf("mode2: line %d: got %q, want %q", line, toks[0], want)
		}
		vs = append(vs, uint32(v))
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("mode2: could not scan input: %w", err)
	}
	return vs, nil
}

// ScanText parses the textual form of a capture: one "pulse N" or
// "space N" per line in any order, blank lines and '#' comments
// ignored. It returns tagged mode2 words.
func ScanText(r io.Reader) ([]uint32, error) {
	var (
		scan = bufio.NewScanner(r)
		line int
		ws   []uint32
	)
	for scan.Scan() {
		line++
		txt := strings.TrimSpace(scan.Text())
		if txt == "" || strings.HasPrefix(txt, "#") {
			continue
		}
		toks := strings.Fields(txt)
		if len(toks) != 2 {
			return nil, fmt.Errorf("mode2: invalid line %d: %q", line, txt)
		}
		v, err := strconv.ParseUint(toks[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("mode2: could not parse duration %q (line:%d): %w", toks[1], line, err)
		}
		switch toks[0] {
		case "pulse":
			ws = append(ws, Pulse(uint32(v)))
		case "space":
			ws = append(ws, Space(uint32(v)))
		default:
			return nil, fmt.Errorf("mode2: invalid kind %q (line:%d)", toks[0], line)
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("mode2: could not scan input: %w", err)
	}
	return ws, nil
}

// WriteText writes the mode2 words ws in textual form.
func WriteText(w io.Writer, ws []uint32) error {
	for _, v := range ws {
		kind := "space"
		if IsPulse(v) {
			kind = "pulse"
		}
		_, err := fmt.Fprintf(w, "%s %d\n", kind, Duration(v))
		if err != nil {
			return fmt.Errorf("mode2: could not write record: %w", err)
		}
	}
	return nil
}
