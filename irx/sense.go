// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"fmt"
	"time"
)

// Polarity describes how the receive line encodes infrared light.
type Polarity int32

const (
	// SenseAuto requests polarity autodetection at Open.
	SenseAuto Polarity = -1

	// ActiveHigh marks a receiver that drives the line high while
	// it sees light.
	ActiveHigh Polarity = 0

	// ActiveLow marks a receiver that drives the line low while it
	// sees light.
	ActiveLow Polarity = 1
)

func (p Polarity) String() string {
	switch p {
	case SenseAuto:
		return "auto"
	case ActiveHigh:
		return "active-high"
	case ActiveLow:
		return "active-low"
	}
	return fmt.Sprintf("Polarity(%d)", int32(p))
}

func (p Polarity) flip() Polarity {
	if p == ActiveLow {
		return ActiveHigh
	}
	return ActiveLow
}

const (
	senseSettle = 500 * time.Millisecond
	senseProbe  = 40 * time.Millisecond
	senseVotes  = 9
)

// senseSleep is a hook for tests.
var senseSleep = time.Sleep

// calibrateSense votes on the receive line polarity by sampling the
// line while it is idle. The line must be quiet during calibration:
// a remote pressed mid-probe skews the vote.
func calibrateSense(lines Lines, line int) (Polarity, error) {
	senseSleep(senseSettle)
	var nlow, nhigh int
	for i := 0; i < senseVotes; i++ {
		level, err := lines.Get(line)
		if err != nil {
			return SenseAuto, fmt.Errorf("irx: could not probe receive line %d: %w", line, err)
		}
		if level {
			nhigh++
		} else {
			nlow++
		}
		senseSleep(senseProbe)
	}
	if nlow >= nhigh {
		return ActiveLow, nil
	}
	return ActiveHigh, nil
}
