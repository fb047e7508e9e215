// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"reflect"
	"testing"
)

func TestNoiseFilter(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   []Record
		want []Record
	}{
		{
			name: "passthrough",
			in:   []Record{Pulse(500), Space(400), Pulse(600)},
			want: []Record{Pulse(500), Space(400), Pulse(600)},
		},
		{
			name: "short-space-passthrough",
			in:   []Record{Space(100)},
			want: []Record{Space(100)},
		},
		{
			name: "gap-release-on-short-space",
			in:   []Record{Space(25000), Pulse(100), Space(1000)},
			want: []Record{Space(25000), Pulse(100), Space(1000)},
		},
		{
			name: "gap-release-on-big-pulse",
			in:   []Record{Space(25000), Pulse(30000)},
			want: []Record{Space(25000), Pulse(30000)},
		},
		{
			name: "agc-noise-swallowed",
			in: []Record{
				Space(25000),
				Pulse(100),   // AGC artifact
				Space(30000), // still idle: artifact folds into the gap
				Pulse(300),
			},
			want: []Record{Space(55100), Pulse(300)},
		},
		{
			name: "gap-held-until-flush",
			in:   []Record{Space(25000), Pulse(100)},
			want: nil,
		},
		{
			name: "merged-gap-saturates",
			in: []Record{
				Space(uint32(PulseMask)),
				Pulse(100),
				Space(30000),
				Pulse(400),
			},
			want: []Record{Space(uint32(PulseMask)), Pulse(400)},
		},
		{
			name: "empty-pulse-on-release",
			in:   []Record{Space(25000), Space(500)},
			want: []Record{Space(25000), Pulse(0), Space(500)},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got []Record
			flt := &noiseFilter{out: func(r Record) { got = append(got, r) }}
			for _, r := range tc.in {
				flt.write(r)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid filter output:\ngot= %v\nwant=%v", got, tc.want)
			}
		})
	}
}
