// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"encoding/json"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/go-lirc/tegra/internal/mode2"
)

func TestServer(t *testing.T) {
	rig := newFakeRig()
	srv, err := newServer("127.0.0.1:0", rig, rig, rig.clk,
		WithInputLine(4), WithSense(ActiveLow),
		WithOutputLines(17),
	)
	if err != nil {
		t.Fatalf("could not create server: %+v", err)
	}
	go srv.serve()

	conn, err := net.Dial("tcp", srv.ctl.Addr().String())
	if err != nil {
		t.Fatalf("could not dial server: %+v", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)

	send := func(name string, args interface{}) string {
		t.Helper()
		req := map[string]interface{}{"name": name}
		if args != nil {
			req["args"] = args
		}
		if err := enc.Encode(req); err != nil {
			t.Fatalf("could not send %q: %+v", name, err)
		}
		var rep struct {
			Msg string `json:"msg"`
		}
		if err := dec.Decode(&rep); err != nil {
			t.Fatalf("could not read %q reply: %+v", name, err)
		}
		return rep.Msg
	}

	for _, tc := range []struct {
		name string
		args interface{}
		want string
	}{
		{"features", nil, "0x00040302"},
		{"polarity", nil, "active-low"},
		{"overflow", nil, "false"},
		{"carrier", nil, "38000"},
		{"carrier", []string{"40000"}, "ok"},
		{"carrier", nil, "40000"},
		{"duty-cycle", nil, "50"},
		{"duty-cycle", []string{"120"}, "irx: duty cycle 120% out of range"},
		{"tx-mask", nil, "0x1"},
		{"tx-mask", []string{"0x1"}, "1"},
		{"send", []uint32{100, 50}, "ok"},
		{"bogus", nil, `unknown command "bogus"`},
	} {
		if got := send(tc.name, tc.args); got != tc.want {
			t.Fatalf("invalid %q reply: got=%q, want=%q", tc.name, got, tc.want)
		}
	}

	if got := rig.transitions(); len(got) == 0 {
		t.Fatalf("send command did not drive the transmit line")
	}

	// feed two edges and stream them back as mode2 words. the
	// first interval spans from the device opening (t=0) to the
	// first edge.
	now := rig.clk.Now()
	rig.edge(4, false, now+500)
	rig.edge(4, true, now+1200)

	if got := send("stream", []string{"2"}); got != "ok" {
		t.Fatalf("invalid stream reply: %q", got)
	}
	raw := io.MultiReader(dec.Buffered(), conn)
	want := []uint32{
		uint32(Space(uint32(now + 500))),
		uint32(Pulse(700)),
	}
	for i, w := range want {
		got, err := mode2.Read(raw)
		if err != nil {
			t.Fatalf("could not read streamed word %d: %+v", i, err)
		}
		if got != w {
			t.Fatalf("invalid streamed word %d: got=0x%08x, want=0x%08x", i, got, w)
		}
	}

	var rep struct {
		Msg string `json:"msg"`
	}
	if err := enc.Encode(map[string]interface{}{"name": "stop"}); err != nil {
		t.Fatalf("could not send stop: %+v", err)
	}
	if err := json.NewDecoder(raw).Decode(&rep); err != nil {
		t.Fatalf("could not read stop reply: %+v", err)
	}
	if rep.Msg != "ok" {
		t.Fatalf("invalid stop reply: %q", rep.Msg)
	}
}

func TestServerInvalidPayload(t *testing.T) {
	rig := newFakeRig()
	srv, err := newServer("127.0.0.1:0", rig, rig, rig.clk,
		WithOutputLines(17),
	)
	if err != nil {
		t.Fatalf("could not create server: %+v", err)
	}
	go srv.serve()

	conn, err := net.Dial("tcp", srv.ctl.Addr().String())
	if err != nil {
		t.Fatalf("could not dial server: %+v", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)

	for _, tc := range []struct {
		req  map[string]interface{}
		want string
	}{
		{
			req:  map[string]interface{}{"name": "carrier", "args": []string{"not-a-number"}},
			want: "invalid syntax",
		},
		{
			req:  map[string]interface{}{"name": "send", "args": []uint32{100, 50, 10}},
			want: "irx: invalid transmit sequence length 3",
		},
		{
			req:  map[string]interface{}{"name": "send"},
			want: "missing durations for send",
		},
		{
			req:  map[string]interface{}{"name": "stream"},
			want: "missing record count for stream",
		},
	} {
		if err := enc.Encode(tc.req); err != nil {
			t.Fatalf("could not send request: %+v", err)
		}
		var rep struct {
			Msg string `json:"msg"`
		}
		if err := dec.Decode(&rep); err != nil {
			t.Fatalf("could not read reply: %+v", err)
		}
		if !strings.Contains(rep.Msg, tc.want) {
			t.Fatalf("invalid reply: got=%q, want substring %q", rep.Msg, tc.want)
		}
	}
}
