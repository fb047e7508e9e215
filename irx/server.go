// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-lirc/tegra/internal/mode2"
)

// server exposes a transceiver device over a TCP control link.
type server struct {
	ctl net.Listener

	msg   *log.Logger
	lines Lines
	intr  Intr
	clk   Clock

	newDevice func(lines Lines, intr Intr, clk Clock, opts ...Option) (*Device, error)

	opts []Option
	dev  *Device
}

// Serve runs a transceiver control server on the given TCP address.
// A device is created and opened for each client connection and
// closed when the client goes away.
func Serve(addr string, lines Lines, intr Intr, clk Clock, opts ...Option) error {
	srv, err := newServer(addr, lines, intr, clk, opts...)
	if err != nil {
		return fmt.Errorf("could not create ir server: %w", err)
	}
	return srv.serve()
}

func newServer(addr string, lines Lines, intr Intr, clk Clock, opts ...Option) (*server, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not create ir-ctl server on %q: %w", addr, err)
	}

	srv := &server{
		ctl: ctl,

		msg: log.New(os.Stdout, "ir-svc: ", 0),

		lines: lines,
		intr:  intr,
		clk:   clk,

		newDevice: New,

		opts: opts,
	}
	return srv, nil
}

func (srv *server) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("could not accept connection: %w", err)
		}

		err = srv.handle(conn)
		if err != nil {
			srv.msg.Printf("could not run IR device: %+v", err)
			continue
		}
	}
}

func (srv *server) handle(conn net.Conn) error {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

	srv.dev = nil
	dev, err := srv.newDevice(srv.lines, srv.intr, srv.clk, srv.opts...)
	if err != nil {
		return fmt.Errorf("could not create IR device: %w", err)
	}
	err = dev.Open()
	if err != nil {
		return fmt.Errorf("could not open IR device: %w", err)
	}
	defer dev.Close()
	srv.dev = dev

loop:
	for {
		var req struct {
			Name string           `json:"name"`
			Args *json.RawMessage `json:"args"`
		}

		err = json.NewDecoder(conn).Decode(&req)
		if err != nil {
			srv.msg.Printf("could not decode command request: %+v", err)
			srv.reply(conn, "", err)
			if errors.Is(err, io.EOF) {
				break loop
			}
			continue
		}
		srv.msg.Printf("received request: name=%q", req.Name)

		switch strings.ToLower(req.Name) {
		case "features":
			srv.reply(conn, fmt.Sprintf("0x%08x", uint32(dev.Features())), nil)

		case "polarity":
			srv.reply(conn, dev.Polarity().String(), nil)

		case "overflow":
			srv.reply(conn, strconv.FormatBool(dev.Overflow()), nil)

		case "carrier":
			args, err := srv.args(conn, req.Name, req.Args)
			if err != nil {
				continue
			}
			if len(args) == 0 {
				srv.reply(conn, strconv.FormatUint(uint64(dev.Carrier()), 10), nil)
				continue
			}
			freq, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				srv.msg.Printf("could not decode carrier frequency (args=%v): %+v", args, err)
				srv.reply(conn, "", err)
				continue
			}
			err = dev.SetCarrier(uint32(freq))
			srv.reply(conn, "", err)
			if err != nil {
				srv.msg.Printf("could not set carrier: %+v", err)
				continue
			}

		case "duty-cycle":
			args, err := srv.args(conn, req.Name, req.Args)
			if err != nil {
				continue
			}
			if len(args) == 0 {
				srv.reply(conn, strconv.FormatUint(uint64(dev.DutyCycle()), 10), nil)
				continue
			}
			duty, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				srv.msg.Printf("could not decode duty cycle (args=%v): %+v", args, err)
				srv.reply(conn, "", err)
				continue
			}
			err = dev.SetDutyCycle(uint32(duty))
			srv.reply(conn, "", err)
			if err != nil {
				srv.msg.Printf("could not set duty cycle: %+v", err)
				continue
			}

		case "tx-mask":
			args, err := srv.args(conn, req.Name, req.Args)
			if err != nil {
				continue
			}
			if len(args) == 0 {
				srv.reply(conn, fmt.Sprintf("0x%x", dev.TxMask()), nil)
				continue
			}
			mask, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				srv.msg.Printf("could not decode transmitter mask (args=%v): %+v", args, err)
				srv.reply(conn, "", err)
				continue
			}
			n, err := dev.SetTxMask(uint32(mask))
			srv.reply(conn, strconv.Itoa(n), err)
			if err != nil {
				srv.msg.Printf("could not set transmitter mask: %+v", err)
				continue
			}

		case "send":
			if req.Args == nil {
				srv.msg.Printf("missing %q payload", req.Name)
				srv.reply(conn, "", fmt.Errorf("missing durations for send"))
				continue
			}
			var args []uint32
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, "", err)
				continue
			}
			err = dev.Transmit(args)
			srv.reply(conn, "", err)
			if err != nil {
				srv.msg.Printf("could not transmit: %+v", err)
				continue
			}

		case "stream":
			args, err := srv.args(conn, req.Name, req.Args)
			if err != nil {
				continue
			}
			if len(args) == 0 {
				srv.reply(conn, "", fmt.Errorf("missing record count for stream"))
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				srv.msg.Printf("could not decode record count (args=%v): %+v", args, err)
				srv.reply(conn, "", err)
				continue
			}
			srv.reply(conn, "", nil)
			err = srv.stream(conn, dev, n)
			if err != nil {
				srv.msg.Printf("could not stream records: %+v", err)
				return fmt.Errorf("could not stream records: %w", err)
			}

		case "stop":
			srv.reply(conn, "", nil)
			break loop

		default:
			srv.msg.Printf("unknown command name=%q", req.Name)
			err = fmt.Errorf("unknown command %q", req.Name)
			srv.reply(conn, "", err)
			continue
		}
	}

	return nil
}

// stream copies n decoded records to the client, as mode2 words.
func (srv *server) stream(conn net.Conn, dev *Device, n int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < n; i++ {
		rec, err := dev.Read(ctx)
		if err != nil {
			return fmt.Errorf("could not read record: %w", err)
		}
		err = mode2.Write(conn, []uint32{uint32(rec)})
		if err != nil {
			return fmt.Errorf("could not write record: %w", err)
		}
	}
	return nil
}

func (srv *server) args(conn net.Conn, name string, raw *json.RawMessage) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	var args []string
	err := json.Unmarshal(*raw, &args)
	if err != nil {
		srv.msg.Printf("could not decode %q payload: %+v", name, err)
		srv.reply(conn, "", err)
		return nil, err
	}
	return args, nil
}

func (srv *server) reply(conn net.Conn, msg string, err error) {
	rep := struct {
		Msg string `json:"msg"`
	}{"ok"}
	switch {
	case err != nil:
		rep.Msg = fmt.Sprintf("%+v", err)
	case msg != "":
		rep.Msg = msg
	}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) close() {
	_ = srv.ctl.Close()
}
