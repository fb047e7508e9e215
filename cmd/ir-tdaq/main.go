// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ir-tdaq exposes an infrared receiver as a TDAQ data source,
// publishing decoded mode2 words on the /mode2 end-point.
package main // import "github.com/go-lirc/tegra/cmd/ir-tdaq"

import (
	"bytes"
	"context"
	"log"
	"os"
	"strconv"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"

	"github.com/go-lirc/tegra/gpiodev"
	"github.com/go-lirc/tegra/internal/mode2"
	"github.com/go-lirc/tegra/internal/uclock"
	"github.com/go-lirc/tegra/irx"
)

func main() {
	cmd := flags.New()

	dev := xcvr{
		chip: "gpiochip0",
		line: 18,
	}
	if len(cmd.Args) > 0 {
		dev.chip = cmd.Args[0]
	}
	if len(cmd.Args) > 1 {
		line, err := strconv.Atoi(cmd.Args[1])
		if err != nil {
			log.Panicf("could not parse receive line %q: %+v", cmd.Args[1], err)
		}
		dev.line = line
	}

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/mode2", dev.mode2)

	srv.RunHandle(dev.run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

type xcvr struct {
	chip string
	line int

	gpio *gpiodev.Device
	dev  *irx.Device

	n    int
	data chan []byte
}

func (dev *xcvr) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return nil
}

func (dev *xcvr) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	err := dev.setup()
	if err != nil {
		return err
	}
	dev.data = make(chan []byte, 1024)
	dev.n = 0
	return nil
}

func (dev *xcvr) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	err := dev.teardown()
	if err != nil {
		return err
	}
	err = dev.setup()
	if err != nil {
		return err
	}
	dev.data = make(chan []byte, 1024)
	dev.n = 0
	return nil
}

func (dev *xcvr) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (dev *xcvr) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	n := dev.n
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	return nil
}

func (dev *xcvr) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return dev.teardown()
}

func (dev *xcvr) setup() error {
	gpio, err := gpiodev.Open(dev.chip)
	if err != nil {
		return err
	}
	irdev, err := irx.New(gpio, gpio, uclock.System(),
		irx.WithInputLine(dev.line),
	)
	if err != nil {
		gpio.Close()
		return err
	}
	err = irdev.Open()
	if err != nil {
		gpio.Close()
		return err
	}
	dev.gpio = gpio
	dev.dev = irdev
	return nil
}

func (dev *xcvr) teardown() error {
	if dev.dev == nil {
		return nil
	}
	err := dev.dev.Close()
	if err != nil {
		dev.gpio.Close()
		return err
	}
	err = dev.gpio.Close()
	dev.dev = nil
	dev.gpio = nil
	return err
}

func (dev *xcvr) mode2(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-dev.data:
		dst.Body = data
	}
	return nil
}

func (dev *xcvr) run(ctx tdaq.Context) error {
	for {
		rec, err := dev.dev.Read(ctx.Ctx)
		if err != nil {
			if ctx.Ctx.Err() != nil {
				return nil
			}
			return err
		}

		buf := new(bytes.Buffer)
		err = mode2.Write(buf, []uint32{uint32(rec)})
		if err != nil {
			return err
		}

		select {
		case dev.data <- buf.Bytes():
			dev.n++
		default:
		}
	}
}
