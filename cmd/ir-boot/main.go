// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ir-boot (re)starts the infrared acquisition daemons: the
// control server (ir-svc) and the capture watchdog (ir-mon).
package main // import "github.com/go-lirc/tegra/cmd/ir-boot"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"
)

type proc struct {
	name string
	args []string
}

var (
	procs = []proc{
		{name: "ir-svc"},
		{name: "ir-mon"},
	}

	dir    = flag.String("dir", logDir(), "daemon log directory")
	doMon  = flag.Bool("pmon", false, "enable pmon monitoring")
	doFreq = flag.Duration("freq", 1*time.Second, "pmon frequency")

	stop = make(chan os.Signal, 1)
)

func logDir() string {
	if dir := os.Getenv("IRLOGDIR"); dir != "" {
		return dir
	}
	return "/var/log/ir"
}

func main() {
	flag.Parse()

	log.SetPrefix("ir-boot: ")
	log.SetFlags(0)

	err := run(*doMon, *doFreq, procs, *dir, stop)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(doMon bool, freq time.Duration, procs []proc, dir string, stop chan os.Signal) error {
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("could not create log directory %q: %w", dir, err)
	}

	var (
		grp  errgroup.Group
		kill = make(chan int)
	)
	for _, p := range procs {
		p := p
		grp.Go(func() error {
			return start(p, dir, kill, doMon, freq)
		})
	}

	go func() {
		<-stop
		close(kill)
	}()

	err = grp.Wait()
	if err != nil {
		return fmt.Errorf("could not boot IR acquisition: %w", err)
	}
	return nil
}

func start(p proc, dir string, kill chan int, doMon bool, freq time.Duration) error {
	// stop any leftover instance from a previous boot.
	err := exec.Command("killall", p.name).Run()
	if err != nil {
		log.Printf("no previous %q to stop: %+v", p.name, err)
	}

	out, err := os.Create(filepath.Join(dir, p.name+".log"))
	if err != nil {
		return fmt.Errorf("could not create output log file for %q: %w", p.name, err)
	}
	defer out.Close()

	cmd := exec.Command(p.name, p.args...)
	cmd.Stdout = out
	cmd.Stderr = out

	log.Printf("starting %q...", p.name)
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start %q: %w", p.name, err)
	}

	if doMon {
		mon, err := pmon.Monitor(cmd.Process.Pid)
		if err != nil {
			return fmt.Errorf("could not start monitoring %q (pid=%d): %w", p.name, cmd.Process.Pid, err)
		}
		f, err := os.Create(filepath.Join(dir, p.name+"-pmon.log"))
		if err != nil {
			return fmt.Errorf("could not create pmon log file for command %q: %w", p.name, err)
		}
		defer f.Close()
		mon.W = f
		mon.Freq = freq

		go func() {
			log.Printf("run pmon %q...", p.name)
			err := mon.Run()
			if err != nil {
				log.Printf("could not start monitoring %q: %+v", p.name, err)
			}
		}()

		defer func() {
			err := mon.Kill()
			if err != nil {
				log.Printf("could not stop monitoring %q: %+v", p.name, err)
			}
		}()
	}

	errch := make(chan error)
	go func() {
		errch <- cmd.Wait()
	}()

	select {
	case <-kill:
		err = cmd.Process.Kill()
		if err != nil {
			return fmt.Errorf("could not kill %q: %+v", p.name, err)
		}
	case err = <-errch:
		if err != nil {
			return fmt.Errorf("could not run %q: %w", p.name, err)
		}
	}

	return nil
}
