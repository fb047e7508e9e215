// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ir-ctl is an interactive client for ir-svc.
//
// Example session:
//
//	ir> features
//	0x00040702
//	ir> carrier 36000
//	ok
//	ir> send 9000 4500 560 560
//	ok
//	ir> stream 6
//	pulse 900
//	space 450
//	...
package main // import "github.com/go-lirc/tegra/cmd/ir-ctl"

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/go-lirc/tegra/internal/mode2"
)

var cmdNames = []string{
	"carrier", "duty-cycle", "features", "overflow",
	"polarity", "send", "stop", "stream", "tx-mask",
}

func main() {
	addr := flag.String("addr", "localhost:9999", "ir-svc [addr]:port to dial")

	log.SetPrefix("ir-ctl: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(*addr)
	if err != nil {
		log.Fatalf("could not run ir-ctl: %+v", err)
	}
}

func run(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not dial ir-svc %q: %w", addr, err)
	}
	defer conn.Close()

	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(func(line string) []string {
		var out []string
		for _, name := range cmdNames {
			if strings.HasPrefix(name, strings.ToLower(line)) {
				out = append(out, name)
			}
		}
		return out
	})

	cli := client{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}

	for {
		line, err := term.Prompt("ir> ")
		switch err {
		case nil:
			// ok.
		case liner.ErrPromptAborted, io.EOF:
			fmt.Println()
			return cli.stop()
		default:
			return fmt.Errorf("could not read line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		toks := strings.Fields(line)
		if toks[0] == "quit" || toks[0] == "exit" {
			return cli.stop()
		}

		err = cli.do(toks[0], toks[1:])
		if err != nil {
			log.Printf("%+v", err)
		}
	}
}

type client struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

func (cli *client) do(name string, args []string) error {
	switch name {
	case "send":
		seq := make([]uint32, len(args))
		for i, arg := range args {
			v, err := strconv.ParseUint(arg, 10, 32)
			if err != nil {
				return fmt.Errorf("could not parse duration %q: %w", arg, err)
			}
			seq[i] = uint32(v)
		}
		msg, err := cli.request(name, seq)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil

	case "stream":
		if len(args) != 1 {
			return fmt.Errorf("stream needs a record count")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("could not parse record count %q: %w", args[0], err)
		}
		msg, err := cli.request(name, args)
		if err != nil {
			return err
		}
		if msg != "ok" {
			return fmt.Errorf("%s", msg)
		}
		raw := io.MultiReader(cli.dec.Buffered(), cli.conn)
		for i := 0; i < n; i++ {
			w, err := mode2.Read(raw)
			if err != nil {
				return fmt.Errorf("could not read streamed record: %w", err)
			}
			_ = mode2.WriteText(os.Stdout, []uint32{w})
		}
		cli.dec = json.NewDecoder(raw)
		return nil

	default:
		var payload interface{}
		if len(args) > 0 {
			payload = args
		}
		msg, err := cli.request(name, payload)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	}
}

func (cli *client) request(name string, args interface{}) (string, error) {
	req := map[string]interface{}{"name": name}
	if args != nil {
		req["args"] = args
	}
	err := cli.enc.Encode(req)
	if err != nil {
		return "", fmt.Errorf("could not send %q request: %w", name, err)
	}

	var rep struct {
		Msg string `json:"msg"`
	}
	err = cli.dec.Decode(&rep)
	if err != nil {
		return "", fmt.Errorf("could not read %q reply: %w", name, err)
	}
	return rep.Msg, nil
}

func (cli *client) stop() error {
	_, err := cli.request("stop", nil)
	return err
}
