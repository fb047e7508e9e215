// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sigdb stores named infrared signals: a remote-control key
// name, the carrier it is modulated on and its pulse/space pattern.
package sigdb // import "github.com/go-lirc/tegra/sigdb"

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-lirc/tegra/internal/mode2"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// Signal is one named infrared signal.
type Signal struct {
	Name    string
	Carrier uint32   // Hz
	Seq     []uint32 // pulse/space durations, µs
}

// DB exposes convenience methods to store and retrieve named
// infrared signals.
type DB struct {
	db   *sql.DB
	name string
}

// Open opens a connection to the signal database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("sigdb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("sigdb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("sigdb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// Signal retrieves the signal registered under the given name.
func (db *DB) Signal(ctx context.Context, name string) (Signal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sig := Signal{Name: name}
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT carrier, pattern FROM signals WHERE name=?",
		name,
	)
	if err != nil {
		return sig, fmt.Errorf("sigdb: could not query signal %q: %w", name, err)
	}
	defer rows.Close()

	var (
		found   bool
		pattern []byte
	)
	for rows.Next() {
		err = rows.Scan(&sig.Carrier, &pattern)
		if err != nil {
			return sig, fmt.Errorf("sigdb: could not get signal %q: %w", name, err)
		}
		found = true
	}

	if err := rows.Err(); err != nil {
		return sig, fmt.Errorf("sigdb: could not scan db for signal %q: %w", name, err)
	}

	if err := ctx.Err(); err != nil {
		return sig, fmt.Errorf("sigdb: context error while retrieving signal %q: %w", name, err)
	}

	if !found {
		return sig, fmt.Errorf("sigdb: no signal %q", name)
	}

	sig.Seq, err = mode2.DecodeSend(pattern)
	if err != nil {
		return sig, fmt.Errorf("sigdb: could not decode pattern of signal %q: %w", name, err)
	}

	return sig, nil
}

// Signals lists the names of the registered signals.
func (db *DB) Signals(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var names []string
	rows, err := db.db.QueryContext(ctx, "SELECT name FROM signals ORDER BY name")
	if err != nil {
		return names, fmt.Errorf("sigdb: could not query signals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		err = rows.Scan(&name)
		if err != nil {
			return names, fmt.Errorf("sigdb: could not get signal name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return names, fmt.Errorf("sigdb: could not scan db for signal names: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return names, fmt.Errorf("sigdb: context error while retrieving signal names: %w", err)
	}

	return names, nil
}

// Store registers the given signal, replacing a previous one with
// the same name.
func (db *DB) Store(ctx context.Context, sig Signal) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pattern := new(bytes.Buffer)
	err := mode2.Write(pattern, sig.Seq)
	if err != nil {
		return fmt.Errorf("sigdb: could not encode pattern of signal %q: %w", sig.Name, err)
	}

	_, err = db.db.ExecContext(
		ctx,
		"REPLACE INTO signals (name, carrier, pattern) VALUES (?, ?, ?)",
		sig.Name, sig.Carrier, pattern.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("sigdb: could not store signal %q: %w", sig.Name, err)
	}

	return nil
}
