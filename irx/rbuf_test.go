// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRBufOverflow(t *testing.T) {
	rb := newRBuf(4)
	for i := 0; i < 4; i++ {
		if !rb.write(Pulse(uint32(i + 1))) {
			t.Fatalf("write %d dropped", i)
		}
	}
	if rb.write(Pulse(5)) {
		t.Fatalf("write on full buffer not dropped")
	}
	if !rb.overflow() {
		t.Fatalf("overflow flag not raised")
	}
	if rb.overflow() {
		t.Fatalf("overflow flag not cleared")
	}

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		got, err := rb.read(ctx)
		if err != nil {
			t.Fatalf("could not read record %d: %+v", i, err)
		}
		if want := Pulse(uint32(i + 1)); got != want {
			t.Fatalf("invalid record %d: got=%v, want=%v", i, got, want)
		}
	}
}

func TestRBufBlockingRead(t *testing.T) {
	rb := newRBuf(4)
	go func() {
		time.Sleep(10 * time.Millisecond)
		rb.write(Space(42))
	}()

	got, err := rb.read(context.Background())
	if err != nil {
		t.Fatalf("could not read record: %+v", err)
	}
	if want := Space(42); got != want {
		t.Fatalf("invalid record: got=%v, want=%v", got, want)
	}
}

func TestRBufReadCancel(t *testing.T) {
	rb := newRBuf(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rb.read(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, context.Canceled)
	}
}
