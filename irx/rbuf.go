// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"context"
	"sync"
)

// rbuf is the receive ring buffer between the edge handler and
// readers. Writes never block: when the buffer is full the record is
// dropped and the overflow flag raised.
type rbuf struct {
	mu    sync.Mutex
	buf   []Record
	head  int
	tail  int
	count int
	lost  bool

	notify chan struct{}
}

func newRBuf(n int) *rbuf {
	return &rbuf{
		buf:    make([]Record, n),
		notify: make(chan struct{}, n),
	}
}

func (rb *rbuf) write(r Record) bool {
	rb.mu.Lock()
	if rb.count == len(rb.buf) {
		rb.lost = true
		rb.mu.Unlock()
		return false
	}
	rb.buf[rb.tail] = r
	rb.tail = (rb.tail + 1) % len(rb.buf)
	rb.count++
	rb.mu.Unlock()

	select {
	case rb.notify <- struct{}{}:
	default:
	}
	return true
}

func (rb *rbuf) read(ctx context.Context) (Record, error) {
	for {
		rb.mu.Lock()
		if rb.count > 0 {
			r := rb.buf[rb.head]
			rb.head = (rb.head + 1) % len(rb.buf)
			rb.count--
			rb.mu.Unlock()
			return r, nil
		}
		rb.mu.Unlock()

		select {
		case <-rb.notify:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// overflow reports whether a record has been dropped since the last
// call, and clears the flag.
func (rb *rbuf) overflow() bool {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	lost := rb.lost
	rb.lost = false
	return lost
}
