// Copyright 2023 The go-lirc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package irx

import (
	"fmt"
	"sync"
)

// fakeClock is a scripted monotonic clock: Wait advances it by
// exactly the requested amount.
type fakeClock struct {
	mu  sync.Mutex
	cur uint64
}

func (clk *fakeClock) Now() uint64 {
	clk.mu.Lock()
	defer clk.mu.Unlock()
	return clk.cur
}

func (clk *fakeClock) Wait(us uint32) {
	clk.mu.Lock()
	defer clk.mu.Unlock()
	clk.cur += uint64(us)
}

func (clk *fakeClock) set(us uint64) {
	clk.mu.Lock()
	defer clk.mu.Unlock()
	clk.cur = us
}

type fakeSet struct {
	line  int
	level bool
	at    uint64 // µs
}

// fakeRig implements Lines and Intr over a fakeClock, recording
// every output transition with its timestamp.
type fakeRig struct {
	clk *fakeClock

	mu     sync.Mutex
	levels []bool // scripted Get answers, consumed front to back
	sets   []fakeSet
	intrs  map[int]EdgeHandler
}

func newFakeRig() *fakeRig {
	return &fakeRig{
		clk:   new(fakeClock),
		intrs: make(map[int]EdgeHandler),
	}
}

func (rig *fakeRig) Get(line int) (bool, error) {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	if len(rig.levels) == 0 {
		return false, nil
	}
	level := rig.levels[0]
	rig.levels = rig.levels[1:]
	return level, nil
}

func (rig *fakeRig) Set(line int, level bool) error {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	rig.sets = append(rig.sets, fakeSet{line, level, rig.clk.Now()})
	return nil
}

func (rig *fakeRig) IntrID(line int) (int, error) {
	return 100 + line, nil
}

func (rig *fakeRig) Register(id int, h EdgeHandler) error {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	if _, dup := rig.intrs[id]; dup {
		return fmt.Errorf("fake: interrupt %d already registered", id)
	}
	rig.intrs[id] = h
	return nil
}

func (rig *fakeRig) Unregister(id int) error {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	if _, ok := rig.intrs[id]; !ok {
		return fmt.Errorf("fake: interrupt %d not registered", id)
	}
	delete(rig.intrs, id)
	return nil
}

// edge delivers a level transition on the given line to the
// registered handler, advancing the clock to at.
func (rig *fakeRig) edge(line int, level bool, at uint64) {
	rig.clk.set(at)
	rig.mu.Lock()
	h := rig.intrs[100+line]
	rig.mu.Unlock()
	h(level, at)
}

func (rig *fakeRig) transitions() []fakeSet {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	out := make([]fakeSet, len(rig.sets))
	copy(out, rig.sets)
	return out
}
