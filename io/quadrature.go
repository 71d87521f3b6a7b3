// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package io

import (
	"sync/atomic"
	"time"
)

const quadQueueSize = 20 // Size of queue for requests

type msg struct {
	rpm    float64
	pulses int
	sync   chan struct{}
}

// Quadrature generates the two channel output of a rotary encoder,
// as if attached to a shaft turning at a requested speed.
// Channel A rises once per pulse; when running forward channel B is high
// at the rising edge of A, and low when running in reverse.
// All output is done in a background goroutine, so requests can be queued.
// The number of pulses generated is kept as a signed absolute value,
// starting from 0.
type Quadrature struct {
	a, b     Setter        // Channel outputs
	factor   float64       // Nanoseconds per output state at 1 RPM
	mChan    chan msg      // Channel for requests
	stopChan chan struct{} // Channel for aborting requests
	index    int           // Index to state sequence
	current  int64         // Pulses generated
}

// Output states of channels A and B. Moving forward through the
// sequence raises A while B is high.
var states = [4][2]int{
	{0, 0},
	{0, 1},
	{1, 1},
	{1, 0},
}

// NewQuadrature creates a generator for an encoder with ppr pulses
// per revolution, driving the a and b outputs.
func NewQuadrature(ppr int, a, b Setter) *Quadrature {
	q := new(Quadrature)
	// Each pulse is a full cycle of 4 output states.
	q.factor = float64(time.Minute.Nanoseconds()) / float64(ppr*len(states))
	q.a = a
	q.b = b
	q.mChan = make(chan msg, quadQueueSize)
	q.stopChan = make(chan struct{})
	q.output()
	go q.handler()
	return q
}

// Close aborts any output and stops the generator.
func (q *Quadrature) Close() {
	q.Stop()
	close(q.stopChan)
}

// Pulses returns the signed count of pulses generated so far.
func (q *Quadrature) Pulses() int64 {
	return atomic.LoadInt64(&q.current)
}

// Run queues a request to generate the number of pulses at the
// shaft speed in RPM. Negative pulses run the shaft in reverse.
func (q *Quadrature) Run(rpm float64, pulses int) {
	if pulses != 0 && rpm > 0.0 {
		q.mChan <- msg{rpm: rpm, pulses: pulses}
	}
}

// Stop aborts the current request and flushes all queued requests.
func (q *Quadrature) Stop() {
	q.stopChan <- struct{}{}
	q.Wait()
}

// Wait waits for all queued requests to complete.
func (q *Quadrature) Wait() {
	c := make(chan struct{})
	q.mChan <- msg{sync: c}
	<-c
}

func (q *Quadrature) handler() {
	for {
		select {
		case m := <-q.mChan:
			if m.pulses != 0 && q.run(m.rpm, m.pulses) {
				return
			}
			if m.sync != nil {
				close(m.sync)
			}
		case _, ok := <-q.stopChan:
			q.flush()
			if !ok {
				return
			}
		}
	}
}

// run steps through the output states for the pulses requested.
// Returns true if the generator has been closed.
func (q *Quadrature) run(rpm float64, pulses int) bool {
	inc := 1
	if pulses < 0 {
		inc = -1
		pulses = -pulses
	}
	delay := time.Duration(q.factor / rpm)
	if delay <= 0 {
		delay = time.Nanosecond
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for i := 0; i < pulses*len(states); i++ {
		prev := states[q.index][0]
		q.index = (q.index + inc) & (len(states) - 1)
		q.output()
		if prev == 0 && states[q.index][0] == 1 {
			atomic.AddInt64(&q.current, int64(inc))
		}
		select {
		case _, ok := <-q.stopChan:
			q.flush()
			return !ok
		case <-ticker.C:
		}
	}
	return false
}

// flush releases any waiters in the request queue.
func (q *Quadrature) flush() {
	for {
		select {
		case m := <-q.mChan:
			if m.sync != nil {
				close(m.sync)
			}
		default:
			return
		}
	}
}

// output sets the channel levels for the current state.
// B is set first so that it is stable when A changes.
func (q *Quadrature) output() {
	s := states[q.index]
	q.b.Set(s[1])
	q.a.Set(s[0])
}
