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

// Quadrature encoder pulse accumulator.

package wheel

import (
	"fmt"
	"sync/atomic"
)

// Input provides a method to read an encoder channel.
// For the pulse channel, Get blocks until a rising edge is seen.
// For the direction channel, Get returns the current level.
type Input interface {
	Get() (int, error)
}

// Encoder accumulates pulses from a rotary encoder with one pulse
// channel (A) and one direction channel (B).
// On every rising edge of A, the level of B is sampled: high is forward,
// and the pulse count is incremented, low is reverse and the count is decremented.
// The count and the direction are held together in a single word, so that
// the sampler drains both (reading them and clearing the count) in one
// atomic operation, and no pulse is lost or counted twice across a sample boundary.
// The count is held in the upper 63 bits, and wraps if it overflows.
type Encoder struct {
	Name  string
	state int64 // Net pulses since last drain << 1 | forward
	edges int64 // Total edges seen
}

// NewEncoder creates a new Encoder.
func NewEncoder(name string) *Encoder {
	return &Encoder{Name: name}
}

// Pulse records one rising edge of the pulse channel, with
// dir being the level of the direction channel at the edge.
// It never blocks, and is safe to call concurrently with Drain.
func (e *Encoder) Pulse(dir int) {
	inc, fwd := int64(-1), int64(0)
	if dir != 0 {
		inc, fwd = 1, 1
	}
	for {
		old := atomic.LoadInt64(&e.state)
		if atomic.CompareAndSwapInt64(&e.state, old, (old>>1+inc)<<1|fwd) {
			break
		}
	}
	atomic.AddInt64(&e.edges, 1)
}

// Drain returns the net pulse count accumulated since the last drain,
// resetting it to 0, along with the direction of the last pulse counted.
func (e *Encoder) Drain() (int64, bool) {
	for {
		old := atomic.LoadInt64(&e.state)
		if atomic.CompareAndSwapInt64(&e.state, old, old&1) {
			return old >> 1, old&1 == 1
		}
	}
}

// Count returns the current net pulse count without clearing it.
func (e *Encoder) Count() int64 {
	return atomic.LoadInt64(&e.state) >> 1
}

// Forward returns true if the last pulse was in the forward direction.
func (e *Encoder) Forward() bool {
	return atomic.LoadInt64(&e.state)&1 == 1
}

// Edges returns the total number of edges seen, regardless of direction.
func (e *Encoder) Edges() int64 {
	return atomic.LoadInt64(&e.edges)
}

// Watch is the encoder driver. It waits for rising edges on the pulse
// channel and samples the direction channel for each one.
// Watch only returns when an input fails.
func (e *Encoder) Watch(pulse, dir Input) error {
	for {
		v, err := pulse.Get()
		if err != nil {
			return fmt.Errorf("%s: pulse input: %w", e.Name, err)
		}
		// Only rising edges are counted.
		if v == 0 {
			continue
		}
		d, err := dir.Get()
		if err != nil {
			return fmt.Errorf("%s: direction input: %w", e.Name, err)
		}
		e.Pulse(d)
	}
}
