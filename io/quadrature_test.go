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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// bench records the outputs of both channels.
type bench struct {
	mu     sync.Mutex
	a, b   int
	rises  int // Rising edges of A
	bHigh  int // Rising edges of A seen with B high
	writes int
}

type chanA struct{ *bench }
type chanB struct{ *bench }

func (c chanA) Set(v int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.a == 0 && v == 1 {
		c.rises++
		if c.b == 1 {
			c.bHigh++
		}
	}
	c.a = v
	c.writes++
	return nil
}

func (c chanB) Set(v int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.b = v
	c.writes++
	return nil
}

func (b *bench) counts() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rises, b.bHigh
}

// Fast enough to finish quickly: 60000 RPM with 1 pulse per
// revolution is 250us per state.
const testRPM = 60000

func TestQuadratureForward(t *testing.T) {
	b := new(bench)
	q := NewQuadrature(1, chanA{b}, chanB{b})
	defer q.Close()
	q.Run(testRPM, 10)
	q.Wait()
	rises, high := b.counts()
	assert.Equal(t, 10, rises)
	assert.Equal(t, 10, high, "B must be high at each rising edge of A")
	assert.Equal(t, int64(10), q.Pulses())
}

func TestQuadratureReverse(t *testing.T) {
	b := new(bench)
	q := NewQuadrature(1, chanA{b}, chanB{b})
	defer q.Close()
	q.Run(testRPM, -7)
	q.Wait()
	rises, high := b.counts()
	assert.Equal(t, 7, rises)
	assert.Equal(t, 0, high, "B must be low at each rising edge of A")
	assert.Equal(t, int64(-7), q.Pulses())
}

func TestQuadratureQueued(t *testing.T) {
	b := new(bench)
	q := NewQuadrature(1, chanA{b}, chanB{b})
	defer q.Close()
	q.Run(testRPM, 5)
	q.Run(testRPM, -3)
	q.Run(testRPM, 4)
	q.Wait()
	rises, high := b.counts()
	assert.Equal(t, 12, rises)
	assert.Equal(t, 9, high)
	assert.Equal(t, int64(6), q.Pulses())
}

func TestQuadratureIgnoresEmptyRequests(t *testing.T) {
	b := new(bench)
	q := NewQuadrature(1, chanA{b}, chanB{b})
	defer q.Close()
	q.Run(testRPM, 0)
	q.Run(0, 10)
	q.Run(-5, 10)
	q.Wait()
	rises, _ := b.counts()
	assert.Equal(t, 0, rises)
	assert.Equal(t, int64(0), q.Pulses())
}

func TestQuadratureStop(t *testing.T) {
	b := new(bench)
	q := NewQuadrature(1, chanA{b}, chanB{b})
	defer q.Close()
	// 1 RPM would take a minute per pulse.
	q.Run(1, 100)
	q.Run(1, 100)
	q.Stop()
	assert.Less(t, q.Pulses(), int64(2))
}
