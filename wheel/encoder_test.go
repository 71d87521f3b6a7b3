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

package wheel

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderForward(t *testing.T) {
	e := NewEncoder("test")
	for i := 0; i < 250; i++ {
		e.Pulse(1)
	}
	assert.Equal(t, int64(250), e.Count())
	assert.True(t, e.Forward())
	n, fwd := e.Drain()
	assert.Equal(t, int64(250), n)
	assert.True(t, fwd)
	assert.Equal(t, int64(0), e.Count())
}

func TestEncoderReverse(t *testing.T) {
	e := NewEncoder("test")
	for i := 0; i < 99; i++ {
		e.Pulse(0)
	}
	assert.Equal(t, int64(-99), e.Count())
	assert.False(t, e.Forward())
	n, fwd := e.Drain()
	assert.Equal(t, int64(-99), n)
	assert.False(t, fwd)
	assert.Equal(t, int64(99), e.Edges())
}

func TestEncoderInterleaved(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		f, rev := r.Intn(500), r.Intn(500)
		levels := make([]int, 0, f+rev)
		for i := 0; i < f; i++ {
			levels = append(levels, 1)
		}
		for i := 0; i < rev; i++ {
			levels = append(levels, 0)
		}
		r.Shuffle(len(levels), func(i, j int) { levels[i], levels[j] = levels[j], levels[i] })
		e := NewEncoder("test")
		for _, l := range levels {
			e.Pulse(l)
		}
		n, _ := e.Drain()
		assert.Equal(t, int64(f-rev), n, "trial %d", trial)
	}
}

func TestEncoderDrainTwice(t *testing.T) {
	e := NewEncoder("test")
	e.Pulse(1)
	e.Pulse(1)
	n, _ := e.Drain()
	assert.Equal(t, int64(2), n)
	n, fwd := e.Drain()
	assert.Equal(t, int64(0), n)
	assert.True(t, fwd, "direction is kept across drains")
}

// Pulses arriving while the sampler drains must land in exactly one window.
func TestEncoderConcurrentDrain(t *testing.T) {
	const producers = 4
	const perProducer = 20000
	e := NewEncoder("test")
	var wg sync.WaitGroup
	want := int64(0)
	for p := 0; p < producers; p++ {
		dir := p % 2
		if dir == 1 {
			want += perProducer * 3
		} else {
			want -= perProducer
		}
		wg.Add(1)
		go func(dir int) {
			defer wg.Done()
			n := perProducer
			if dir == 1 {
				n *= 3
			}
			for i := 0; i < n; i++ {
				e.Pulse(dir)
			}
		}(dir)
	}
	finished := stopDrain(&wg)
	done := make(chan struct{})
	var total int64
	go func() {
		defer close(done)
		for {
			n, _ := e.Drain()
			total += n
			select {
			case <-finished:
				n, _ := e.Drain()
				total += n
				return
			default:
			}
		}
	}()
	<-done
	assert.Equal(t, want, total)
	assert.Equal(t, int64(producers/2*perProducer*4), e.Edges())
}

// stopDrain returns a channel closed once the producers are done.
func stopDrain(wg *sync.WaitGroup) <-chan struct{} {
	c := make(chan struct{})
	go func() {
		wg.Wait()
		close(c)
	}()
	return c
}

// chanInput returns the values sent on a channel, and an error once closed.
type chanInput chan int

func (c chanInput) Get() (int, error) {
	v, ok := <-c
	if !ok {
		return 0, errEnd
	}
	return v, nil
}

var errEnd = errors.New("input closed")

// levelInput returns a fixed sequence of levels.
type levelInput struct {
	levels []int
	err    error
}

func (l *levelInput) Get() (int, error) {
	if len(l.levels) == 0 {
		return 0, l.err
	}
	v := l.levels[0]
	l.levels = l.levels[1:]
	return v, nil
}

func TestEncoderWatch(t *testing.T) {
	e := NewEncoder("test")
	pulse := make(chanInput, 10)
	dir := &levelInput{levels: []int{1, 1, 0, 1}, err: errEnd}
	// A falling edge (0) does not sample the direction channel.
	for _, v := range []int{1, 1, 0, 1, 1} {
		pulse <- v
	}
	close(pulse)
	err := e.Watch(pulse, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errEnd))
	n, fwd := e.Drain()
	assert.Equal(t, int64(2), n)
	assert.True(t, fwd)
}

func TestEncoderWatchDirectionError(t *testing.T) {
	e := NewEncoder("test")
	pulse := make(chanInput, 1)
	pulse <- 1
	err := e.Watch(pulse, &levelInput{err: errEnd})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "direction input")
	assert.Equal(t, int64(0), e.Count())
}

// With pulses alternating forward and reverse, each window holds a
// contiguous run, so a net count of +1 must end in a forward pulse
// and -1 in a reverse pulse.
func TestEncoderDrainDirectionMatchesCount(t *testing.T) {
	const pairs = 200000
	e := NewEncoder("test")
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < pairs; i++ {
			e.Pulse(1)
			e.Pulse(0)
		}
	}()
	finished := stopDrain(&wg)
	var total int64
	for running := true; running; {
		select {
		case <-finished:
			running = false
		default:
		}
		n, fwd := e.Drain()
		total += n
		switch n {
		case 1:
			require.True(t, fwd, "forward window reported as reverse")
		case -1:
			require.False(t, fwd, "reverse window reported as forward")
		case 0:
		default:
			require.Failf(t, "impossible window", "net count %d", n)
		}
	}
	assert.Equal(t, int64(0), total)
	assert.False(t, e.Forward())
}

func TestEncoderNegativeCountKeepsDirection(t *testing.T) {
	e := NewEncoder("test")
	pulses(e, 3, 0)
	e.Pulse(1)
	assert.Equal(t, int64(-2), e.Count())
	assert.True(t, e.Forward())
	n, fwd := e.Drain()
	assert.Equal(t, int64(-2), n)
	assert.True(t, fwd)
	assert.Equal(t, int64(0), e.Count())
	assert.True(t, e.Forward(), "direction is kept after the count is cleared")
	e.Pulse(0)
	assert.Equal(t, int64(-1), e.Count())
	assert.False(t, e.Forward())
}
