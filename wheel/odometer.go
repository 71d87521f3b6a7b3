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

// Wheel speed and distance sampling

package wheel

import (
	"log"
	"sync"
	"time"
)

// Clock provides a monotonic time in milliseconds.
type Clock interface {
	Millis() int64
}

// Drainer provides the pulses accumulated since the last call,
// and the last direction seen.
type Drainer interface {
	Drain() (int64, bool)
}

// EdgeCounter provides the total pulses seen in either direction.
// If the Drainer is also an EdgeCounter, each sample includes the
// pulses counted in the window regardless of direction.
type EdgeCounter interface {
	Edges() int64
}

type sysClock struct {
	start time.Time
}

// SystemClock returns a Clock counting milliseconds from when it was created.
func SystemClock() Clock {
	return &sysClock{start: time.Now()}
}

func (c *sysClock) Millis() int64 {
	return time.Since(c.start).Milliseconds()
}

// How often Run checks the clock.
const pollInterval = time.Millisecond

// Odometer samples an encoder at a fixed interval, converting the
// pulses counted in each interval to the speed of the wheel and the
// distance moved, and accumulating the total distance.
// The odometer is idle until more than the sampling interval has
// elapsed since the last sample, at which point a sample is taken
// and sent to the reporter.
// The total distance is signed (reverse movement reduces it), and is
// never reset.
type Odometer struct {
	Name     string
	config   WheelConfig
	enc      Drainer
	clock    Clock
	reporter Reporter
	mu       sync.Mutex // Guards fields below
	last     int64      // Time of last sample
	distance float64    // Cumulative distance in cm
	position int64      // Net pulses since start
	edges    int64      // Edge count at last sample
	latest   Sample
	samples  int
}

// NewOdometer creates an Odometer for the encoder. The sampling
// interval starts from the current clock time.
// A nil reporter discards the samples.
func NewOdometer(wc WheelConfig, enc Drainer, clock Clock, reporter Reporter) *Odometer {
	o := new(Odometer)
	o.Name = wc.Name
	o.config = wc
	o.enc = enc
	o.clock = clock
	o.reporter = reporter
	o.last = clock.Millis()
	o.latest.Time = o.last
	if ec, ok := enc.(EdgeCounter); ok {
		o.edges = ec.Edges()
	}
	log.Printf("%s: pulses/rev %d, radius %gm, interval %s\n", o.Name, wc.Pulses, wc.Radius, wc.Interval)
	return o
}

// Config returns the wheel configuration.
func (o *Odometer) Config() WheelConfig {
	return o.config
}

// Poll takes a sample if the sampling interval has elapsed, returning
// the sample and true. Otherwise false is returned. Poll never blocks.
func (o *Odometer) Poll() (Sample, bool) {
	return o.sample(o.clock.Millis(), false)
}

// Sample drains the encoder and converts the pulses counted since the
// last sample, using now as the end of the sampling window.
// A time earlier than the last sample is treated as the time of the last sample.
func (o *Odometer) Sample(now int64) Sample {
	s, _ := o.sample(now, true)
	return s
}

// sample takes a sample if forced or if the interval has elapsed.
// Checking the interval and taking the sample is a single critical
// section, so concurrent callers cannot sample the same window twice.
func (o *Odometer) sample(now int64, force bool) (Sample, bool) {
	o.mu.Lock()
	if !force && now-o.last <= o.config.Interval.Milliseconds() {
		o.mu.Unlock()
		return Sample{}, false
	}
	if now < o.last {
		now = o.last
	}
	pulses, fwd := o.enc.Drain()
	s := Convert(pulses, time.Duration(now-o.last)*time.Millisecond, o.config)
	s.Time = now
	s.Forward = fwd
	if ec, ok := o.enc.(EdgeCounter); ok {
		e := ec.Edges()
		s.Edges = e - o.edges
		o.edges = e
	} else {
		s.Edges = pulses
		if s.Edges < 0 {
			s.Edges = -s.Edges
		}
	}
	// Direction is carried in the sign of the pulse count.
	o.distance += s.Delta
	s.Distance = o.distance
	o.position += pulses
	o.last = now
	o.latest = s
	o.samples++
	o.mu.Unlock()
	Logf("%s: %d pulses in %s, %.2f RPM, %.4f rad/s, %.2f deg/s, %.4f m/s, %.2f cm (total %.2f cm)",
		o.Name, s.Pulses, s.Elapsed, s.RPM, s.RadPerSec, s.DegPerSec, s.Velocity, s.Delta, s.Distance)
	if o.reporter != nil {
		if err := o.reporter.Report(&s); err != nil {
			log.Printf("%s: report: %v", o.Name, err)
		}
	}
	return s, true
}

// Run polls the clock, sampling at each interval until stop is closed.
func (o *Odometer) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			o.Poll()
		}
	}
}

// Distance returns the cumulative distance in centimetres.
func (o *Odometer) Distance() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.distance
}

// Position returns the net pulses sampled since start, and the
// number of pulses per revolution.
func (o *Odometer) Position() (int64, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position, o.config.Pulses
}

// Latest returns the most recent sample.
func (o *Odometer) Latest() Sample {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

// Samples returns the number of samples taken.
func (o *Odometer) Samples() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.samples
}
