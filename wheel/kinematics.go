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
	"math"
	"time"
)

// Conversion constants.
const (
	RPMToRadPerSec = 2 * math.Pi / 60 // 1 RPM = 0.1047198 rad/s
	RadToDeg       = 180 / math.Pi
)

// Sample holds the motion of the wheel derived from one sampling window.
// Values are signed; negative values are movement in reverse.
type Sample struct {
	Time      int64         // Clock time of the sample in milliseconds
	Elapsed   time.Duration // Duration of the sampling window
	Pulses    int64         // Net encoder pulses in the window
	Edges     int64         // Encoder pulses in the window in either direction
	Forward   bool          // Direction of the last pulse seen
	RPM       float64       // Revolutions per minute
	RadPerSec float64       // Angular velocity, radians/second
	DegPerSec float64       // Angular velocity, degrees/second
	Velocity  float64       // Linear velocity, metres/second
	Delta     float64       // Distance moved in the window, centimetres
	Distance  float64       // Cumulative distance, centimetres
}

// Convert derives the motion of the wheel from the net pulses counted over
// the elapsed time, assuming constant speed across the window.
// If elapsed is not positive, the configured interval is used.
// Distance is left for the caller to accumulate.
func Convert(pulses int64, elapsed time.Duration, c WheelConfig) Sample {
	if elapsed <= 0 {
		elapsed = c.Interval
	}
	s := Sample{Elapsed: elapsed, Pulses: pulses}
	secs := elapsed.Seconds()
	revs := float64(pulses) / float64(c.Pulses)
	s.RPM = revs * 60 / secs
	s.RadPerSec = s.RPM * RPMToRadPerSec
	s.DegPerSec = s.RadPerSec * RadToDeg
	s.Velocity = s.RadPerSec * c.Radius
	s.Delta = s.Velocity * secs * 100
	return s
}
