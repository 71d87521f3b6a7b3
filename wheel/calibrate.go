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
	"fmt"
	"log"
)

// Calibrate measures the encoder pulses in a revolution of the wheel.
// Any pulses already counted are discarded, then turned is called,
// which should return once the wheel has been turned by the number
// of revolutions. The pulses per revolution is rounded to the nearest
// whole pulse, and is always positive regardless of the direction turned.
func Calibrate(e *Encoder, turns int, turned func()) (int, error) {
	if turns <= 0 {
		return 0, fmt.Errorf("%s: invalid number of turns (%d)", e.Name, turns)
	}
	e.Drain()
	turned()
	n, _ := e.Drain()
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return 0, fmt.Errorf("%s: no pulses seen", e.Name)
	}
	ppr := int((n + int64(turns)/2) / int64(turns))
	log.Printf("%s: %d pulses in %d turns, %d pulses per revolution", e.Name, n, turns, ppr)
	return ppr, nil
}
