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

// Simulator odometer program

package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/aamcrae/odometer/io"
	"github.com/aamcrae/odometer/wheel"
)

var rpm = flag.Float64("rpm", 30.0, "Simulated wheel speed in RPM")
var turns = flag.Int("turns", 3, "Revolutions in each direction")
var runs = flag.Int("runs", 4, "Number of forward and back runs")
var port = flag.Int("port", 8080, "Status web server port number, 0 to disable")
var debug = flag.Bool("debug", true, "Verbose sample logging")

// SimEncoder stands in for the encoder GPIOs. The generator drives the
// two channels, and each rising edge of channel A is passed to the
// encoder with the current level of channel B, as the interrupt would.
type SimEncoder struct {
	mu   sync.Mutex
	a, b int
	enc  *wheel.Encoder
}

type pinA struct{ *SimEncoder }
type pinB struct{ *SimEncoder }

func (p pinA) Set(v int) error {
	p.mu.Lock()
	rising := p.a == 0 && v == 1
	p.a = v
	b := p.b
	p.mu.Unlock()
	if rising {
		p.enc.Pulse(b)
	}
	return nil
}

func (p pinB) Set(v int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.b = v
	return nil
}

func main() {
	flag.Parse()
	wheel.SetDebug(*debug)
	wc := wheel.DefaultConfig("sim")
	wc.RPM = true
	sim := &SimEncoder{enc: wheel.NewEncoder(wc.Name)}
	gen := io.NewQuadrature(wc.Pulses, pinA{sim}, pinB{sim})
	defer gen.Close()
	odo := wheel.NewOdometer(wc, sim.enc, wheel.SystemClock(), wheel.NewLineReporter(os.Stdout, wc.RPM))
	if *port != 0 {
		go func() {
			log.Fatal(wheel.Server(*port, odo, nil))
		}()
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		odo.Run(stop)
		close(done)
	}()
	steps := *turns * wc.Pulses
	for i := 0; i < *runs; i++ {
		gen.Run(*rpm, steps)
		gen.Run(*rpm, -steps/2)
	}
	gen.Wait()
	// Allow the last interval to be sampled.
	time.Sleep(wc.Interval + 10*time.Millisecond)
	close(stop)
	<-done
	expected := float64(gen.Pulses()) / float64(wc.Pulses) * 2 * math.Pi * wc.Radius * 100
	fmt.Printf("Generated %d pulses, expected %.2f cm, measured %.2f cm\n", gen.Pulses(), expected, odo.Distance())
}
