//go:build ignore

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

// Program to generate an encoder test signal on two GPIO outputs.

package main

import (
	"flag"
	"log"
	"time"

	"github.com/aamcrae/odometer/io"
)

var gpioA = flag.Int("a", 5, "GPIO output for encoder pulse channel")
var gpioB = flag.Int("b", 6, "GPIO output for encoder direction channel")
var ppr = flag.Int("pulses", 150, "Pulses per revolution")
var rpm = flag.Float64("rpm", 20.0, "RPM")
var pulses = flag.Int("count", 150, "Pulses in each direction")
var repeat = flag.Int("repeat", 5, "Number of forward and reverse runs")

func main() {
	flag.Parse()
	a, err := io.OutputPin(*gpioA)
	if err != nil {
		log.Fatalf("Pin %d: %v", *gpioA, err)
	}
	defer a.Close()
	b, err := io.OutputPin(*gpioB)
	if err != nil {
		log.Fatalf("Pin %d: %v", *gpioB, err)
	}
	defer b.Close()
	gen := io.NewQuadrature(*ppr, a, b)
	defer gen.Close()
	now := time.Now()
	p := *pulses
	for i := 0; i < *repeat*2; i++ {
		gen.Run(*rpm, p)
		p = -p
	}
	gen.Wait()
	log.Printf("Elapsed = %s, pulses = %d\n", time.Since(now), gen.Pulses())
}
