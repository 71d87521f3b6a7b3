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

// Calibration utility to measure encoder pulses per wheel revolution.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aamcrae/config"
	"github.com/aamcrae/odometer/wheel"
)

var configFile = flag.String("config", "odometer.conf", "Configuration file")
var section = flag.String("wheel", "wheel", "Wheel to calibrate")
var turns = flag.Int("turns", 10, "Number of wheel turns to measure")

func main() {
	flag.Parse()
	conf, err := config.ParseFile(*configFile)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	wc, err := wheel.Config(conf, *section)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	w, err := wheel.NewWheel(wc)
	if err != nil {
		log.Fatalf("Wheel: %s %v", *section, err)
	}
	defer w.Close()
	go func() {
		log.Fatalf("%s: encoder stopped: %v", wc.Name, w.Watch())
	}()
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("Mark the wheel, then press enter to start measuring ('q' to quit) ")
		text, _ := reader.ReadString('\n')
		if strings.TrimSpace(text) == "q" {
			return
		}
		ppr, err := wheel.Calibrate(w.Encoder, *turns, func() {
			fmt.Printf("Turn the wheel %d times, and press enter ", *turns)
			reader.ReadString('\n')
		})
		if err != nil {
			fmt.Printf("%v\n", err)
			continue
		}
		fmt.Printf("Measured %d pulses per revolution (configured %d)\n", ppr, wc.Pulses)
		fmt.Printf("  pulses=%d\n", ppr)
	}
}
