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

// Wheel odometer program

package main

import (
	"flag"
	"log"
	"os"

	"github.com/aamcrae/config"
	"github.com/aamcrae/odometer/wheel"
)

var configFile = flag.String("config", "odometer.conf", "Configuration file")
var section = flag.String("wheel", "wheel", "Config section for the wheel")
var port = flag.Int("port", 0, "Status web server port number, 0 to disable")
var debug = flag.Bool("debug", false, "Verbose sample logging")

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
	wheel.SetDebug(wc.Debug || *debug)
	w, err := wheel.NewWheel(wc)
	if err != nil {
		log.Fatalf("Wheel: %s %v", *section, err)
	}
	defer w.Close()
	reps := wheel.Reporters{}
	if wc.Serial != "" {
		sp, err := wheel.OpenSerial(wc.Serial, wc.Baud)
		if err != nil {
			log.Fatalf("Telemetry: %v", err)
		}
		defer sp.Close()
		reps = append(reps, wheel.NewLineReporter(sp, wc.RPM))
	} else {
		reps = append(reps, wheel.NewLineReporter(os.Stdout, wc.RPM))
	}
	m, err := wheel.NewMetrics(nil, wc.Name)
	if err != nil {
		log.Fatalf("Metrics: %v", err)
	}
	reps = append(reps, m)
	odo := wheel.NewOdometer(wc, w.Encoder, wheel.SystemClock(), reps)
	go func() {
		log.Fatalf("%s: encoder stopped: %v", wc.Name, w.Watch())
	}()
	if *port != 0 {
		go func() {
			log.Fatal(wheel.Server(*port, odo, m))
		}()
	}
	odo.Run(make(chan struct{}))
}
