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

// Program to watch the encoder channels

package main

import (
	"flag"
	"log"

	"github.com/aamcrae/odometer/io"
)

var gpioA = flag.Int("a", 17, "GPIO pin for encoder pulse channel")
var gpioB = flag.Int("b", 27, "GPIO pin for encoder direction channel")

func main() {
	flag.Parse()
	a, err := io.EdgePin(*gpioA, io.RISING)
	if err != nil {
		log.Fatalf("Pin %d: %v", *gpioA, err)
	}
	defer a.Close()
	b, err := io.Pin(*gpioB)
	if err != nil {
		log.Fatalf("Pin %d: %v", *gpioB, err)
	}
	defer b.Close()
	count := 0
	for {
		if _, err := a.Get(); err != nil {
			log.Fatalf("Pin %d: Get: %v", *gpioA, err)
		}
		v, err := b.Get()
		if err != nil {
			log.Fatalf("Pin %d: Get: %v", *gpioB, err)
		}
		dir := "reverse"
		if v != 0 {
			dir = "forward"
			count++
		} else {
			count--
		}
		log.Printf("pulse %s, count %d\n", dir, count)
	}
}
