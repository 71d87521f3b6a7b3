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
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mode
const (
	IN = iota // Default
	OUT
)

// Edge
const (
	NONE = iota // Default
	RISING
	FALLING
	BOTH
)

const (
	gpioDir          = "/sys/class/gpio/"
	gpioExportFile   = gpioDir + "export"
	gpioUnexportFile = gpioDir + "unexport"
)

var edgeNames = map[int]string{
	NONE:    "none",
	RISING:  "rising",
	FALLING: "falling",
	BOTH:    "both",
}

// Gpio represents one GPIO pin.
// If edge detection is enabled, Get blocks until the selected
// edge is seen, otherwise Get returns the current level.
type Gpio struct {
	number    int
	value     *os.File
	buf       []byte
	direction int
	edge      int
	pollfd    []unix.PollFd
}

// OutputPin opens a GPIO pin and sets the direction as OUTPUT.
func OutputPin(gpio int) (*Gpio, error) {
	g, err := Pin(gpio)
	if err != nil {
		return nil, err
	}
	if err := g.Direction(OUT); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// EdgePin opens a GPIO pin as an input with edge detection enabled.
func EdgePin(gpio, edge int) (*Gpio, error) {
	g, err := Pin(gpio)
	if err != nil {
		return nil, err
	}
	if err := g.Edge(edge); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Pin opens a GPIO pin as an input with no edge detection.
func Pin(gpio int) (*Gpio, error) {
	g := &Gpio{number: gpio, buf: make([]byte, 1)}
	vf := g.file("value")
	if err := export(vf, gpioExportFile, gpio); err != nil {
		return nil, err
	}
	if err := g.Direction(IN); err != nil {
		unexport(gpioUnexportFile, gpio)
		return nil, err
	}
	if err := g.Edge(NONE); err != nil {
		unexport(gpioUnexportFile, gpio)
		return nil, err
	}
	var err error
	g.value, err = os.OpenFile(vf, os.O_RDWR, 0600)
	if err != nil {
		unexport(gpioUnexportFile, gpio)
		return nil, err
	}
	g.pollfd = []unix.PollFd{{Fd: int32(g.value.Fd()), Events: unix.POLLPRI | unix.POLLERR}}
	return g, nil
}

func (g *Gpio) file(name string) string {
	return fmt.Sprintf("%sgpio%d/%s", gpioDir, g.number, name)
}

// Direction sets the mode (direction) of the GPIO pin.
func (g *Gpio) Direction(d int) error {
	var s string
	switch d {
	case IN:
		s = "in"
	case OUT:
		s = "out"
	default:
		return fmt.Errorf("gpio%d: unknown direction", g.number)
	}
	if err := writeFile(g.file("direction"), s); err != nil {
		return err
	}
	g.direction = d
	return nil
}

// Edge sets the edge detection on the GPIO pin.
// Any event latched before the edge was selected is discarded so that
// the first Get waits for a real edge.
func (g *Gpio) Edge(e int) error {
	if g.direction != IN {
		return fmt.Errorf("gpio%d: not set as an input pin", g.number)
	}
	s, ok := edgeNames[e]
	if !ok {
		return fmt.Errorf("gpio%d: unknown edge", g.number)
	}
	if err := writeFile(g.file("edge"), s); err != nil {
		return err
	}
	g.edge = e
	if e != NONE && g.value != nil {
		g.value.ReadAt(g.buf, 0)
	}
	return nil
}

// Set the output of the GPIO pin (only valid for OUTPUT pins)
func (g *Gpio) Set(v int) error {
	if g.direction != OUT {
		return fmt.Errorf("gpio%d: is not output", g.number)
	}
	switch v {
	case 0:
		g.buf[0] = '0'
	case 1:
		g.buf[0] = '1'
	default:
		return fmt.Errorf("gpio%d: illegal value %d", g.number, v)
	}
	_, err := g.value.WriteAt(g.buf, 0)
	return err
}

// Get returns the value of the GPIO pin, waiting for an edge
// first if edge detection is enabled.
func (g *Gpio) Get() (int, error) {
	if g.edge != NONE {
		g.pollfd[0].Revents = 0
		// With no timeout, poll should always return an event.
		if _, err := unix.Poll(g.pollfd, -1); err != nil {
			return 0, fmt.Errorf("gpio%d: %w", g.number, err)
		}
	}
	if _, err := g.value.ReadAt(g.buf, 0); err != nil {
		return 0, err
	}
	switch g.buf[0] {
	case '0':
		return 0, nil
	case '1':
		return 1, nil
	}
	return 0, fmt.Errorf("gpio%d: unknown value %q", g.number, g.buf)
}

// Close the GPIO pin and unexport it.
func (g *Gpio) Close() {
	g.value.Close()
	unexport(gpioUnexportFile, g.number)
}
