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
	"strconv"
	"time"

	"github.com/aamcrae/config"
	"github.com/aamcrae/odometer/io"
)

// WheelConfig holds the physical and calibration parameters of a wheel
// and its encoder. It is passed by value, and is never changed once read.
type WheelConfig struct {
	Name     string
	PinA     int           // GPIO for the pulse channel
	PinB     int           // GPIO for the direction channel
	Pulses   int           // Encoder pulses per revolution of the wheel
	Radius   float64       // Wheel radius in metres
	Interval time.Duration // Sampling interval
	Debug    bool          // Verbose sample logging
	Serial   string        // Telemetry serial port, or empty for stdout
	Baud     int           // Telemetry serial baud rate
	RPM      bool          // Include RPM in telemetry
}

// DefaultConfig returns the configuration of a JGB37-520 geared motor
// with a 35mm radius wheel.
func DefaultConfig(name string) WheelConfig {
	return WheelConfig{
		Name:     name,
		PinA:     17,
		PinB:     27,
		Pulses:   150,
		Radius:   0.035,
		Interval: time.Second,
		Baud:     9600,
	}
}

// Validate checks the configuration for values that cannot be used.
func (c WheelConfig) Validate() error {
	if c.Pulses <= 0 {
		return fmt.Errorf("%s: pulses per revolution must be positive (%d)", c.Name, c.Pulses)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%s: wheel radius must be positive (%g)", c.Name, c.Radius)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%s: sampling interval must be positive (%s)", c.Name, c.Interval)
	}
	if c.PinA == c.PinB {
		return fmt.Errorf("%s: encoder channels must use different GPIOs (%d)", c.Name, c.PinA)
	}
	if c.Serial != "" && c.Baud <= 0 {
		return fmt.Errorf("%s: invalid baud rate %d", c.Name, c.Baud)
	}
	return nil
}

// Config reads and validates a WheelConfig from a config file section.
// The encoder, pulses, radius and interval keys are required, the rest
// take default values if not present. A key that is present but cannot
// be parsed is an error.
// Sample config:
//  [wheel]
//  encoder=17,27
//  pulses=150
//  radius=0.035
//  interval=1s
//  serial=/dev/ttyUSB0,9600
//  debug=1
//  rpm=1
// encoder is the GPIO for the pulse channel and the direction channel,
// pulses is the number of encoder pulses in a wheel revolution,
// radius is the wheel radius in metres and interval the sampling interval.
// serial selects a telemetry serial port, with an optional baud rate (which
// may also be set with a separate baud key). debug enables verbose sample
// logging, and rpm adds the RPM to the telemetry.
func Config(conf *config.Config, name string) (WheelConfig, error) {
	h := DefaultConfig(name)
	s := conf.GetSection(name)
	if s == nil {
		return h, fmt.Errorf("no config for %s", name)
	}
	scan := func(key, format string, n int, args ...interface{}) error {
		got, err := s.Parse(key, format, args...)
		if err != nil {
			return fmt.Errorf("%s: %v", key, err)
		}
		if got != n {
			return fmt.Errorf("%s: argument count", key)
		}
		return nil
	}
	if err := scan("encoder", "%d,%d", 2, &h.PinA, &h.PinB); err != nil {
		return h, err
	}
	if err := scan("pulses", "%d", 1, &h.Pulses); err != nil {
		return h, err
	}
	if err := scan("radius", "%f", 1, &h.Radius); err != nil {
		return h, err
	}
	i, err := s.GetArg("interval")
	if err != nil {
		return h, fmt.Errorf("interval: %v", err)
	}
	h.Interval, err = time.ParseDuration(i)
	if err != nil {
		return h, fmt.Errorf("interval: %v", err)
	}
	if s.Has("baud") {
		if err := scan("baud", "%d", 1, &h.Baud); err != nil {
			return h, err
		}
	}
	if s.Has("serial") {
		e := s.Get("serial")
		if len(e) != 1 || len(e[0].Tokens) < 1 || len(e[0].Tokens) > 2 {
			return h, fmt.Errorf("serial: expected port[,baud]")
		}
		h.Serial = e[0].Tokens[0]
		if len(e[0].Tokens) == 2 {
			h.Baud, err = strconv.Atoi(e[0].Tokens[1])
			if err != nil {
				return h, fmt.Errorf("serial: baud rate: %v", err)
			}
		}
	}
	flag := func(key string, v *bool) error {
		if !s.Has(key) {
			return nil
		}
		var n int
		if err := scan(key, "%d", 1, &n); err != nil {
			return err
		}
		*v = n != 0
		return nil
	}
	if err := flag("debug", &h.Debug); err != nil {
		return h, err
	}
	if err := flag("rpm", &h.RPM); err != nil {
		return h, err
	}
	return h, h.Validate()
}

// Wheel combines the encoder I/O and the Encoder for one wheel.
type Wheel struct {
	Pulse   *io.Gpio
	Dir     *io.Gpio
	Encoder *Encoder
	Config  WheelConfig
}

// NewWheel opens the encoder GPIOs from the wheel configuration.
// The pulse channel is edge triggered on the rising edge,
// the direction channel is read as a level.
func NewWheel(wc WheelConfig) (*Wheel, error) {
	w := &Wheel{Config: wc, Encoder: NewEncoder(wc.Name)}
	var err error
	w.Pulse, err = io.EdgePin(wc.PinA, io.RISING)
	if err != nil {
		return nil, fmt.Errorf("Encoder pulse %d: %v", wc.PinA, err)
	}
	w.Dir, err = io.Pin(wc.PinB)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("Encoder direction %d: %v", wc.PinB, err)
	}
	return w, nil
}

// Watch runs the encoder driver on the wheel's GPIOs.
func (w *Wheel) Watch() error {
	return w.Encoder.Watch(w.Pulse, w.Dir)
}

// Close releases the wheel's GPIOs.
func (w *Wheel) Close() {
	if w.Pulse != nil {
		w.Pulse.Close()
	}
	if w.Dir != nil {
		w.Dir.Close()
	}
}
