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

// Telemetry output

package wheel

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// Reporter receives the sample from each sampling interval.
type Reporter interface {
	Report(*Sample) error
}

// Reporters sends a sample to each reporter in turn, returning the first error.
type Reporters []Reporter

func (r Reporters) Report(s *Sample) error {
	var first error
	for _, rep := range r {
		if err := rep.Report(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LineReporter writes each sample as human readable key:value lines:
//  direction:forward
//  distance:21.99
//  rpm:60.00
// The rpm line is only written if enabled.
type LineReporter struct {
	mu  sync.Mutex
	w   io.Writer
	rpm bool
}

// NewLineReporter creates a LineReporter writing to w.
func NewLineReporter(w io.Writer, rpm bool) *LineReporter {
	return &LineReporter{w: w, rpm: rpm}
}

// Report writes the sample.
func (l *LineReporter) Report(s *Sample) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, Format(s, l.rpm))
	return err
}

// Format returns the telemetry lines for a sample.
func Format(s *Sample, rpm bool) string {
	var b strings.Builder
	dir := "reverse"
	if s.Forward {
		dir = "forward"
	}
	fmt.Fprintf(&b, "direction:%s\n", dir)
	fmt.Fprintf(&b, "distance:%.2f\n", s.Distance)
	if rpm {
		fmt.Fprintf(&b, "rpm:%.2f\n", s.RPM)
	}
	return b.String()
}

// OpenSerial opens a serial port for telemetry output, as 8 data bits,
// no parity and 1 stop bit.
func OpenSerial(port string, baud int) (io.WriteCloser, error) {
	p, err := serial.Open(port, SerialMode(baud))
	if err != nil {
		return nil, fmt.Errorf("%s: %v", port, err)
	}
	return p, nil
}

// SerialMode returns the serial port mode used for telemetry.
func SerialMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}
