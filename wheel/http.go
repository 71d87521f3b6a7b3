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

// HTTP server for wheel status

package wheel

import (
	"fmt"
	"io"
	"log"
	"math"
	"net/http"

	"github.com/fogleman/gg"
)

const (
	imageSize = 400
	wheelSize = 150 // Radius of drawn wheel
	spokes    = 6
)

// Handler returns the status handlers for the odometer:
//  /wheel.png  image of the wheel at its current angle, with the readings
//  /status     the latest sample as telemetry lines, including RPM
//  /metrics    Prometheus metrics, if m is not nil
func Handler(o *Odometer, m *Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wheel.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if err := drawWheel(w, o); err != nil {
			log.Printf("%s: error writing image: %v", o.Name, err)
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		s := o.Latest()
		io.WriteString(w, Format(&s, true))
	})
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}
	return mux
}

// Server serves the status handlers on the port. It only returns on error.
func Server(port int, o *Odometer, m *Metrics) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("%s: Starting server on %s", o.Name, addr)
	server := &http.Server{Addr: addr, Handler: Handler(o, m)}
	return server.ListenAndServe()
}

// Angle returns the rotation of the wheel in radians, in the range [0, 2π).
// Only the pulses sampled so far are included.
func Angle(o *Odometer) float64 {
	pos, ppr := o.Position()
	p := pos % int64(ppr)
	if p < 0 {
		p += int64(ppr)
	}
	return float64(p) * 2 * math.Pi / float64(ppr)
}

func drawWheel(w io.Writer, o *Odometer) error {
	s := o.Latest()
	c := gg.NewContext(imageSize, imageSize)
	c.SetRGB(1, 1, 1)
	c.Clear()
	mid := float64(imageSize) / 2
	c.SetRGB(0, 0, 0)
	c.SetLineWidth(8)
	c.DrawCircle(mid, mid, wheelSize)
	c.Stroke()
	a := Angle(o)
	c.SetLineWidth(2)
	for i := 0; i < spokes; i++ {
		r := a + float64(i)*2*math.Pi/spokes
		c.DrawLine(mid, mid, mid+wheelSize*math.Sin(r), mid-wheelSize*math.Cos(r))
	}
	c.Stroke()
	// Reference spoke
	c.SetRGB(1, 0, 0)
	c.SetLineWidth(4)
	c.DrawLine(mid, mid, mid+wheelSize*math.Sin(a), mid-wheelSize*math.Cos(a))
	c.Stroke()
	c.SetRGB(0, 0, 1)
	c.DrawString(fmt.Sprintf("%s: %.2f cm", o.Name, s.Distance), 10, 20)
	c.DrawString(fmt.Sprintf("%.2f RPM  %.3f m/s", s.RPM, s.Velocity), 10, imageSize-10)
	return c.EncodePNG(w)
}
