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
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports the samples of a wheel as Prometheus metrics.
// It is a Reporter, so it can be added alongside the telemetry output.
type Metrics struct {
	gatherer prometheus.Gatherer

	Samples  prometheus.Counter
	Edges    prometheus.Counter
	Pulses   prometheus.Gauge
	RPM      prometheus.Gauge
	Velocity prometheus.Gauge
	Distance prometheus.Gauge
}

// NewMetrics registers the metrics for the named wheel against reg,
// defaulting to the global Prometheus registry when nil.
func NewMetrics(reg prometheus.Registerer, name string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{gatherer: prometheus.DefaultGatherer}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	samples, err := registerCounterVec(reg, "wheel_samples_total", "Number of sampling intervals completed.")
	if err != nil {
		return nil, err
	}
	edges, err := registerCounterVec(reg, "wheel_encoder_pulses_total", "Encoder pulses sampled, in either direction.")
	if err != nil {
		return nil, err
	}
	pulses, err := registerGaugeVec(reg, "wheel_window_pulses", "Net encoder pulses in the last sampling interval.")
	if err != nil {
		return nil, err
	}
	rpm, err := registerGaugeVec(reg, "wheel_rpm", "Wheel speed in revolutions per minute.")
	if err != nil {
		return nil, err
	}
	vel, err := registerGaugeVec(reg, "wheel_velocity_meters_per_second", "Linear velocity of the wheel.")
	if err != nil {
		return nil, err
	}
	dist, err := registerGaugeVec(reg, "wheel_distance_centimeters", "Cumulative distance travelled.")
	if err != nil {
		return nil, err
	}
	m.Samples = samples.WithLabelValues(name)
	m.Edges = edges.WithLabelValues(name)
	m.Pulses = pulses.WithLabelValues(name)
	m.RPM = rpm.WithLabelValues(name)
	m.Velocity = vel.WithLabelValues(name)
	m.Distance = dist.WithLabelValues(name)
	return m, nil
}

// Report updates the metrics from a sample.
func (m *Metrics) Report(s *Sample) error {
	m.Samples.Inc()
	m.Edges.Add(float64(s.Edges))
	m.Pulses.Set(float64(s.Pulses))
	m.RPM.Set(s.RPM)
	m.Velocity.Set(s.Velocity)
	m.Distance.Set(s.Distance)
	return nil
}

// Handler exposes the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, name, help string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{"wheel"})
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, name, help string) (*prometheus.GaugeVec, error) {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{"wheel"})
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
