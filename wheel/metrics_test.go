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
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "left")
	require.NoError(t, err)
	require.NoError(t, m.Report(&Sample{Pulses: 150, Edges: 150, RPM: 60, Velocity: 0.22, Distance: 21.99}))
	require.NoError(t, m.Report(&Sample{Pulses: -30, Edges: 50, RPM: -12, Velocity: -0.044, Distance: 17.59}))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Samples))
	// A reversal within the second window counts every edge, not the net.
	assert.Equal(t, 200.0, testutil.ToFloat64(m.Edges))
	assert.Equal(t, -30.0, testutil.ToFloat64(m.Pulses))
	assert.Equal(t, -12.0, testutil.ToFloat64(m.RPM))
	assert.Equal(t, -0.044, testutil.ToFloat64(m.Velocity))
	assert.Equal(t, 17.59, testutil.ToFloat64(m.Distance))
}

func TestMetricsMultipleWheels(t *testing.T) {
	reg := prometheus.NewRegistry()
	left, err := NewMetrics(reg, "left")
	require.NoError(t, err)
	right, err := NewMetrics(reg, "right")
	require.NoError(t, err)
	left.Report(&Sample{RPM: 10})
	right.Report(&Sample{RPM: 20})
	assert.Equal(t, 10.0, testutil.ToFloat64(left.RPM))
	assert.Equal(t, 20.0, testutil.ToFloat64(right.RPM))
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "left")
	require.NoError(t, err)
	m.Report(&Sample{Distance: 5})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `wheel_distance_centimeters{wheel="left"} 5`)
}
