// zhmcclient is a Go client library for the IBM Z Hardware Management
// Console Web Services API.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package zhmc

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TimeStatEntry is a snapshot of the timing counters for one operation key.
type TimeStatEntry struct {
	Key   string
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Avg returns the mean duration, or zero if Count is zero.
func (e TimeStatEntry) Avg() time.Duration {
	if e.Count == 0 {
		return 0
	}
	return e.Total / time.Duration(e.Count)
}

type statEntry struct {
	count int
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// TimeStats is a per-operation instrumentation keeper, keyed by
// "<METHOD> <uri>" with the request URI exactly as issued (resource ids and
// query strings included; URIs are not reduced to templates). The
// count/avg/min/max table is disabled by default and records nothing until
// Enable() is called; the Prometheus counters are always updated.
type TimeStats struct {
	mu      sync.Mutex
	enabled bool
	entries map[string]*statEntry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	registry *prometheus.Registry
}

// NewTimeStats creates a disabled TimeStats backed by its own private
// Prometheus registry, so multiple Clients in one process never collide on
// metric names.
func NewTimeStats() *TimeStats {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zhmc",
		Subsystem: "session",
		Name:      "requests_total",
		Help:      "Total HMC requests grouped by operation key and outcome.",
	}, []string{"op", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zhmc",
		Subsystem: "session",
		Name:      "request_duration_seconds",
		Help:      "Duration of HMC requests by operation key.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"op"})

	registry.MustRegister(requests, duration)

	return &TimeStats{
		entries:  make(map[string]*statEntry),
		requests: requests,
		duration: duration,
		registry: registry,
	}
}

// Enable turns on recording of subsequent calls.
func (t *TimeStats) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = true
}

// Disable turns off recording; already-collected entries are kept.
func (t *TimeStats) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enabled reports whether recording is currently on.
func (t *TimeStats) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Record adds one observation for key (e.g. "GET /api/cpcs") taking d. The
// Prometheus counters are always updated regardless of Enabled(), so the
// /metrics endpoint reflects real traffic even when the in-process
// TimeStats table is off; the count/avg/min/max table is the opt-in part.
func (t *TimeStats) Record(key string, d time.Duration, outcome string) {
	t.requests.WithLabelValues(key, outcome).Inc()
	t.duration.WithLabelValues(key).Observe(d.Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	e, ok := t.entries[key]
	if !ok {
		e = &statEntry{min: d, max: d}
		t.entries[key] = e
	}
	e.count++
	e.total += d
	if d < e.min {
		e.min = d
	}
	if d > e.max {
		e.max = d
	}
}

// Snapshot returns the current entries sorted by key for deterministic
// printing.
func (t *TimeStats) Snapshot() []TimeStatEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TimeStatEntry, 0, len(t.entries))
	for k, e := range t.entries {
		out = append(out, TimeStatEntry{Key: k, Count: e.count, Total: e.total, Min: e.min, Max: e.max})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// String renders a table of the current snapshot, mirroring the
// time_statistics pretty-printer of the original client.
func (t *TimeStats) String() string {
	entries := t.Snapshot()
	if len(entries) == 0 {
		return "(no time statistics recorded)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %8s %10s %10s %10s\n", "Operation", "Count", "Avg(ms)", "Min(ms)", "Max(ms)")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-40s %8d %10.1f %10.1f %10.1f\n",
			e.Key, e.Count,
			float64(e.Avg().Microseconds())/1000,
			float64(e.Min.Microseconds())/1000,
			float64(e.Max.Microseconds())/1000,
		)
	}
	return b.String()
}

// Handler exposes the private Prometheus registry in the standard exposition
// format, the same shape as the teacher's metrics.Handler().
func (t *TimeStats) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
