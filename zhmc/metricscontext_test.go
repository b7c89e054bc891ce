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
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

// TestMetricsContext_GetMetrics covers end-to-end scenario 6: a context
// created for ["partition-usage"] parses a textual metrics snapshot into
// one group with one MetricObjectValues per partition URI, values keyed by
// the cached metric definitions' names in order.
func TestMetricsContext_GetMetrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc("/api/services/metrics/context", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object-uri": "/api/services/metrics/context/ctx1",
			"metric-group-infos": []any{
				map[string]any{
					"group-name": "partition-usage",
					"metric-infos": []any{
						map[string]any{"metric-name": "processor-usage", "metric-type": "integer-metric", "unit": "percent"},
						map[string]any{"metric-name": "network-usage", "metric-type": "integer-metric", "unit": "percent"},
					},
				},
			},
		})
	})
	mux.HandleFunc("/api/services/metrics/context/ctx1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(
			"\"partition-usage\"\n" +
				"  \"/api/partitions/p1\"\n" +
				"    42,7\n" +
				"  \"/api/partitions/p2\"\n" +
				"    13,2\n" +
				"\n",
		))
	})

	session, srv := newTestSession(t, mux)
	defer srv.Close()

	mgr := NewMetricsContextManager(session)
	ctx, err := mgr.Create(context.Background(), 15, []string{"partition-usage"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	def, ok := ctx.GroupDefinition("partition-usage")
	if !ok || len(def.Definitions) != 2 {
		t.Fatalf("expected cached group definition with 2 metrics, got %+v (ok=%v)", def, ok)
	}

	resp, err := ctx.GetMetrics(context.Background())
	if err != nil {
		t.Fatalf("GetMetrics: %v", err)
	}

	group, ok := resp.GroupNamed("partition-usage")
	if !ok {
		t.Fatalf("expected partition-usage group in response")
	}
	if len(group.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(group.Objects))
	}

	byURI := map[string]MetricObjectValues{}
	for _, obj := range group.Objects {
		byURI[obj.ResourceURI] = obj
	}

	p1, ok := byURI["/api/partitions/p1"]
	if !ok {
		t.Fatalf("expected values for /api/partitions/p1")
	}
	if p1.Values["processor-usage"] != int64(42) {
		t.Fatalf("expected processor-usage 42, got %v (%T)", p1.Values["processor-usage"], p1.Values["processor-usage"])
	}
	if p1.Values["network-usage"] != int64(7) {
		t.Fatalf("expected network-usage 7, got %v", p1.Values["network-usage"])
	}

	p2, ok := byURI["/api/partitions/p2"]
	if !ok {
		t.Fatalf("expected values for /api/partitions/p2")
	}
	if p2.Values["processor-usage"] != int64(13) {
		t.Fatalf("expected processor-usage 13, got %v", p2.Values["processor-usage"])
	}
}
