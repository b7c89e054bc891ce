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
	"sync/atomic"
	"testing"
	"time"
)

func registerStatusFixture(mux *http.ServeMux, statuses []string) *int32 {
	var calls int32
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc("/api/cpcs/cpc1", func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object-uri": "/api/cpcs/cpc1",
			"name":       "CPC1",
			"class":      "cpc",
			"status":     statuses[n],
		})
	})
	return &calls
}

func TestWaitForStatus_ReachesExpected(t *testing.T) {
	mux := http.NewServeMux()
	registerStatusFixture(mux, []string{"starting", "starting", "active"})
	session, srv := newTestSession(t, mux)
	defer srv.Close()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}

	err := WaitForStatus(context.Background(), cpc, []string{"active"}, nil, false, time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("WaitForStatus: %v", err)
	}
	if got := cpc.Prop("status", ""); got != "active" {
		t.Fatalf("expected final status active, got %v", got)
	}
}

func TestWaitForStatus_AllowedException(t *testing.T) {
	mux := http.NewServeMux()
	registerStatusFixture(mux, []string{"degraded"})
	session, srv := newTestSession(t, mux)
	defer srv.Close()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}

	err := WaitForStatus(context.Background(), cpc, []string{"active"}, []string{"degraded"}, true, time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("expected degraded to be accepted as an exception, got %v", err)
	}
}

func TestWaitForStatus_TimesOut(t *testing.T) {
	mux := http.NewServeMux()
	registerStatusFixture(mux, []string{"starting"})
	session, srv := newTestSession(t, mux)
	defer srv.Close()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}

	err := WaitForStatus(context.Background(), cpc, []string{"active"}, nil, false, time.Millisecond, 20*time.Millisecond)
	if err == nil {
		t.Fatalf("expected StatusTimeout")
	}
	if _, ok := err.(*StatusTimeout); !ok {
		t.Fatalf("expected *StatusTimeout, got %T: %v", err, err)
	}
}
