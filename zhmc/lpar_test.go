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

func fastRetryTimeout() RetryTimeoutConfig {
	rt := DefaultRetryTimeoutConfig()
	rt.StatusPollInterval = time.Millisecond
	rt.StatusTimeout = time.Second
	return rt
}

// TestLpar_Activate covers end-to-end scenario 1: activating an LPAR
// against a named profile issues exactly one POST to operations/activate,
// settles at status not-operating, and records the profile name used.
func TestLpar_Activate(t *testing.T) {
	var activateCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc("/api/lpars/l1/operations/activate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&activateCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})
	mux.HandleFunc("/api/lpars/l1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object-uri":                   "/api/lpars/l1",
			"name":                         "LPAR1",
			"class":                        "logical-partition",
			"status":                       "not-operating",
			"last-used-activation-profile": "AP1",
		})
	})

	session, srv := newTestSession(t, mux)
	defer srv.Close()
	session.retryTimeout = fastRetryTimeout()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}
	lpar := &Lpar{ResourceBase: NewResourceBase(NewLparManager(session, cpc), cpc, "/api/lpars/l1", "logical-partition", nil, false)}

	if err := lpar.Activate(context.Background(), "AP1", false, false, nil, nil); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if got := atomic.LoadInt32(&activateCalls); got != 1 {
		t.Fatalf("expected exactly 1 POST to operations/activate, got %d", got)
	}
	if got := lpar.Prop("status", ""); got != "not-operating" {
		t.Fatalf("expected final status not-operating, got %v", got)
	}
	if got := lpar.Prop("last-used-activation-profile", ""); got != "AP1" {
		t.Fatalf("expected last-used-activation-profile AP1, got %v", got)
	}
}

// TestLpar_LoadWithStoreStatus covers end-to-end scenario 2: loading with
// store-status-indicator set while the LPAR is already operating records
// stored-status before the load proceeds, and the final properties reflect
// the load address/type and a cleared memory indicator.
func TestLpar_LoadWithStoreStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc("/api/lpars/l1/operations/load", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})
	mux.HandleFunc("/api/lpars/l1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object-uri":              "/api/lpars/l1",
			"name":                    "LPAR1",
			"class":                   "logical-partition",
			"status":                  "operating",
			"stored-status":           "operating",
			"last-used-load-address":  "5176",
			"last-used-load-type":     loadTypeStandard,
			"memory":                  "",
		})
	})

	session, srv := newTestSession(t, mux)
	defer srv.Close()
	session.retryTimeout = fastRetryTimeout()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}
	lpar := &Lpar{ResourceBase: NewResourceBase(NewLparManager(session, cpc), cpc, "/api/lpars/l1", "logical-partition",
		map[string]any{"object-uri": "/api/lpars/l1", "name": "LPAR1", "status": "operating"}, true)}

	err := lpar.Load(context.Background(), LoadOptions{
		LoadAddress:          "5176",
		ClearIndicator:       true,
		StoreStatusIndicator: true,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := lpar.Prop("status", ""); got != "operating" {
		t.Fatalf("expected final status operating, got %v", got)
	}
	if got := lpar.Prop("stored-status", ""); got != "operating" {
		t.Fatalf("expected stored-status operating, got %v", got)
	}
	if got := lpar.Prop("last-used-load-address", ""); got != "5176" {
		t.Fatalf("expected last-used-load-address 5176, got %v", got)
	}
	if got := lpar.Prop("last-used-load-type", ""); got != loadTypeStandard {
		t.Fatalf("expected last-used-load-type %s, got %v", loadTypeStandard, got)
	}
	if got := lpar.Prop("memory", "unset"); got != "" {
		t.Fatalf("expected memory cleared to empty string, got %v", got)
	}
}
