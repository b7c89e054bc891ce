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
	"errors"
	"net/http"
	"testing"
)

func registerChangeAdapterType(mux *http.ServeMux, uri string, status, reason int) {
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc(uri+"/operations/change-adapter-type", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"http-status": status, "reason": reason})
	})
}

// TestAdapter_ChangeAdapterType_NonFiconRejected covers end-to-end scenario
// 5's OSA leg: an OSA (non-FICON-family) adapter rejects
// change-adapter-type with HTTP 400/18, which the client surfaces
// unmodified rather than pre-validating.
func TestAdapter_ChangeAdapterType_NonFiconRejected(t *testing.T) {
	mux := http.NewServeMux()
	registerChangeAdapterType(mux, "/api/adapters/osa1", 400, 18)
	session, srv := newTestSession(t, mux)
	defer srv.Close()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}
	adapter := &Adapter{ResourceBase: NewResourceBase(NewAdapterManager(session, cpc), cpc, "/api/adapters/osa1", "adapter",
		map[string]any{"object-uri": "/api/adapters/osa1", "name": "OSA1", "adapter-family": "osa", "type": "osd"}, true)}

	err := adapter.ChangeAdapterType(context.Background(), "osd")
	if err == nil {
		t.Fatalf("expected HTTPError for non-FICON adapter")
	}
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if he.HTTPStatus != 400 || he.Reason != 18 {
		t.Fatalf("expected HTTPError{400,18}, got {%d,%d}", he.HTTPStatus, he.Reason)
	}
}

// TestAdapter_ChangeAdapterType_IdentityChangeRejected covers end-to-end
// scenario 5's FICON leg: requesting the adapter's current type is an
// identity change and fails with HTTP 400/8.
func TestAdapter_ChangeAdapterType_IdentityChangeRejected(t *testing.T) {
	mux := http.NewServeMux()
	registerChangeAdapterType(mux, "/api/adapters/fc1", 400, 8)
	session, srv := newTestSession(t, mux)
	defer srv.Close()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}
	adapter := &Adapter{ResourceBase: NewResourceBase(NewAdapterManager(session, cpc), cpc, "/api/adapters/fc1", "adapter",
		map[string]any{"object-uri": "/api/adapters/fc1", "name": "FC1", "adapter-family": ficonFamily, "type": "fc"}, true)}

	err := adapter.ChangeAdapterType(context.Background(), "fc")
	if err == nil {
		t.Fatalf("expected HTTPError for identity type change")
	}
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if he.HTTPStatus != 400 || he.Reason != 8 {
		t.Fatalf("expected HTTPError{400,8}, got {%d,%d}", he.HTTPStatus, he.Reason)
	}
}
