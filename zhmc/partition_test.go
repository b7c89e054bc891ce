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
	"sync"
	"sync/atomic"
	"testing"
)

// fakePartitionServer is a minimal stateful fake of one CPC's partitions
// collection, supporting create and delete so the create/delete/recreate
// round trip (end-to-end scenario 3) can be exercised.
type fakePartitionServer struct {
	mu     sync.Mutex
	nextID int32
	parts  map[string]map[string]any
}

func newFakePartitionServer() *fakePartitionServer {
	return &fakePartitionServer{parts: map[string]map[string]any{}}
}

func (f *fakePartitionServer) register(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc("/api/cpcs/cpc1/partitions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			n := atomic.AddInt32(&f.nextID, 1)
			uri := "/api/partitions/p" + string(rune('0'+n))
			body["object-uri"] = uri
			body["class"] = "partition"
			f.parts[uri] = body
			_ = json.NewEncoder(w).Encode(map[string]any{"object-uri": uri})
			return
		}
		list := make([]any, 0, len(f.parts))
		for _, props := range f.parts {
			list = append(list, props)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"partitions": list})
	})
	mux.HandleFunc("/api/partitions/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		uri := r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(f.parts[uri])
		case http.MethodDelete:
			delete(f.parts, uri)
			_ = json.NewEncoder(w).Encode(map[string]any{})
		}
	})
}

// TestPartition_CreateDeleteRecreate covers end-to-end scenario 3: deleting
// a partition and recreating one with the same name yields a distinct URI
// and the new instance's own properties, not the deleted one's.
func TestPartition_CreateDeleteRecreate(t *testing.T) {
	fake := newFakePartitionServer()
	mux := http.NewServeMux()
	fake.register(mux)
	session, srv := newTestSession(t, mux)
	defer srv.Close()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}
	mgr := NewPartitionManager(session, cpc)

	first, err := mgr.Create(context.Background(), map[string]any{"name": "PART1", "description": "first"})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if err := first.Delete(context.Background()); err != nil {
		t.Fatalf("Delete first: %v", err)
	}

	second, err := mgr.Create(context.Background(), map[string]any{"name": "PART1", "description": "second"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if second.URI() == first.URI() {
		t.Fatalf("expected recreated partition to get a distinct URI, both are %q", first.URI())
	}
	if got := second.Prop("description", nil); got != "second" {
		t.Fatalf("expected recreated partition's own properties, got description=%v", got)
	}

	found, err := mgr.FindByName(context.Background(), "PART1")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if found.URI() != second.URI() {
		t.Fatalf("expected name lookup to resolve to the recreated instance %q, got %q", second.URI(), found.URI())
	}
}
