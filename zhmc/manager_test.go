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
	"sort"
	"testing"
)

func registerPartitionFixture(mux *http.ServeMux, names []string) {
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc("/api/cpcs/cpc1/partitions", func(w http.ResponseWriter, r *http.Request) {
		// Like the HMC, the fixture applies a name query parameter as a
		// regular-expression filter on the server side.
		pattern := r.URL.Query().Get("name")
		list := make([]any, 0, len(names))
		for i, name := range names {
			if pattern != "" && !matchesFilter(name, pattern, false) {
				continue
			}
			list = append(list, map[string]any{
				"object-uri": "/api/partitions/p" + string(rune('0'+i)),
				"name":       name,
				"class":      "partition",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"partitions": list})
	})
}

// TestManager_FilterArgsRegexMatch covers the "filter_args regex match"
// round-trip property: "^foo$" matches exactly equal names, ".+" matches
// everything, "foo.*" matches names starting with foo.
func TestManager_FilterArgsRegexMatch(t *testing.T) {
	names := []string{"foo", "foobar", "barfoo", "baz"}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"^foo$", []string{"foo"}},
		{".+", []string{"foo", "foobar", "barfoo", "baz"}},
		{"foo.*", []string{"foo", "foobar"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			mux := http.NewServeMux()
			registerPartitionFixture(mux, names)
			session, srv := newTestSession(t, mux)
			defer srv.Close()

			cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}
			mgr := NewPartitionManager(session, cpc)

			resources, err := mgr.List(context.Background(), false, map[string]any{"name": tt.pattern})
			if err != nil {
				t.Fatalf("List: %v", err)
			}

			got := make([]string, 0, len(resources))
			for _, r := range resources {
				got = append(got, r.Name())
			}
			sort.Strings(got)
			want := append([]string(nil), tt.want...)
			sort.Strings(want)

			if len(got) != len(want) {
				t.Fatalf("pattern %q: got %v, want %v", tt.pattern, got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("pattern %q: got %v, want %v", tt.pattern, got, want)
				}
			}
		})
	}
}

func TestManager_FindRaisesNoUniqueMatch(t *testing.T) {
	mux := http.NewServeMux()
	registerPartitionFixture(mux, []string{"dup", "dup"})
	session, srv := newTestSession(t, mux)
	defer srv.Close()

	cpc := &Cpc{ResourceBase: NewResourceBase(NewCpcManager(session), nil, "/api/cpcs/cpc1", "cpc", nil, false)}
	mgr := NewPartitionManager(session, cpc)

	// A second filter key keeps the lookup off the NameUriCache, which holds
	// one URI per name, so both same-named partitions come back from List.
	_, err := mgr.Find(context.Background(), map[string]any{"name": "dup", "class": "partition"})
	if err == nil {
		t.Fatalf("expected NoUniqueMatch for two same-named partitions")
	}
	if _, ok := err.(*NoUniqueMatch); !ok {
		t.Fatalf("expected *NoUniqueMatch, got %T: %v", err, err)
	}
}
