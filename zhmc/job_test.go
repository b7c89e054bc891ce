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

// TestJob_WaitForCompletion_SuccessCode covers invariant 7's success leg:
// job-status-code in [200,400) yields job-results.
func TestJob_WaitForCompletion_SuccessCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc("/api/jobs/j1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":          "complete",
			"job-status-code": 200,
			"job-results":     map[string]any{"partition-uri": "/api/partitions/p1"},
		})
	})

	session, srv := newTestSession(t, mux)
	defer srv.Close()
	if err := session.Logon(context.Background()); err != nil {
		t.Fatalf("Logon: %v", err)
	}

	job := NewJob(session, "/api/jobs/j1", http.MethodPost, "/api/partitions/p1/operations/start")
	results, err := job.WaitForCompletion(context.Background(), nil)
	if err != nil {
		t.Fatalf("WaitForCompletion: %v", err)
	}
	if results["partition-uri"] != "/api/partitions/p1" {
		t.Fatalf("unexpected job results: %v", results)
	}
}

// TestJob_WaitForCompletion_FailureCode covers invariant 7's failure leg:
// a job-status-code outside [200,400) raises HTTPError carrying that code
// and the job-reason-code.
func TestJob_WaitForCompletion_FailureCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"api-session": "S1"})
	})
	mux.HandleFunc("/api/jobs/j1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":           "complete",
			"job-status-code":  409,
			"job-reason-code":  1,
			"job-results":      map[string]any{"message": "conflict"},
		})
	})

	session, srv := newTestSession(t, mux)
	defer srv.Close()
	if err := session.Logon(context.Background()); err != nil {
		t.Fatalf("Logon: %v", err)
	}

	job := NewJob(session, "/api/jobs/j1", http.MethodPost, "/api/partitions/p1/operations/start")
	_, err := job.WaitForCompletion(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected an error for failing job-status-code")
	}
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if he.HTTPStatus != 409 || he.Reason != 1 {
		t.Fatalf("expected HTTPError{409,1}, got {%d,%d}", he.HTTPStatus, he.Reason)
	}
}
