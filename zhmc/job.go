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
	"time"
)

// Job represents an in-flight asynchronous HMC operation, identified by the
// job-uri returned in a 202 response.
type Job struct {
	session   *Session
	uri       string
	opMethod  string
	opURI     string
}

// NewJob wraps a job-uri returned by the HMC for the given originating
// method and URI.
func NewJob(session *Session, jobURI, opMethod, opURI string) *Job {
	return &Job{session: session, uri: jobURI, opMethod: opMethod, opURI: opURI}
}

// URI returns the job resource's URI.
func (j *Job) URI() string { return j.uri }

// CheckForCompletion fetches the job's current status. Until the job is
// complete, it returns (status, nil, nil) with the status the HMC reports. On completion with a job-status-code in
// [200,400), it deletes the job resource and returns ("complete",
// job-results, nil). Otherwise it returns an *HTTPError built from the
// job-status-code/job-reason-code/job-results.
func (j *Job) CheckForCompletion(ctx context.Context) (string, map[string]any, error) {
	body, err := j.session.Get(ctx, j.uri, true, true)
	if err != nil {
		return "", nil, err
	}

	status, _ := body["status"].(string)
	if status != "complete" {
		return status, nil, nil
	}

	jobStatusCode := toInt(body["job-status-code"])
	jobReasonCode := toInt(body["job-reason-code"])
	jobResults, _ := body["job-results"].(map[string]any)

	// Release the job resource regardless of outcome; the source does
	// this for both success and failure completions.
	_ = j.session.Delete(ctx, j.uri, true)

	if jobStatusCode >= 200 && jobStatusCode < 400 {
		return "complete", jobResults, nil
	}

	msg := ""
	if jobResults != nil {
		if m, ok := jobResults["error"].(string); ok {
			msg = m
		} else if m, ok := jobResults["message"].(string); ok {
			msg = m
		}
	}
	return "complete", nil, &HTTPError{
		HTTPStatus:    jobStatusCode,
		Reason:        jobReasonCode,
		Message:       msg,
		RequestURI:    j.opURI,
		RequestMethod: j.opMethod,
		Body:          jobResults,
	}
}

// WaitForCompletion polls CheckForCompletion at the session's configured
// JobPollInterval until the job completes or operationTimeout elapses (nil
// means wait forever). Completion observed on the final poll always wins
// over a timeout computed at the top of that same iteration.
func (j *Job) WaitForCompletion(ctx context.Context, operationTimeout *time.Duration) (map[string]any, error) {
	var deadline time.Time
	hasDeadline := operationTimeout != nil
	if hasDeadline {
		deadline = time.Now().Add(*operationTimeout)
	}

	interval := j.session.retryTimeout.JobPollInterval

	for {
		timedOut := hasDeadline && time.Now().After(deadline)

		status, results, err := j.CheckForCompletion(ctx)
		if err != nil {
			return nil, err
		}
		if status == "complete" {
			return results, nil
		}

		if timedOut {
			return nil, &OperationTimeout{JobURI: j.uri, Timeout: operationTimeout.String()}
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Cancel deletes the job resource, abandoning it without waiting for
// completion.
func (j *Job) Cancel(ctx context.Context) error {
	return j.session.Delete(ctx, j.uri, true)
}
