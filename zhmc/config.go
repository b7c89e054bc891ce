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

import "time"

// RetryTimeoutConfig carries the tunables a Session uses for connect/read
// timeouts, status/job polling, and retry backoff. NewSession replaces every
// zero-valued field with its DefaultRetryTimeoutConfig value, so a zero
// value yields the defaults and a partly filled one overrides only the
// fields that are set.
type RetryTimeoutConfig struct {
	ConnectTimeout     time.Duration
	ReadTimeout        time.Duration
	StatusPollInterval time.Duration
	StatusTimeout      time.Duration
	JobPollInterval    time.Duration

	// OperationTimeout bounds Job.WaitForCompletion; nil means wait
	// forever, matching the source's default.
	OperationTimeout *time.Duration

	// NameCacheTTL is the TTL applied to every Manager's NameUriCache.
	// Not named in the source; spec leaves this as an open question, so
	// a small value in the suggested 1-5s band is used by default.
	NameCacheTTL time.Duration

	MaxRetries   int
	BackoffBase  time.Duration
	BackoffCap   time.Duration
	JitterFrac   float64
}

// DefaultRetryTimeoutConfig returns the documented defaults: connect 10s,
// read 30m (HMC operations can be long-running), status-poll 1s,
// status-timeout 60s, job-poll 1s, operation-timeout unset (wait forever).
func DefaultRetryTimeoutConfig() RetryTimeoutConfig {
	return RetryTimeoutConfig{
		ConnectTimeout:     10 * time.Second,
		ReadTimeout:        30 * time.Minute,
		StatusPollInterval: 1 * time.Second,
		StatusTimeout:      60 * time.Second,
		JobPollInterval:    1 * time.Second,
		OperationTimeout:   nil,
		NameCacheTTL:       2 * time.Second,
		MaxRetries:         4,
		BackoffBase:        500 * time.Millisecond,
		BackoffCap:         3 * time.Second,
		JitterFrac:         0.3,
	}
}

func (c RetryTimeoutConfig) normalized() RetryTimeoutConfig {
	d := DefaultRetryTimeoutConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.StatusPollInterval <= 0 {
		c.StatusPollInterval = d.StatusPollInterval
	}
	if c.StatusTimeout <= 0 {
		c.StatusTimeout = d.StatusTimeout
	}
	if c.JobPollInterval <= 0 {
		c.JobPollInterval = d.JobPollInterval
	}
	if c.NameCacheTTL <= 0 {
		c.NameCacheTTL = d.NameCacheTTL
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = d.BackoffBase
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = d.BackoffCap
	}
	if c.JitterFrac <= 0 {
		c.JitterFrac = d.JitterFrac
	}
	return c
}
