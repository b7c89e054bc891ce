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

// WaitForStatus polls r's "status" property every pollInterval until it is
// in expected (plus exceptions, if allowExceptions is true), or raises
// StatusTimeout once timeout has elapsed.
func WaitForStatus(ctx context.Context, r Resource, expected []string, exceptions []string, allowExceptions bool, pollInterval, timeout time.Duration) error {
	acceptable := make(map[string]bool, len(expected)+len(exceptions))
	for _, s := range expected {
		acceptable[s] = true
	}
	if allowExceptions {
		for _, s := range exceptions {
			acceptable[s] = true
		}
	}

	deadline := time.Now().Add(timeout)

	for {
		timedOut := time.Now().After(deadline)

		if err := r.PullFullProperties(ctx); err != nil {
			return err
		}
		status, _ := r.Prop("status", "").(string)
		if acceptable[status] {
			return nil
		}

		if timedOut {
			expectedList := make([]string, 0, len(acceptable))
			for s := range acceptable {
				expectedList = append(expectedList, s)
			}
			return &StatusTimeout{
				ResourceURI:    r.URI(),
				ActualStatus:   status,
				ExpectedStatus: expectedList,
				Timeout:        timeout.String(),
			}
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
