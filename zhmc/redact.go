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

import "strings"

// redactSecret shows first 2 and last 2 characters with asterisks between,
// for logging session-ids and similar opaque tokens without leaking them.
func redactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + strings.Repeat("*", len(secret)-4) + secret[len(secret)-2:]
}

// redactPassword always returns "[REDACTED]" for any non-empty password so
// no password content ever reaches a log line.
func redactPassword(password string) string {
	if password == "" {
		return ""
	}
	return "[REDACTED]"
}

var sensitiveBodyFields = []string{"password", "secret", "token"}

// isSensitiveField reports whether a JSON field name should be redacted
// before a request/response body is logged.
func isSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range sensitiveBodyFields {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// redactBody returns a shallow copy of body with sensitive fields replaced
// by "[REDACTED]", safe to pass to slog.
func redactBody(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}
	out := make(map[string]any, len(body))
	for k, v := range body {
		if isSensitiveField(k) {
			out[k] = "[REDACTED]"
		} else {
			out[k] = v
		}
	}
	return out
}
