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
	"net/http"
)

// Client is the top-level entry point: it owns the Session and the
// top-level Managers (Cpcs, Consoles, MetricsContexts).
type Client struct {
	session         *Session
	Cpcs            *CpcManager
	Consoles        *ConsoleManager
	MetricsContexts *MetricsContextManager
}

// NewClient constructs a Client over an already-built Session.
func NewClient(session *Session) *Client {
	c := &Client{session: session}
	c.Cpcs = NewCpcManager(session)
	c.Consoles = NewConsoleManager(session)
	c.MetricsContexts = NewMetricsContextManager(session)
	return c
}

// Session returns the underlying Session.
func (c *Client) Session() *Session { return c.session }

// MetricsHandler exposes the client's TimeStats as a Prometheus scrape
// endpoint.
func (c *Client) MetricsHandler() http.Handler {
	return c.session.TimeStats().Handler()
}

// APIVersionInfo is the parsed response of QueryAPIVersion.
type APIVersionInfo struct {
	APIMajorVersion int    `json:"api-major-version"`
	APIMinorVersion int    `json:"api-minor-version"`
	HMCVersion      string `json:"hmc-version"`
	HMCName         string `json:"hmc-name"`
}

// QueryAPIVersion queries the HMC's supported API version and identity.
// This endpoint does not require a session-id.
func (c *Client) QueryAPIVersion(ctx context.Context) (*APIVersionInfo, error) {
	body, err := c.session.Get(ctx, "/api/version", false, true)
	if err != nil {
		return nil, err
	}
	info := &APIVersionInfo{}
	if v, ok := body["api-major-version"]; ok {
		info.APIMajorVersion = toInt(v)
	}
	if v, ok := body["api-minor-version"]; ok {
		info.APIMinorVersion = toInt(v)
	}
	if v, ok := body["hmc-version"].(string); ok {
		info.HMCVersion = v
	}
	if v, ok := body["hmc-name"].(string); ok {
		info.HMCName = v
	}
	return info, nil
}

// VersionInfo returns (major, minor) as a numeric tuple, the shape used by
// compatibility checks against feature availability.
func (c *Client) VersionInfo(ctx context.Context) (int, int, error) {
	info, err := c.QueryAPIVersion(ctx)
	if err != nil {
		return 0, 0, err
	}
	return info.APIMajorVersion, info.APIMinorVersion, nil
}

// InventoryEntry is one resource returned by GetInventory.
type InventoryEntry struct {
	Class      string
	Properties map[string]any
}

// GetInventory bulk-fetches resources across one or more kinds in a single
// call, a convenience the source provides for fleet-wide discovery.
func (c *Client) GetInventory(ctx context.Context, resourceKinds []string) ([]InventoryEntry, error) {
	body := map[string]any{"resource-classes": resourceKinds}
	respBody, err := c.session.Post(ctx, "/api/services/inventory", body, true, true, nil, true)
	if err != nil {
		return nil, err
	}
	raw, _ := respBody["resources"].([]any)
	out := make([]InventoryEntry, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		class, _ := m["class"].(string)
		out = append(out, InventoryEntry{Class: class, Properties: m})
	}
	return out, nil
}
