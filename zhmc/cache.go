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
	"sync"
	"time"
)

// NameUriCache maps resource name -> URI for one Manager, with a TTL and
// explicit invalidation. Populating the cache lists *all* entries for the
// manager in one call, so repeated FindByName lookups within a TTL window
// cost exactly one list.
type NameUriCache struct {
	mu          sync.RWMutex
	ttl         time.Duration
	entries     map[string]string
	lastRefresh time.Time
	populated   bool

	// populate lists every (name, uri) pair for the owning manager. It is
	// supplied by ManagerBase so NameUriCache has no dependency on the
	// HTTP layer.
	populate func() (map[string]string, error)
}

// NewNameUriCache constructs a cache with the given TTL and populate
// callback.
func NewNameUriCache(ttl time.Duration, populate func() (map[string]string, error)) *NameUriCache {
	return &NameUriCache{ttl: ttl, entries: make(map[string]string), populate: populate}
}

func (c *NameUriCache) expired() bool {
	return !c.populated || time.Since(c.lastRefresh) > c.ttl
}

// Get returns the URI for name, populating the cache via list() if it is
// absent or the TTL has expired.
func (c *NameUriCache) Get(name string) (string, bool, error) {
	if name == "" {
		return "", false, nil
	}

	c.mu.RLock()
	fresh := !c.expired()
	uri, ok := c.entries[name]
	c.mu.RUnlock()
	if fresh {
		return uri, ok, nil
	}

	if err := c.Refresh(); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	uri, ok = c.entries[name]
	return uri, ok, nil
}

// Update inserts or replaces an entry. Empty or nil names are ignored, per
// the source's rule that empty names are never stored.
func (c *NameUriCache) Update(name, uri string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = uri
}

// Delete removes one entry, if present.
func (c *NameUriCache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Invalidate empties the cache without repopulating it.
func (c *NameUriCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	c.populated = false
}

// Refresh empties then repopulates the cache via a single list() call.
func (c *NameUriCache) Refresh() error {
	fresh, err := c.populate()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = fresh
	c.lastRefresh = time.Now()
	c.populated = true
	return nil
}
