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
	"sync"
)

// Resource is the common capability set shared by every concrete HMC
// resource (Cpc, Partition, Lpar, Adapter, ...). Kind-specific behavior
// (Lpar.Activate, Partition.Start, ...) is added by composition on top of
// ResourceBase rather than by subclassing this interface.
type Resource interface {
	URI() string
	Class() string
	Name() string
	Properties() map[string]any
	Prop(name string, def any) any
	GetProperty(ctx context.Context, name string) (any, error)
	PullFullProperties(ctx context.Context) error
	UpdateProperties(ctx context.Context, newProps map[string]any) error
	Delete(ctx context.Context) error
	Manager() Manager
	Parent() Resource
	CeasedExistence() bool
	SetCeasedExistence()
	ApplyAutoUpdate(changed map[string]any, ceased bool)
}

// ResourceBase implements Resource and is embedded by every concrete
// resource type. Manager and Parent are ordinary back-references to the
// owning manager and the parent resource; the Manager<->Resource cycle is
// left to the garbage collector.
type ResourceBase struct {
	mu         sync.RWMutex
	uri        string
	class      string
	properties map[string]any
	full       bool

	parent  Resource
	manager Manager

	ceasedExistence bool
	autoUpdate      bool
}

// NewResourceBase constructs a ResourceBase. properties should already
// contain at least the uri/class/name properties when known; a nil map is
// treated as empty (not yet fetched).
func NewResourceBase(manager Manager, parent Resource, uri, class string, properties map[string]any, full bool) *ResourceBase {
	if properties == nil {
		properties = make(map[string]any)
	}
	return &ResourceBase{
		uri:        uri,
		class:      class,
		properties: properties,
		full:       full,
		parent:     parent,
		manager:    manager,
	}
}

// URI returns the resource's stable HMC-assigned identifier.
func (r *ResourceBase) URI() string { return r.uri }

// Class returns the resource class name ("cpc", "partition", ...).
func (r *ResourceBase) Class() string { return r.class }

// Name returns the resource's display name, reading the manager's
// configured name property out of the local properties map.
func (r *ResourceBase) Name() string {
	nameProp := "name"
	if r.manager != nil {
		nameProp = r.manager.NameProp()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.properties[nameProp]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Manager returns the owning Manager.
func (r *ResourceBase) Manager() Manager { return r.manager }

// Parent returns the parent Resource, or nil for top-level resources.
func (r *ResourceBase) Parent() Resource { return r.parent }

// CeasedExistence reports whether Delete() has already been observed for
// this resource (either locally or via an auto-update push).
func (r *ResourceBase) CeasedExistence() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ceasedExistence
}

// SetCeasedExistence flips the flag; Delete calls it after a successful
// DELETE, and it is exported so callers can mark a resource deleted without
// a Delete round trip. NotificationReceiver marks deletions through
// ApplyAutoUpdate instead.
func (r *ResourceBase) SetCeasedExistence() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ceasedExistence = true
}

// Properties returns a snapshot copy of the current (possibly partial)
// properties map.
func (r *ResourceBase) Properties() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]any, len(r.properties))
	for k, v := range r.properties {
		out[k] = v
	}
	return out
}

// Prop returns properties[name], or def if absent. Unlike GetProperty it
// never triggers a network call and never errors.
func (r *ResourceBase) Prop(name string, def any) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.properties[name]; ok {
		return v
	}
	return def
}

// GetProperty returns properties[name], pulling full properties first if
// the property is absent and the local cache isn't already full; it
// returns a ConsistencyError if the property is still absent afterward.
func (r *ResourceBase) GetProperty(ctx context.Context, name string) (any, error) {
	r.mu.RLock()
	v, ok := r.properties[name]
	full := r.full
	r.mu.RUnlock()
	if ok {
		return v, nil
	}
	if !full {
		if err := r.PullFullProperties(ctx); err != nil {
			return nil, err
		}
		r.mu.RLock()
		v, ok = r.properties[name]
		r.mu.RUnlock()
		if ok {
			return v, nil
		}
	}
	return nil, &ConsistencyError{Message: "property " + name + " not present on " + r.uri}
}

// PullFullProperties GETs the resource URI and replaces properties with the
// response.
func (r *ResourceBase) PullFullProperties(ctx context.Context) error {
	if r.CeasedExistence() {
		return &CeasedExistence{ResourceURI: r.uri}
	}
	session := r.manager.Session()
	body, err := session.Get(ctx, r.uri, true, true)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.properties = body
	r.full = true
	r.mu.Unlock()
	return nil
}

// UpdateProperties POSTs newProps to the resource URI, then merges them
// into the local properties map so callers observe the change without a
// refresh. If the manager's name property is among newProps, the old and
// new NameUriCache entries are invalidated/updated.
func (r *ResourceBase) UpdateProperties(ctx context.Context, newProps map[string]any) error {
	if r.CeasedExistence() {
		return &CeasedExistence{ResourceURI: r.uri}
	}
	session := r.manager.Session()
	oldName := r.Name()

	if _, err := session.Post(ctx, r.uri, newProps, true, true, nil, true); err != nil {
		return err
	}

	r.mu.Lock()
	for k, v := range newProps {
		r.properties[k] = v
	}
	r.mu.Unlock()

	nameProp := r.manager.NameProp()
	if newName, ok := newProps[nameProp].(string); ok && newName != oldName {
		cache := r.manager.Cache()
		if cache != nil {
			cache.Delete(oldName)
			cache.Update(newName, r.uri)
		}
	}
	return nil
}

// Delete DELETEs the resource and marks it ceased-existence; the manager
// evicts the name/URI cache entry.
func (r *ResourceBase) Delete(ctx context.Context) error {
	if r.CeasedExistence() {
		return &CeasedExistence{ResourceURI: r.uri}
	}
	session := r.manager.Session()
	if err := session.Delete(ctx, r.uri, true); err != nil {
		return err
	}
	r.SetCeasedExistence()
	if cache := r.manager.Cache(); cache != nil {
		cache.Delete(r.Name())
	}
	return nil
}

// ApplyAutoUpdate merges a property-change notification into the local
// properties map and, if ceased is true, flips CeasedExistence — both only
// when auto-update is enabled for this resource. It is the hook a
// NotificationReceiver dispatches object-notification pushes through; a
// caller driving its own notification stream may also call it directly.
func (r *ResourceBase) ApplyAutoUpdate(changed map[string]any, ceased bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.autoUpdate {
		return
	}
	for k, v := range changed {
		r.properties[k] = v
	}
	if ceased {
		r.ceasedExistence = true
	}
}

// setLocalProps merges properties into the local map unconditionally, used
// by operations (Lpar.Load, ...) that the source documents as updating
// well-known properties as a side effect of a successful call, without a
// network round trip.
func (r *ResourceBase) setLocalProps(props map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range props {
		r.properties[k] = v
	}
}

// EnableAutoUpdate turns on property auto-update from push notifications.
func (r *ResourceBase) EnableAutoUpdate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoUpdate = true
}

// DisableAutoUpdate turns off property auto-update.
func (r *ResourceBase) DisableAutoUpdate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoUpdate = false
}
