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

import "context"

// TapeLink attaches a DPM Partition to a TapeLibrary, exposing a set of
// tape-equivalent "ports" (virtual tape drives) that can be added to or
// removed from the link.
type TapeLink struct{ *ResourceBase }

func newTapeLink(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	return &TapeLink{ResourceBase: NewResourceBase(mgr, parent, uri, "tape-link", props, full)}
}

// AddPorts requests that count additional virtual tape drives be added to
// the link.
func (t *TapeLink) AddPorts(ctx context.Context, count int) error {
	_, err := t.Manager().Session().Post(ctx, t.URI()+"/operations/increase-bandwidth", map[string]any{"additional-port-count": count}, true, true, nil, true)
	return err
}

// RemovePorts requests that count virtual tape drives be removed from the
// link.
func (t *TapeLink) RemovePorts(ctx context.Context, count int) error {
	_, err := t.Manager().Session().Post(ctx, t.URI()+"/operations/decrease-bandwidth", map[string]any{"removed-port-count": count}, true, true, nil, true)
	return err
}

// TapeLinkManager lists/finds TapeLinks under one TapeLibrary.
type TapeLinkManager struct{ *ManagerBase }

// NewTapeLinkManager constructs the TapeLink manager for library.
func NewTapeLinkManager(session *Session, library *TapeLibrary) *TapeLinkManager {
	return &TapeLinkManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "tape-link",
		BaseURI:     "/api/tape-links",
		ListProp:    "tape-links",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name", "tape-library-uri"},
		Parent:      library,
		Session:     session,
		NewResource: newTapeLink,
	})}
}
