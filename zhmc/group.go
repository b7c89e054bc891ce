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

// Group is a user-defined collection of arbitrary HMC-managed resources
// (Cpcs, Partitions, Lpars, ...), identified by URI membership rather than
// type.
type Group struct{ *ResourceBase }

func newGroup(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	return &Group{ResourceBase: NewResourceBase(mgr, parent, uri, "group", props, full)}
}

// Members returns the group's current member-uris.
func (g *Group) Members(ctx context.Context) ([]string, error) {
	body, err := g.Manager().Session().Get(ctx, g.URI()+"/operations/get-members", true, true)
	if err != nil {
		return nil, err
	}
	raw, _ := body["members"].([]any)
	uris := make([]string, 0, len(raw))
	for _, m := range raw {
		if s, ok := m.(string); ok {
			uris = append(uris, s)
		}
	}
	return uris, nil
}

// AddMember adds a single resource, by URI, to the group.
func (g *Group) AddMember(ctx context.Context, memberURI string) error {
	_, err := g.Manager().Session().Post(ctx, g.URI()+"/operations/add-member", map[string]any{"object-uri": memberURI}, true, true, nil, true)
	return err
}

// RemoveMember removes a single resource, by URI, from the group.
func (g *Group) RemoveMember(ctx context.Context, memberURI string) error {
	_, err := g.Manager().Session().Post(ctx, g.URI()+"/operations/remove-member", map[string]any{"object-uri": memberURI}, true, true, nil, true)
	return err
}

// GroupManager lists/finds Groups under the Console.
type GroupManager struct{ *ManagerBase }

// NewGroupManager constructs the Group manager for console.
func NewGroupManager(session *Session, console *Console) *GroupManager {
	return &GroupManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "group",
		BaseURI:     "/api/groups",
		ListProp:    "groups",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name", "type"},
		Parent:      console,
		Session:     session,
		NewResource: newGroup,
	})}
}
