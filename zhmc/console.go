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

// Console is the singular logical HMC console resource: there is always
// exactly one, so ConsoleManager exposes it directly rather than through
// list/find.
type Console struct {
	*ResourceBase

	Users                  *UserManager
	UserRoles              *UserRoleManager
	UserPatterns           *UserPatternManager
	PasswordRules          *PasswordRuleManager
	LdapServerDefinitions  *LdapServerDefinitionManager
	HwMessages             *HwMessageManager
	Groups                 *GroupManager
	TapeLibraries          *TapeLibraryManager
	StorageGroups          *StorageGroupManager
}

func newConsole(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	if uri == "" {
		uri = "/api/console"
	}
	c := &Console{ResourceBase: NewResourceBase(mgr, parent, uri, "console", props, full)}
	session := mgr.Session()
	c.Users = NewUserManager(session, c)
	c.UserRoles = NewUserRoleManager(session, c)
	c.UserPatterns = NewUserPatternManager(session, c)
	c.PasswordRules = NewPasswordRuleManager(session, c)
	c.LdapServerDefinitions = NewLdapServerDefinitionManager(session, c)
	c.HwMessages = NewHwMessageManager(session, c)
	c.Groups = NewGroupManager(session, c)
	c.TapeLibraries = NewTapeLibraryManager(session, c)
	c.StorageGroups = NewStorageGroupManager(session, c)
	return c
}

// ConsoleManager exposes the one Console resource. It embeds a ManagerBase
// purely to give Console's children (Users, Groups, ...) a Manager to pass
// around as a parent's owning manager; its List/Find methods are unused
// since there is exactly one console.
type ConsoleManager struct {
	*ManagerBase
	console *Console
}

// NewConsoleManager constructs the Console manager.
func NewConsoleManager(session *Session) *ConsoleManager {
	mb := NewManagerBase(ManagerConfig{
		ClassName:   "console",
		BaseURI:     "/api/console",
		UriProp:     "object-uri",
		NameProp:    "name",
		Session:     session,
		NewResource: newConsole,
	})
	return &ConsoleManager{ManagerBase: mb}
}

// Get fetches (or returns the already-fetched) singular Console resource.
func (m *ConsoleManager) Get(ctx context.Context) (*Console, error) {
	if m.console != nil {
		return m.console, nil
	}
	body, err := m.Session().Get(ctx, "/api/console", true, true)
	if err != nil {
		return nil, err
	}
	res := newConsole(m, nil, body, true)
	m.console = res.(*Console)
	return m.console, nil
}
