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

// User is an HMC console user account.
type User struct{ *ResourceBase }

func newUser(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	return &User{ResourceBase: NewResourceBase(mgr, parent, uri, "user", props, full)}
}

// UserManager lists/finds Users under the Console.
type UserManager struct{ *ManagerBase }

// NewUserManager constructs the User manager for console.
func NewUserManager(session *Session, console *Console) *UserManager {
	return &UserManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "user",
		BaseURI:     "/api/users",
		ListProp:    "users",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name", "type"},
		Parent:      console,
		Session:     session,
		NewResource: newUser,
	})}
}

// UserRole is a named collection of task/resource permissions assignable
// to Users.
type UserRole struct{ *ResourceBase }

func newUserRole(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	return &UserRole{ResourceBase: NewResourceBase(mgr, parent, uri, "user-role", props, full)}
}

// UserRoleManager lists/finds UserRoles under the Console.
type UserRoleManager struct{ *ManagerBase }

// NewUserRoleManager constructs the UserRole manager for console.
func NewUserRoleManager(session *Session, console *Console) *UserRoleManager {
	return &UserRoleManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "user-role",
		BaseURI:     "/api/user-roles",
		ListProp:    "user-roles",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name"},
		Parent:      console,
		Session:     session,
		NewResource: newUserRole,
	})}
}

// UserPattern matches incoming LDAP/SAML identities to a template User.
type UserPattern struct{ *ResourceBase }

func newUserPattern(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &UserPattern{ResourceBase: NewResourceBase(mgr, parent, uri, "user-pattern", props, full)}
}

// UserPatternManager lists/finds UserPatterns under the Console.
type UserPatternManager struct{ *ManagerBase }

// NewUserPatternManager constructs the UserPattern manager for console.
func NewUserPatternManager(session *Session, console *Console) *UserPatternManager {
	return &UserPatternManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "user-pattern",
		BaseURI:     "/api/console/user-patterns",
		ListProp:    "user-patterns",
		UriProp:     "element-uri",
		NameProp:    "name",
		Parent:      console,
		Session:     session,
		NewResource: newUserPattern,
	})}
}

// PasswordRule constrains local-authentication password composition and
// expiry, and carries health-check fields surfaced by the HMC (e.g.
// whether the rule is currently consistent across users).
type PasswordRule struct{ *ResourceBase }

func newPasswordRule(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &PasswordRule{ResourceBase: NewResourceBase(mgr, parent, uri, "password-rule", props, full)}
}

// HealthCheckSummary returns the rule's health-check-summary property, an
// opaque HMC-reported status string surfaced verbatim.
func (p *PasswordRule) HealthCheckSummary() string {
	s, _ := p.Prop("health-check-summary", "").(string)
	return s
}

// PasswordRuleManager lists/finds PasswordRules under the Console.
type PasswordRuleManager struct{ *ManagerBase }

// NewPasswordRuleManager constructs the PasswordRule manager for console.
func NewPasswordRuleManager(session *Session, console *Console) *PasswordRuleManager {
	return &PasswordRuleManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "password-rule",
		BaseURI:     "/api/console/password-rules",
		ListProp:    "password-rules",
		UriProp:     "element-uri",
		NameProp:    "name",
		Parent:      console,
		Session:     session,
		NewResource: newPasswordRule,
	})}
}

// LdapServerDefinition configures an external LDAP server used for
// authentication, including its bind and search distinguished names.
type LdapServerDefinition struct{ *ResourceBase }

func newLdapServerDefinition(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &LdapServerDefinition{ResourceBase: NewResourceBase(mgr, parent, uri, "ldap-server-definition", props, full)}
}

// BindDistinguishedName returns the DN used to bind to the LDAP server.
func (l *LdapServerDefinition) BindDistinguishedName() string {
	s, _ := l.Prop("bind-distinguished-name", "").(string)
	return s
}

// SearchDistinguishedName returns the DN search base for user lookups.
func (l *LdapServerDefinition) SearchDistinguishedName() string {
	s, _ := l.Prop("search-distinguished-name", "").(string)
	return s
}

// LdapServerDefinitionManager lists/finds LdapServerDefinitions under the
// Console.
type LdapServerDefinitionManager struct{ *ManagerBase }

// NewLdapServerDefinitionManager constructs the manager for console.
func NewLdapServerDefinitionManager(session *Session, console *Console) *LdapServerDefinitionManager {
	return &LdapServerDefinitionManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "ldap-server-definition",
		BaseURI:     "/api/console/ldap-server-definitions",
		ListProp:    "ldap-server-definitions",
		UriProp:     "element-uri",
		NameProp:    "name",
		Parent:      console,
		Session:     session,
		NewResource: newLdapServerDefinition,
	})}
}
