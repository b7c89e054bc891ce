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

// ActivationProfile is a classic-mode (non-DPM) CPC configuration profile:
// reset, image, or load, distinguished only by the collection it was
// listed from (profileKind), not by a separate Go type.
type ActivationProfile struct{ *ResourceBase }

func newActivationProfile(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &ActivationProfile{ResourceBase: NewResourceBase(mgr, parent, uri, "activation-profile", props, full)}
}

// ActivationProfileManager lists/finds ActivationProfiles of one kind
// (reset, image, or load) under one Cpc.
type ActivationProfileManager struct {
	*ManagerBase

	kind string
}

// Kind returns "reset-activation-profiles", "image-activation-profiles",
// or "load-activation-profiles".
func (m *ActivationProfileManager) Kind() string { return m.kind }

// NewActivationProfileManager constructs the ActivationProfile manager for
// cpc, scoped to the named profile collection (kind).
func NewActivationProfileManager(session *Session, cpc *Cpc, kind string) *ActivationProfileManager {
	return &ActivationProfileManager{
		kind: kind,
		ManagerBase: NewManagerBase(ManagerConfig{
			ClassName:   "activation-profile",
			BaseURI:     cpc.URI() + "/" + kind,
			ListProp:    kind,
			UriProp:     "element-uri",
			NameProp:    "name",
			QueryProps:  []string{"name"},
			Parent:      cpc,
			Session:     session,
			NewResource: newActivationProfile,
		}),
	}
}
