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

// VirtualSwitch is a DPM-mode internal network switch owned by a Cpc.
type VirtualSwitch struct{ *ResourceBase }

func newVirtualSwitch(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	return &VirtualSwitch{ResourceBase: NewResourceBase(mgr, parent, uri, "virtual-switch", props, full)}
}

// VirtualSwitchManager lists/finds VirtualSwitches under one Cpc.
type VirtualSwitchManager struct{ *ManagerBase }

// NewVirtualSwitchManager constructs the VirtualSwitch manager for cpc.
func NewVirtualSwitchManager(session *Session, cpc *Cpc) *VirtualSwitchManager {
	return &VirtualSwitchManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "virtual-switch",
		BaseURI:     cpc.URI() + "/virtual-switches",
		ListProp:    "virtual-switches",
		UriProp:     "object-uri",
		NameProp:    "name",
		Parent:      cpc,
		Session:     session,
		NewResource: newVirtualSwitch,
	})}
}
