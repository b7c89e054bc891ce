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

// Cpc is a Central Processor Complex: the physical machine, owning
// Partitions (DPM mode) or Lpars (classic mode), Adapters, and
// activation profiles.
type Cpc struct {
	*ResourceBase

	Partitions          *PartitionManager
	Lpars               *LparManager
	Adapters            *AdapterManager
	VirtualSwitches      *VirtualSwitchManager
	ResetActivationProfiles *ActivationProfileManager
	ImageActivationProfiles *ActivationProfileManager
	LoadActivationProfiles  *ActivationProfileManager
}

func newCpc(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	c := &Cpc{ResourceBase: NewResourceBase(mgr, parent, uri, "cpc", props, full)}
	session := mgr.Session()
	c.Partitions = NewPartitionManager(session, c)
	c.Lpars = NewLparManager(session, c)
	c.Adapters = NewAdapterManager(session, c)
	c.VirtualSwitches = NewVirtualSwitchManager(session, c)
	c.ResetActivationProfiles = NewActivationProfileManager(session, c, "reset-activation-profiles")
	c.ImageActivationProfiles = NewActivationProfileManager(session, c, "image-activation-profiles")
	c.LoadActivationProfiles = NewActivationProfileManager(session, c, "load-activation-profiles")
	return c
}

// IsDPM reports whether the CPC is operating in Dynamic Partition Manager
// mode (Partitions) as opposed to classic mode (Lpars).
func (c *Cpc) IsDPM() bool {
	v, _ := c.Prop("dpm-enabled", false).(bool)
	return v
}

// ExportDpmConfiguration forwards an opaque export request for this CPC's
// DPM configuration; the core treats the request/response bodies as
// pass-through JSON per spec.md's "DPM export/import" external interface.
func (c *Cpc) ExportDpmConfiguration(ctx context.Context, options map[string]any) (map[string]any, error) {
	return c.manager().Session().Post(ctx, c.URI()+"/operations/export-dpm-configuration", options, true, true, nil, true)
}

// ImportDpmConfiguration forwards an opaque DPM configuration blob for
// import, honoring preserve-uris / preserve-wwpns / adapter-mapping flags
// exactly as documented for the HMC operation.
func (c *Cpc) ImportDpmConfiguration(ctx context.Context, configuration map[string]any, preserveURIs, preserveWWPNs bool, adapterMapping []map[string]string) (map[string]any, error) {
	body := map[string]any{
		"configuration":   configuration,
		"preserve-uris":   preserveURIs,
		"preserve-wwpns":  preserveWWPNs,
	}
	if len(adapterMapping) > 0 {
		mapping := make([]any, len(adapterMapping))
		for i, m := range adapterMapping {
			mapping[i] = m
		}
		body["adapter-mapping"] = mapping
	}
	return c.manager().Session().Post(ctx, c.URI()+"/operations/import-dpm-configuration", body, true, true, nil, true)
}

func (c *Cpc) manager() Manager { return c.ResourceBase.Manager() }

// CpcManager lists/finds Cpc resources rooted at /api/cpcs.
type CpcManager struct {
	*ManagerBase
}

// NewCpcManager constructs the top-level Cpc manager.
func NewCpcManager(session *Session) *CpcManager {
	return &CpcManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "cpc",
		BaseURI:     "/api/cpcs",
		ListProp:    "cpcs",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name", "status"},
		Session:     session,
		NewResource: newCpc,
	})}
}
