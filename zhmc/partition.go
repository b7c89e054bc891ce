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

// Partition is a DPM-mode dynamic partition on a CPC.
type Partition struct {
	*ResourceBase

	Nics              *NicManager
	Hbas              *HbaManager
	VirtualFunctions  *VirtualFunctionManager
}

func newPartition(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	p := &Partition{ResourceBase: NewResourceBase(mgr, parent, uri, "partition", props, full)}
	session := mgr.Session()
	p.Nics = NewNicManager(session, p)
	p.Hbas = NewHbaManager(session, p)
	p.VirtualFunctions = NewVirtualFunctionManager(session, p)
	return p
}

// PartitionManager lists/finds Partitions under one Cpc.
type PartitionManager struct {
	*ManagerBase
}

// NewPartitionManager constructs the Partition manager for cpc.
func NewPartitionManager(session *Session, cpc *Cpc) *PartitionManager {
	return &PartitionManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "partition",
		BaseURI:     cpc.URI() + "/partitions",
		ListProp:    "partitions",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name", "status"},
		Parent:      cpc,
		Session:     session,
		NewResource: newPartition,
	})}
}

func (p *Partition) session() *Session { return p.Manager().Session() }

// Start is DPM-only: it starts a stopped partition and waits for the job.
func (p *Partition) Start(ctx context.Context) (map[string]any, error) {
	return p.session().Post(ctx, p.URI()+"/operations/start", nil, true, true, nil, true)
}

// Stop is DPM-only: it stops a running partition and waits for the job.
func (p *Partition) Stop(ctx context.Context) (map[string]any, error) {
	return p.session().Post(ctx, p.URI()+"/operations/stop", nil, true, true, nil, true)
}

// DumpPartition triggers a stand-alone dump of the partition to the given
// target (FCP or FICON parameters passed through verbatim).
func (p *Partition) DumpPartition(ctx context.Context, params map[string]any) (map[string]any, error) {
	return p.session().Post(ctx, p.URI()+"/operations/dump-partition", params, true, true, nil, true)
}

// PSWRestart issues a PSW restart against the partition's current PSW.
func (p *Partition) PSWRestart(ctx context.Context) (map[string]any, error) {
	return p.session().Post(ctx, p.URI()+"/operations/psw-restart", nil, true, true, nil, true)
}

// Nic is a partition-level network interface card attachment.
type Nic struct{ *ResourceBase }

func newNic(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &Nic{ResourceBase: NewResourceBase(mgr, parent, uri, "nic", props, full)}
}

// NicManager lists/finds Nics under one Partition.
type NicManager struct{ *ManagerBase }

// NewNicManager constructs the Nic manager for partition.
func NewNicManager(session *Session, partition *Partition) *NicManager {
	return &NicManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "nic",
		BaseURI:     partition.URI() + "/nics",
		ListProp:    "nics",
		UriProp:     "element-uri",
		NameProp:    "name",
		Parent:      partition,
		Session:     session,
		NewResource: newNic,
	})}
}

// Hba is a partition-level FCP host-bus adapter attachment.
type Hba struct{ *ResourceBase }

func newHba(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &Hba{ResourceBase: NewResourceBase(mgr, parent, uri, "hba", props, full)}
}

// HbaManager lists/finds Hbas under one Partition.
type HbaManager struct{ *ManagerBase }

// NewHbaManager constructs the Hba manager for partition.
func NewHbaManager(session *Session, partition *Partition) *HbaManager {
	return &HbaManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "hba",
		BaseURI:     partition.URI() + "/hbas",
		ListProp:    "hbas",
		UriProp:     "element-uri",
		NameProp:    "name",
		Parent:      partition,
		Session:     session,
		NewResource: newHba,
	})}
}

// VirtualFunction is a partition-level accelerator/virtual-function
// attachment.
type VirtualFunction struct{ *ResourceBase }

func newVirtualFunction(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &VirtualFunction{ResourceBase: NewResourceBase(mgr, parent, uri, "virtual-function", props, full)}
}

// VirtualFunctionManager lists/finds VirtualFunctions under one Partition.
type VirtualFunctionManager struct{ *ManagerBase }

// NewVirtualFunctionManager constructs the VirtualFunction manager for
// partition.
func NewVirtualFunctionManager(session *Session, partition *Partition) *VirtualFunctionManager {
	return &VirtualFunctionManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "virtual-function",
		BaseURI:     partition.URI() + "/virtual-functions",
		ListProp:    "virtual-functions",
		UriProp:     "element-uri",
		NameProp:    "name",
		Parent:      partition,
		Session:     session,
		NewResource: newVirtualFunction,
	})}
}
