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

// StorageGroup is a Console-owned resource that references a Cpc by URI
// (rather than being nested under the Cpc's own URI space, as most
// Cpc-scoped resources are).
type StorageGroup struct {
	*ResourceBase

	StorageVolumes           *StorageVolumeManager
	VirtualStorageResources *VirtualStorageResourceManager
}

func newStorageGroup(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	sg := &StorageGroup{ResourceBase: NewResourceBase(mgr, parent, uri, "storage-group", props, full)}
	sg.StorageVolumes = NewStorageVolumeManager(mgr.Session(), sg)
	sg.VirtualStorageResources = NewVirtualStorageResourceManager(mgr.Session(), sg)
	return sg
}

// CpcURI returns the cpc-uri property identifying the owning Cpc.
func (sg *StorageGroup) CpcURI() string {
	uri, _ := sg.Prop("cpc-uri", "").(string)
	return uri
}

// StorageGroupManager lists/finds StorageGroups under the Console.
// Creation requires name, cpc-uri, and type.
type StorageGroupManager struct{ *ManagerBase }

// NewStorageGroupManager constructs the StorageGroup manager for console.
func NewStorageGroupManager(session *Session, console *Console) *StorageGroupManager {
	return &StorageGroupManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "storage-group",
		BaseURI:     "/api/storage-groups",
		ListProp:    "storage-groups",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name", "cpc-uri", "type"},
		Parent:      console,
		Session:     session,
		NewResource: newStorageGroup,
	})}
}

// Create requires name, cpc-uri, and type in properties.
func (m *StorageGroupManager) Create(ctx context.Context, name, cpcURI, groupType string, extraProps map[string]any) (*StorageGroup, error) {
	props := map[string]any{"name": name, "cpc-uri": cpcURI, "type": groupType}
	for k, v := range extraProps {
		props[k] = v
	}
	res, err := m.ManagerBase.Create(ctx, props)
	if err != nil {
		return nil, err
	}
	return res.(*StorageGroup), nil
}

// StorageVolume is a logical volume defined within a StorageGroup.
type StorageVolume struct{ *ResourceBase }

func newStorageVolume(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &StorageVolume{ResourceBase: NewResourceBase(mgr, parent, uri, "storage-volume", props, full)}
}

// StorageVolumeManager lists/finds StorageVolumes under one StorageGroup.
type StorageVolumeManager struct{ *ManagerBase }

// NewStorageVolumeManager constructs the StorageVolume manager for sg.
func NewStorageVolumeManager(session *Session, sg *StorageGroup) *StorageVolumeManager {
	return &StorageVolumeManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "storage-volume",
		BaseURI:     sg.URI() + "/storage-volumes",
		ListProp:    "storage-volumes",
		UriProp:     "element-uri",
		NameProp:    "name",
		Parent:      sg,
		Session:     session,
		NewResource: newStorageVolume,
	})}
}

// VirtualStorageResource binds a partition's HBA/NIC-equivalent storage
// attachment to a StorageVolume in DPM mode.
type VirtualStorageResource struct{ *ResourceBase }

func newVirtualStorageResource(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &VirtualStorageResource{ResourceBase: NewResourceBase(mgr, parent, uri, "virtual-storage-resource", props, full)}
}

// VirtualStorageResourceManager lists/finds VirtualStorageResources under
// one StorageGroup.
type VirtualStorageResourceManager struct{ *ManagerBase }

// NewVirtualStorageResourceManager constructs the manager for sg.
func NewVirtualStorageResourceManager(session *Session, sg *StorageGroup) *VirtualStorageResourceManager {
	return &VirtualStorageResourceManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "virtual-storage-resource",
		BaseURI:     sg.URI() + "/virtual-storage-resources",
		ListProp:    "virtual-storage-resources",
		UriProp:     "element-uri",
		NameProp:    "device-number",
		Parent:      sg,
		Session:     session,
		NewResource: newVirtualStorageResource,
	})}
}
