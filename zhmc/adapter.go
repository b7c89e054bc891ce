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

// ficonFamily is the adapter-family value for FICON/FCP-capable cards; only
// these adapters support ChangeAdapterType.
const ficonFamily = "ficon"

// Adapter is a physical I/O card installed on a CPC.
type Adapter struct {
	*ResourceBase

	Ports *PortManager
}

func newAdapter(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	a := &Adapter{ResourceBase: NewResourceBase(mgr, parent, uri, "adapter", props, full)}
	a.Ports = NewPortManager(mgr.Session(), a)
	return a
}

// AdapterManager lists/finds Adapters under one Cpc.
type AdapterManager struct{ *ManagerBase }

// NewAdapterManager constructs the Adapter manager for cpc.
func NewAdapterManager(session *Session, cpc *Cpc) *AdapterManager {
	return &AdapterManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "adapter",
		BaseURI:     cpc.URI() + "/adapters",
		ListProp:    "adapters",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name", "adapter-family", "type"},
		Parent:      cpc,
		Session:     session,
		NewResource: newAdapter,
	})}
}

// ChangeAdapterType changes the adapter's type property (e.g. between
// "fc" and "fcp" on a FICON-family card). Only FICON-family adapters
// support this operation: calling it on a non-FICON adapter fails with
// HTTP 400/18; calling it with the adapter's current type (an identity
// change) fails with HTTP 400/8. Both checks are enforced by the HMC; the
// core forwards the request and surfaces whatever HTTPError comes back
// rather than pre-validating, since the authoritative family/type rules
// live on the HMC.
func (a *Adapter) ChangeAdapterType(ctx context.Context, newType string) error {
	body := map[string]any{"type": newType}
	_, err := a.Manager().Session().Post(ctx, a.URI()+"/operations/change-adapter-type", body, true, true, nil, true)
	if err != nil {
		return err
	}
	a.setLocalProps(map[string]any{"type": newType})
	return nil
}

// Port is a physical port on an Adapter.
type Port struct{ *ResourceBase }

func newPort(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &Port{ResourceBase: NewResourceBase(mgr, parent, uri, "port", props, full)}
}

// PortManager lists/finds Ports under one Adapter.
type PortManager struct{ *ManagerBase }

// NewPortManager constructs the Port manager for adapter.
func NewPortManager(session *Session, adapter *Adapter) *PortManager {
	return &PortManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "port",
		BaseURI:     adapter.URI() + "/ports",
		ListProp:    "ports",
		UriProp:     "element-uri",
		NameProp:    "name",
		Parent:      adapter,
		Session:     session,
		NewResource: newPort,
	})}
}
