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

import (
	"context"
	"time"
)

// Lpar is a classic-mode logical partition on a CPC.
type Lpar struct {
	*ResourceBase
}

func newLpar(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	return &Lpar{ResourceBase: NewResourceBase(mgr, parent, uri, "logical-partition", props, full)}
}

// LparManager lists/finds Lpars under one Cpc.
type LparManager struct {
	*ManagerBase
}

// NewLparManager constructs the Lpar manager for cpc.
func NewLparManager(session *Session, cpc *Cpc) *LparManager {
	return &LparManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "logical-partition",
		BaseURI:     cpc.URI() + "/logical-partitions",
		ListProp:    "logical-partitions",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name", "status"},
		Parent:      cpc,
		Session:     session,
		NewResource: newLpar,
	})}
}

func (l *Lpar) session() *Session { return l.Manager().Session() }

const (
	loadTypeStandard = "ipltype-standard"
	loadTypeSCSI     = "ipltype-scsi"
	loadTypeSCSIDump = "ipltype-scsidump"
	loadTypeNVMe     = "ipltype-nvme"
	loadTypeNVMeDump = "ipltype-nvmedump"
)

// lparWaitExpected is operating+not-operating: an activated LPAR may come
// up without an OS loaded yet, so not-operating is an acceptable end state
// of activate. The load operations wait for operating only.
var lparWaitExpected = []string{"operating", "not-operating"}

// Activate activates the LPAR, optionally against a named activation
// profile, then waits for the job and for status to settle. force=true is
// required if the LPAR is already operating; otherwise the HMC rejects the
// request with HTTP 500/263. operationTimeout bounds the activate job
// itself; statusTimeout bounds the subsequent status wait. Either may be
// nil to use the session's configured defaults.
func (l *Lpar) Activate(ctx context.Context, activationProfileName string, force, allowStatusExceptions bool, operationTimeout, statusTimeout *time.Duration) error {
	body := map[string]any{"force": force}
	if activationProfileName != "" {
		body["activation-profile-name"] = activationProfileName
	}
	if _, err := l.session().Post(ctx, l.URI()+"/operations/activate", body, true, true, operationTimeout, true); err != nil {
		return err
	}
	if activationProfileName != "" {
		l.setLocalProps(map[string]any{"last-used-activation-profile": activationProfileName})
	}
	return l.waitForLparStatus(ctx, allowStatusExceptions, statusTimeout)
}

// Deactivate deactivates the LPAR. Terminal status is not-activated;
// transitioning from operating without force fails with HTTP 500/263, as
// does deactivating an already not-activated LPAR.
func (l *Lpar) Deactivate(ctx context.Context, force, allowStatusExceptions bool) error {
	body := map[string]any{"force": force}
	if _, err := l.session().Post(ctx, l.URI()+"/operations/deactivate", body, true, true, nil, true); err != nil {
		return err
	}
	rt := l.session().retryTimeout
	return WaitForStatus(ctx, l, []string{"not-activated"}, []string{"exceptions"}, allowStatusExceptions, rt.StatusPollInterval, rt.StatusTimeout)
}

// LoadOptions carries the common load/scsi-load/nvme-load parameters.
// OperationTimeout and StatusTimeout may be left nil to use the session's
// configured defaults.
type LoadOptions struct {
	LoadAddress           string
	LoadParameter         string
	WWPN                  string // scsi-load only
	LUN                   string // scsi-load only
	ClearIndicator        bool
	StoreStatusIndicator  bool
	Force                 bool
	AllowStatusExceptions bool
	OperationTimeout      *time.Duration
	StatusTimeout         *time.Duration
}

// Load performs a standard (non-SCSI, non-NVMe) load and waits for the
// LPAR to reach operating status. If StoreStatusIndicator is set and the
// LPAR's current status is already "operating", the pre-load status is
// recorded under stored-status before the load proceeds.
func (l *Lpar) Load(ctx context.Context, opts LoadOptions) error {
	return l.doLoad(ctx, "/operations/load", loadTypeStandard, map[string]any{
		"load-address":           opts.LoadAddress,
		"load-parameter":         opts.LoadParameter,
		"clear-indicator":        opts.ClearIndicator,
		"store-status-indicator": opts.StoreStatusIndicator,
		"force":                  opts.Force,
	}, opts)
}

// ScsiLoad performs a SCSI load (requires WWPN and LUN).
func (l *Lpar) ScsiLoad(ctx context.Context, opts LoadOptions) error {
	return l.doLoad(ctx, "/operations/scsi-load", loadTypeSCSI, map[string]any{
		"load-address":   opts.LoadAddress,
		"world-wide-port-name": opts.WWPN,
		"logical-unit-number": opts.LUN,
		"force":          opts.Force,
	}, opts)
}

// ScsiDump performs a SCSI dump.
func (l *Lpar) ScsiDump(ctx context.Context, opts LoadOptions) error {
	return l.doLoad(ctx, "/operations/scsi-dump", loadTypeSCSIDump, map[string]any{
		"load-address":   opts.LoadAddress,
		"world-wide-port-name": opts.WWPN,
		"logical-unit-number": opts.LUN,
		"force":          opts.Force,
	}, opts)
}

// NvmeLoad performs an NVMe load (only load-address is required).
func (l *Lpar) NvmeLoad(ctx context.Context, opts LoadOptions) error {
	return l.doLoad(ctx, "/operations/nvme-load", loadTypeNVMe, map[string]any{
		"load-address": opts.LoadAddress,
		"force":        opts.Force,
	}, opts)
}

// NvmeDump performs an NVMe dump.
func (l *Lpar) NvmeDump(ctx context.Context, opts LoadOptions) error {
	return l.doLoad(ctx, "/operations/nvme-dump", loadTypeNVMeDump, map[string]any{
		"load-address": opts.LoadAddress,
		"force":        opts.Force,
	}, opts)
}

func (l *Lpar) doLoad(ctx context.Context, operation, loadType string, body map[string]any, opts LoadOptions) error {
	if opts.StoreStatusIndicator {
		if status, _ := l.Prop("status", "").(string); status == "operating" {
			l.setLocalProps(map[string]any{"stored-status": status})
		}
	}

	if _, err := l.session().Post(ctx, l.URI()+operation, body, true, true, opts.OperationTimeout, true); err != nil {
		return err
	}

	updates := map[string]any{
		"last-used-load-address":   opts.LoadAddress,
		"last-used-load-parameter": opts.LoadParameter,
		"last-used-load-type":      loadType,
	}
	if opts.ClearIndicator {
		updates["memory"] = ""
	}
	l.setLocalProps(updates)

	rt := l.session().retryTimeout
	timeout := rt.StatusTimeout
	if opts.StatusTimeout != nil {
		timeout = *opts.StatusTimeout
	}
	return WaitForStatus(ctx, l, []string{"operating"}, []string{"exceptions"}, opts.AllowStatusExceptions, rt.StatusPollInterval, timeout)
}

func (l *Lpar) waitForLparStatus(ctx context.Context, allowStatusExceptions bool, statusTimeout *time.Duration) error {
	rt := l.session().retryTimeout
	timeout := rt.StatusTimeout
	if statusTimeout != nil {
		timeout = *statusTimeout
	}
	return WaitForStatus(ctx, l, lparWaitExpected, []string{"exceptions"}, allowStatusExceptions, rt.StatusPollInterval, timeout)
}
