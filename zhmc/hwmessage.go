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

// HwMessage is a hardware message raised against the Console or a Cpc,
// optionally requiring service (requests-service) before it clears. Delete
// is inherited from ResourceBase; the HMC itself rejects deletion of an
// unserviced requests-service message with HTTP 409, surfaced unchanged.
type HwMessage struct{ *ResourceBase }

func newHwMessage(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["element-uri"].(string)
	return &HwMessage{ResourceBase: NewResourceBase(mgr, parent, uri, "hw-message", props, full)}
}

// RequestsService reports whether the message requires IBM service action
// before it can be deleted.
func (h *HwMessage) RequestsService() bool {
	v, _ := h.Prop("requests-service", false).(bool)
	return v
}

// HwMessageManager lists/finds HwMessages under the Console.
type HwMessageManager struct{ *ManagerBase }

// NewHwMessageManager constructs the HwMessage manager for console.
func NewHwMessageManager(session *Session, console *Console) *HwMessageManager {
	return &HwMessageManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "hw-message",
		BaseURI:     console.URI() + "/hw-messages",
		ListProp:    "hw-messages",
		UriProp:     "element-uri",
		NameProp:    "",
		Parent:      console,
		Session:     session,
		NewResource: newHwMessage,
	})}
}
