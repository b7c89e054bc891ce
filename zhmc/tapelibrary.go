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

// TapeLibrary is a Console-owned virtual tape library attachable to DPM
// partitions via TapeLinks.
type TapeLibrary struct {
	*ResourceBase

	TapeLinks *TapeLinkManager
}

func newTapeLibrary(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	t := &TapeLibrary{ResourceBase: NewResourceBase(mgr, parent, uri, "tape-library", props, full)}
	t.TapeLinks = NewTapeLinkManager(mgr.Session(), t)
	return t
}

// RequestZoning requests storage-area-network zoning for the library. The
// HMC rejects this with HTTP 409/1 if the library is not yet fully defined
// and HTTP 409/487 if zoning was already requested; both are surfaced
// unchanged rather than pre-checked locally.
func (t *TapeLibrary) RequestZoning(ctx context.Context) error {
	_, err := t.Manager().Session().Post(ctx, t.URI()+"/operations/request-zoning", nil, true, true, nil, true)
	return err
}

// Discover triggers rediscovery of the library's tape drives. The HMC
// rejects this with HTTP 409/1 while the library is busy and HTTP 409/501
// when discovery is not supported for the library's type; both are
// surfaced unchanged.
func (t *TapeLibrary) Discover(ctx context.Context) error {
	_, err := t.Manager().Session().Post(ctx, t.URI()+"/operations/discover", nil, true, true, nil, true)
	return err
}

// TapeLibraryManager lists/finds TapeLibraries under the Console.
type TapeLibraryManager struct{ *ManagerBase }

// NewTapeLibraryManager constructs the TapeLibrary manager for console.
func NewTapeLibraryManager(session *Session, console *Console) *TapeLibraryManager {
	return &TapeLibraryManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "tape-library",
		BaseURI:     "/api/tape-libraries",
		ListProp:    "tape-libraries",
		UriProp:     "object-uri",
		NameProp:    "name",
		QueryProps:  []string{"name"},
		Parent:      console,
		Session:     session,
		NewResource: newTapeLibrary,
	})}
}
