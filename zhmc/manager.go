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
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
)

// Manager is the common capability set shared by every concrete manager
// (CpcManager, PartitionManager, ...). Concrete managers embed *ManagerBase
// and implement ResourceFactory to turn a raw properties map into their
// own Resource type.
type Manager interface {
	ClassName() string
	BaseURI() string
	Session() *Session
	UriProp() string
	NameProp() string
	Cache() *NameUriCache
	Parent() Resource
	QueryProps() map[string]bool
}

// ResourceFactory builds a concrete Resource from properties discovered by
// list/find/create. Each concrete manager supplies its own.
type ResourceFactory func(mgr Manager, parent Resource, properties map[string]any, full bool) Resource

// ManagerBase implements Manager and the shared list/find/create/delete
// machinery; concrete managers embed it.
type ManagerBase struct {
	className      string
	baseURI        string
	listProp       string // JSON array property name in the list response, e.g. "cpcs"
	uriProp        string // "object-uri" or "element-uri"
	nameProp       string // usually "name"
	queryProps     map[string]bool
	caseInsensitive bool

	parent  Resource
	session *Session
	cache   *NameUriCache

	newResource ResourceFactory
}

// ManagerConfig configures a new ManagerBase.
type ManagerConfig struct {
	ClassName       string
	BaseURI         string
	ListProp        string
	UriProp         string
	NameProp        string
	QueryProps      []string
	CaseInsensitive bool
	Parent          Resource
	Session         *Session
	NewResource     ResourceFactory
}

// NewManagerBase constructs a ManagerBase with its own NameUriCache,
// populated lazily by list().
func NewManagerBase(cfg ManagerConfig) *ManagerBase {
	if cfg.UriProp == "" {
		cfg.UriProp = "object-uri"
	}
	if cfg.NameProp == "" {
		cfg.NameProp = "name"
	}
	qp := make(map[string]bool, len(cfg.QueryProps))
	for _, p := range cfg.QueryProps {
		qp[p] = true
	}

	mb := &ManagerBase{
		className:       cfg.ClassName,
		baseURI:         cfg.BaseURI,
		listProp:        cfg.ListProp,
		uriProp:         cfg.UriProp,
		nameProp:        cfg.NameProp,
		queryProps:      qp,
		caseInsensitive: cfg.CaseInsensitive,
		parent:          cfg.Parent,
		session:         cfg.Session,
		newResource:     cfg.NewResource,
	}

	ttl := DefaultRetryTimeoutConfig().NameCacheTTL
	if cfg.Session != nil {
		ttl = cfg.Session.retryTimeout.NameCacheTTL
	}
	mb.cache = NewNameUriCache(ttl, mb.populateCache)
	return mb
}

func (m *ManagerBase) ClassName() string           { return m.className }
func (m *ManagerBase) BaseURI() string              { return m.baseURI }
func (m *ManagerBase) Session() *Session            { return m.session }
func (m *ManagerBase) UriProp() string              { return m.uriProp }
func (m *ManagerBase) NameProp() string             { return m.nameProp }
func (m *ManagerBase) Cache() *NameUriCache         { return m.cache }
func (m *ManagerBase) Parent() Resource             { return m.parent }
func (m *ManagerBase) QueryProps() map[string]bool  { return m.queryProps }

func (m *ManagerBase) populateCache() (map[string]string, error) {
	resources, err := m.List(context.Background(), false, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(resources))
	for _, r := range resources {
		if r.Name() != "" {
			out[r.Name()] = r.URI()
		}
	}
	return out, nil
}

// List returns every child resource, applying filterArgs client- and/or
// server-side. Keys present in QueryProps() are forwarded as URL query
// parameters; the rest are applied client-side via matchesFilter.
// fullProperties, when true, pulls full properties for every resource
// after listing.
func (m *ManagerBase) List(ctx context.Context, fullProperties bool, filterArgs map[string]any) ([]Resource, error) {
	serverArgs := make(map[string]any)
	clientArgs := make(map[string]any)
	for k, v := range filterArgs {
		if m.queryProps[k] {
			serverArgs[k] = v
		} else {
			clientArgs[k] = v
		}
	}

	uri := m.baseURI
	if len(serverArgs) > 0 {
		q := url.Values{}
		for k, v := range serverArgs {
			q.Set(k, fmt.Sprintf("%v", v))
		}
		uri = uri + "?" + q.Encode()
	}

	body, err := m.session.Get(ctx, uri, true, true)
	if err != nil {
		return nil, err
	}

	rawList, _ := body[m.listProp].([]any)
	resources := make([]Resource, 0, len(rawList))
	for _, raw := range rawList {
		props, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if !matchesAllFilters(props, clientArgs, m.caseInsensitive) {
			continue
		}
		res := m.newResource(m, m.parent, props, false)
		resources = append(resources, res)
	}

	if fullProperties {
		for _, r := range resources {
			if err := r.PullFullProperties(ctx); err != nil {
				return nil, err
			}
		}
	}

	return resources, nil
}

// matchesAllFilters reports whether props satisfies every key/value in
// filterArgs using the source's client-side matching rule: a list filter
// value matches if any element matches; a scalar string filter value is a
// regular expression matched at the start of the stringified property value
// (not required to reach its end, so "foo.*" selects "foo" and "foobar" but
// not "barfoo"); any other scalar requires equality.
func matchesAllFilters(props map[string]any, filterArgs map[string]any, caseInsensitive bool) bool {
	for key, want := range filterArgs {
		have, ok := props[key]
		if !ok {
			return false
		}
		if !matchesFilter(have, want, caseInsensitive) {
			return false
		}
	}
	return true
}

func matchesFilter(have, want any, caseInsensitive bool) bool {
	wantVal := reflect.ValueOf(want)
	if wantVal.Kind() == reflect.Slice || wantVal.Kind() == reflect.Array {
		for i := 0; i < wantVal.Len(); i++ {
			if matchesFilter(have, wantVal.Index(i).Interface(), caseInsensitive) {
				return true
			}
		}
		return false
	}

	wantStr, wantIsString := want.(string)
	if !wantIsString {
		return reflect.DeepEqual(have, want)
	}

	haveStr := fmt.Sprintf("%v", have)
	if caseInsensitive {
		haveStr = strings.ToLower(haveStr)
		wantStr = strings.ToLower(wantStr)
	}
	matched, err := regexp.MatchString("^(?:"+wantStr+")", haveStr)
	if err != nil {
		return haveStr == wantStr
	}
	return matched
}

// FindAll returns every resource matching filterArgs. If the only filter
// key is the name property, it's resolved through the NameUriCache;
// otherwise it delegates to List.
func (m *ManagerBase) FindAll(ctx context.Context, filterArgs map[string]any) ([]Resource, error) {
	if name, ok := soleNameFilter(filterArgs, m.nameProp); ok {
		uri, found, err := m.cache.Get(name)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return []Resource{m.ResourceObject(uri, map[string]any{m.nameProp: name})}, nil
	}
	return m.List(ctx, false, filterArgs)
}

func soleNameFilter(filterArgs map[string]any, nameProp string) (string, bool) {
	if len(filterArgs) != 1 {
		return "", false
	}
	v, ok := filterArgs[nameProp]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Find is FindAll with a cardinality check: zero matches raises NotFound,
// two or more raises NoUniqueMatch.
func (m *ManagerBase) Find(ctx context.Context, filterArgs map[string]any) (Resource, error) {
	all, err := m.FindAll(ctx, filterArgs)
	if err != nil {
		return nil, err
	}
	switch len(all) {
	case 0:
		return nil, &NotFound{ManagerClass: m.className, FilterArgs: filterArgs}
	case 1:
		return all[0], nil
	default:
		return nil, &NoUniqueMatch{ManagerClass: m.className, FilterArgs: filterArgs, Count: len(all)}
	}
}

// FindByName resolves name through the NameUriCache.
func (m *ManagerBase) FindByName(ctx context.Context, name string) (Resource, error) {
	return m.Find(ctx, map[string]any{m.nameProp: name})
}

// ResourceObject materializes a local Resource for uri without a network
// call, filling in any properties already known (e.g. name). This is the
// cheap way to build a reference to a resource whose existence is assumed.
func (m *ManagerBase) ResourceObject(uri string, knownProps map[string]any) Resource {
	props := make(map[string]any, len(knownProps)+3)
	for k, v := range knownProps {
		props[k] = v
	}
	props[m.uriProp] = uri
	props["class"] = m.className
	if idProp := idPropForUriProp(m.uriProp); idProp != "" {
		if id := lastUriSegment(uri); id != "" {
			props[idProp] = id
		}
	}
	return m.newResource(m, m.parent, props, false)
}

// idPropForUriProp maps the HMC's two URI property conventions to their
// paired id property, e.g. "object-uri" resources carry "object-id" and
// "element-uri" resources carry "element-id", both the URI's last path
// segment.
func idPropForUriProp(uriProp string) string {
	switch uriProp {
	case "object-uri":
		return "object-id"
	case "element-uri":
		return "element-id"
	default:
		return ""
	}
}

func lastUriSegment(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// Create POSTs properties to the manager's base URI and returns the newly
// created Resource.
func (m *ManagerBase) Create(ctx context.Context, properties map[string]any) (Resource, error) {
	body, err := m.session.Post(ctx, m.baseURI, properties, true, true, nil, true)
	if err != nil {
		return nil, err
	}
	uri, _ := body[m.uriProp].(string)
	merged := make(map[string]any, len(properties)+len(body))
	for k, v := range properties {
		merged[k] = v
	}
	for k, v := range body {
		merged[k] = v
	}
	res := m.newResource(m, m.parent, merged, false)
	if name, ok := properties[m.nameProp].(string); ok {
		m.cache.Update(name, uri)
	}
	return res, nil
}
