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
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricDefinition describes one named value within a metric group, as
// returned in a MetricsContext's create response (metric-group-infos).
type MetricDefinition struct {
	Name string
	Type string // "boolean-metric", "byte-string-metric", "string-metric", "integer-metric", "integer-metric-array", "double-metric"
	Unit string
}

// MetricGroupDefinition is the ordered set of MetricDefinitions the HMC
// reports for one metric group name, cached on the MetricsContext at
// creation time and used to interpret later GetMetrics() data.
type MetricGroupDefinition struct {
	Name        string
	Definitions []MetricDefinition
}

// MetricsContext is a server-side subscription to one or more metric
// groups. Deleting it releases the HMC-side resources backing the
// subscription.
type MetricsContext struct {
	*ResourceBase

	groupDefinitions map[string][]MetricDefinition
}

func newMetricsContext(mgr Manager, parent Resource, props map[string]any, full bool) Resource {
	uri, _ := props["object-uri"].(string)
	mc := &MetricsContext{
		ResourceBase:     NewResourceBase(mgr, parent, uri, "metrics-context", props, full),
		groupDefinitions: map[string][]MetricDefinition{},
	}
	mc.cacheGroupDefinitions(props)
	return mc
}

func (m *MetricsContext) cacheGroupDefinitions(props map[string]any) {
	infos, _ := props["metric-group-infos"].([]any)
	for _, raw := range infos {
		info, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := info["group-name"].(string)
		if name == "" {
			continue
		}
		metricInfos, _ := info["metric-infos"].([]any)
		defs := make([]MetricDefinition, 0, len(metricInfos))
		for _, mi := range metricInfos {
			md, ok := mi.(map[string]any)
			if !ok {
				continue
			}
			def := MetricDefinition{}
			def.Name, _ = md["metric-name"].(string)
			def.Type, _ = md["metric-type"].(string)
			def.Unit, _ = md["unit"].(string)
			defs = append(defs, def)
		}
		m.groupDefinitions[name] = defs
	}
}

// GroupDefinition returns the cached MetricGroupDefinition for groupName,
// or false if it was not included in this context's metric-group-infos.
func (m *MetricsContext) GroupDefinition(groupName string) (MetricGroupDefinition, bool) {
	defs, ok := m.groupDefinitions[groupName]
	if !ok {
		return MetricGroupDefinition{}, false
	}
	return MetricGroupDefinition{Name: groupName, Definitions: defs}, true
}

// GetMetrics fetches and parses the current metrics snapshot for this
// context's subscribed groups.
func (m *MetricsContext) GetMetrics(ctx context.Context) (*MetricsResponse, error) {
	raw, err := m.Manager().Session().GetText(ctx, m.URI())
	if err != nil {
		return nil, err
	}
	return parseMetricsResponse(raw, m.groupDefinitions)
}

// MetricObjectValues binds one resource URI to its named metric values
// for one group.
type MetricObjectValues struct {
	ResourceURI string
	Values      map[string]any
}

// Resolve looks up the object's ResourceURI in known, a URI-to-Resource map
// typically built from a Manager's already-listed resources, and returns
// MetricsResourceNotFound if the HMC reported metrics for a resource not
// present in it.
func (obj MetricObjectValues) Resolve(known map[string]Resource) (Resource, error) {
	r, ok := known[obj.ResourceURI]
	if !ok {
		return nil, &MetricsResourceNotFound{ResourceURI: obj.ResourceURI}
	}
	return r, nil
}

// MetricGroupValues is one metric group's ordered list of
// MetricObjectValues, as returned in one GetMetrics() call.
type MetricGroupValues struct {
	GroupName string
	Objects   []MetricObjectValues
	defs      []MetricDefinition
}

// AsCollector renders this group's numeric metric values as a Prometheus
// gauge collector labeled by resource URI, for registration in a caller's
// own Prometheus registry. It is not added to the registry behind
// Client.MetricsHandler(), which serves only the session request metrics.
func (g MetricGroupValues) AsCollector() prometheus.Collector {
	return &metricGroupCollector{group: g}
}

type metricGroupCollector struct {
	group MetricGroupValues
}

func (c *metricGroupCollector) Describe(ch chan<- *prometheus.Desc) {}

func (c *metricGroupCollector) Collect(ch chan<- prometheus.Metric) {
	for _, obj := range c.group.Objects {
		for name, value := range obj.Values {
			f, ok := toFloat(value)
			if !ok {
				continue
			}
			desc := prometheus.NewDesc(
				"zhmc_metric_"+sanitizeMetricName(c.group.GroupName)+"_"+sanitizeMetricName(name),
				"HMC-reported metric "+name+" from group "+c.group.GroupName,
				[]string{"resource_uri"}, nil,
			)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, f, obj.ResourceURI)
		}
	}
}

func sanitizeMetricName(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, s)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// MetricsResponse is the parsed view over one GetMetrics() body: an
// ordered list of MetricGroupValues.
type MetricsResponse struct {
	Groups []MetricGroupValues
}

// GroupNamed returns the response's values for groupName, if present.
func (r *MetricsResponse) GroupNamed(groupName string) (MetricGroupValues, bool) {
	for _, g := range r.Groups {
		if g.GroupName == groupName {
			return g, true
		}
	}
	return MetricGroupValues{}, false
}

// parseMetricsResponse parses the HMC's textual metrics export format:
//
//	"group-name"
//	  "object-uri"
//	    value1,value2,...
//	  "object-uri2"
//	    value1,value2,...
//	<blank line>
//	"group-name2"
//	  ...
//
// Each value is comma-separated: double-quoted strings are unescaped as
// JSON string literals, "true"/"false" become booleans, everything else
// is parsed as a number and otherwise kept as a raw string.
func parseMetricsResponse(raw string, groupDefs map[string][]MetricDefinition) (*MetricsResponse, error) {
	resp := &MetricsResponse{}
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var current *MetricGroupValues
	var pendingURI string

	flush := func() {
		if current != nil {
			resp.Groups = append(resp.Groups, *current)
			current = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			pendingURI = ""
			continue
		}
		indented := len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
		unquoted := unquoteMetricToken(trimmed)

		switch {
		case !indented:
			flush()
			name := unquoted
			current = &MetricGroupValues{GroupName: name, defs: groupDefs[name]}
		case pendingURI == "":
			pendingURI = unquoted
		default:
			if current != nil {
				values := parseMetricValueLine(trimmed, current.defs)
				current.Objects = append(current.Objects, MetricObjectValues{ResourceURI: pendingURI, Values: values})
			}
			pendingURI = ""
		}
	}
	flush()

	return resp, nil
}

func unquoteMetricToken(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if v, err := strconv.Unquote(s); err == nil {
			return v
		}
		return s[1 : len(s)-1]
	}
	return s
}

func parseMetricValueLine(line string, defs []MetricDefinition) map[string]any {
	fields := splitMetricValues(line)
	values := make(map[string]any, len(fields))
	for i, raw := range fields {
		name := strconv.Itoa(i)
		if i < len(defs) {
			name = defs[i].Name
		}
		values[name] = parseMetricValue(raw)
	}
	return values
}

// splitMetricValues splits a comma-separated value line, honoring
// double-quoted string fields that may themselves contain commas.
func splitMetricValues(line string) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			b.WriteByte(ch)
		case ch == ',' && !inQuotes:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	fields = append(fields, b.String())
	return fields
}

func parseMetricValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		return unquoteMetricToken(trimmed)
	}
	switch trimmed {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return trimmed
}

// MetricsContextManager creates and deletes MetricsContexts.
type MetricsContextManager struct{ *ManagerBase }

// NewMetricsContextManager constructs the MetricsContext manager.
func NewMetricsContextManager(session *Session) *MetricsContextManager {
	return &MetricsContextManager{ManagerBase: NewManagerBase(ManagerConfig{
		ClassName:   "metrics-context",
		BaseURI:     "/api/services/metrics/context",
		UriProp:     "object-uri",
		NameProp:    "name",
		Session:     session,
		NewResource: newMetricsContext,
	})}
}

// Create subscribes to metricGroups at the given anticipated refresh
// frequency (minimum 15 seconds per the HMC's own enforcement).
func (m *MetricsContextManager) Create(ctx context.Context, anticipatedFrequencySeconds int, metricGroups []string) (*MetricsContext, error) {
	props := map[string]any{
		"anticipated-frequency-seconds": anticipatedFrequencySeconds,
		"metric-groups":                 metricGroups,
	}
	res, err := m.ManagerBase.Create(ctx, props)
	if err != nil {
		return nil, err
	}
	return res.(*MetricsContext), nil
}
