package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelOperation  = "operation"
	ProfilingLabelRouting    = "routing_type"
)

// MaxLabelValueLength caps label values
const MaxLabelValueLength = 128

// highCardinalityLabels never reach Pyroscope; every job and purchase order
// would otherwise become its own series.
var highCardinalityLabels = map[string]bool{
	"request_id":        true,
	"trace_id":          true,
	"span_id":           true,
	"job_id":            true,
	"purchase_order_id": true,
	"execution_id":      true,
}

// WithProfilingLabels runs fn with pprof labels attached to ctx so CPU and
// allocation samples can be sliced by operation in Pyroscope.
//
//	telemetry.WithProfilingLabels(ctx, telemetry.BrokerageOperationLabels("recompute"), func(c context.Context) {
//	    split, err = recompute(c, jobID)
//	})
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// BrokerageOperationLabels labels a brokerage service operation
func BrokerageOperationLabels(operation string) map[string]string {
	return map[string]string{
		ProfilingLabelController: "brokerage",
		ProfilingLabelOperation:  operation,
	}
}

// HTTPRequestLabels labels an HTTP request by its route pattern
func HTTPRequestLabels(method, route string) map[string]string {
	labels := map[string]string{
		ProfilingLabelMethod: method,
		ProfilingLabelRoute:  route,
	}
	if controller := controllerFromRoute(route); controller != "" {
		labels[ProfilingLabelController] = controller
	}
	return labels
}

// controllerFromRoute returns the first static segment after the API version,
// e.g. "/api/v1/purchase-orders/:id/finalize" -> "purchase-orders".
func controllerFromRoute(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i, part := range parts {
		if part == "" || part == "api" || strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		if i > 0 && parts[i-1] == "api" && len(part) > 1 && part[0] == 'v' {
			continue
		}
		return part
	}
	return ""
}

// sanitizeLabels drops empty and high-cardinality entries, truncates long
// values and returns key/value pairs sorted by key.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		clean := sanitizeLabelKey(key)
		if clean == "" || value == "" || highCardinalityLabels[clean] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		pairs = append(pairs, clean, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_]
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
