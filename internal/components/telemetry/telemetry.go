package telemetry

import (
	"fmt"
)

// API is an abstraction over logging/metrics so that components can be
// asserted on in tests.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that has failed in a way someone should look at.
	//
	// The `id` names the failing **component**, not the line that failed. A failed
	// HTTP request inside the catalog client's dog search is `client.search-dogs`;
	// the fact that it was HTTP belongs in a wrapped error or a param.
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) underscores inside a component name
	// 3) dashes for the method of a component
	//
	// Ids are declared as `report_...` constants at the top of each package, and
	// packages wrap the API they receive in a ScopedAPI so ids stay short.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that did not break but may need a look.
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports debug information that is dropped outside of verbose mode.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the value of a counter at the current time. Values are
	// points over time, not increments.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id or message with a namespace, like a sub-logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

// NewScopedAPI creates a ScopedAPI out of a given namespace and another api.
func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
