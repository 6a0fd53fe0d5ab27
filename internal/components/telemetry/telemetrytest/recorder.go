// Package telemetrytest provides a telemetry.API that records every report so
// tests can assert on what a component reported.
package telemetrytest

import (
	"strings"
	"sync"
)

type Report struct {
	Kind   string
	ID     string
	Params []any
}

// Recorder implements telemetry.API.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) record(kind, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, ID: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns a copy of every report of the given kind.
func (r *Recorder) Reports(kind string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind {
			out = append(out, report)
		}
	}
	return out
}

// Broken returns true if any broken report id ends with the given suffix.
func (r *Recorder) Broken(idSuffix string) bool {
	for _, report := range r.Reports("broken") {
		if strings.HasSuffix(report.ID, idSuffix) {
			return true
		}
	}
	return false
}

// Warned returns true if any warning id ends with the given suffix.
func (r *Recorder) Warned(idSuffix string) bool {
	for _, report := range r.Reports("warning") {
		if strings.HasSuffix(report.ID, idSuffix) {
			return true
		}
	}
	return false
}
