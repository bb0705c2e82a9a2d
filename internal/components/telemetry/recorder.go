package telemetry

import "sync"

// Report is a single call recorded by RecordingAPI.
type Report struct {
	ID     string
	Params []any
}

// RecordingAPI keeps every broken/warning report in memory so tests can assert
// that a component reported what it should have. Debug messages and counts
// are kept too, but only their ids.
type RecordingAPI struct {
	mu       sync.Mutex
	broken   []Report
	warnings []Report
	debug    []string
	counts   map[string]int64
}

func (r *RecordingAPI) ReportBroken(id string, params ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken = append(r.broken, Report{ID: id, Params: params})
}

func (r *RecordingAPI) ReportWarning(id string, params ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, Report{ID: id, Params: params})
}

func (r *RecordingAPI) ReportDebug(msg string, params ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debug = append(r.debug, msg)
}

func (r *RecordingAPI) ReportCount(id string, count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int64{}
	}
	r.counts[id] = count
}

func (r *RecordingAPI) Broken() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.broken...)
}

func (r *RecordingAPI) Warnings() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.warnings...)
}

// Debug returns the messages of every debug report.
func (r *RecordingAPI) Debug() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.debug...)
}

// Count returns the last count reported under id.
func (r *RecordingAPI) Count(id string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.counts[id]
	return n, ok
}
