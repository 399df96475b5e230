package testutil

import (
	"sort"
	"sync"
	"time"
)

// ExecutionRecord holds the start and end times of one job execution.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// Recorder collects execution windows keyed by label, plus the order in
// which labels started. It is safe for concurrent use by jobs.
type Recorder struct {
	mu      sync.Mutex
	records map[string][]ExecutionRecord
	started []string
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{records: make(map[string][]ExecutionRecord)}
}

// Begin notes that label started now and returns a func to call when it ends.
func (r *Recorder) Begin(label string) (end func()) {
	start := time.Now()
	r.mu.Lock()
	r.started = append(r.started, label)
	r.mu.Unlock()
	return func() {
		rec := ExecutionRecord{Start: start, End: time.Now()}
		r.mu.Lock()
		r.records[label] = append(r.records[label], rec)
		r.mu.Unlock()
	}
}

// Records returns every window recorded for label.
func (r *Recorder) Records(label string) []ExecutionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ExecutionRecord(nil), r.records[label]...)
}

// Window returns the envelope of all executions recorded for label: the
// earliest start and the latest end. ok is false if label never ran.
func (r *Recorder) Window(label string) (rec ExecutionRecord, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.records[label]
	if len(recs) == 0 {
		return ExecutionRecord{}, false
	}
	rec = recs[0]
	for _, x := range recs[1:] {
		if x.Start.Before(rec.Start) {
			rec.Start = x.Start
		}
		if x.End.After(rec.End) {
			rec.End = x.End
		}
	}
	return rec, true
}

// StartOrder returns labels in the order they began.
func (r *Recorder) StartOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.started...)
}

// Labels returns every recorded label, sorted.
func (r *Recorder) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.records))
	for l := range r.records {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string][]ExecutionRecord)
	r.started = nil
}
