package runstore

import (
	"sync"
	"time"
)

// Status is the lifecycle state of one descriptor.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Record is the stored state of one descriptor.
type Record struct {
	Name     string
	Status   Status
	Summary  string
	Err      error
	Started  time.Time
	Finished time.Time
}

// Store is a thread-safe in-memory map from descriptor name to Record.
type Store struct {
	records sync.Map // Key: descriptor name, Value: Record
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Start marks name as running.
func (s *Store) Start(name string, at time.Time) {
	s.records.Store(name, Record{Name: name, Status: StatusRunning, Started: at})
}

// Succeed records a successful run and its audit summary.
func (s *Store) Succeed(name, summary string, at time.Time) {
	r := s.Get(name)
	r.Status, r.Summary, r.Finished = StatusSucceeded, summary, at
	s.records.Store(name, r)
}

// Fail records a failed run.
func (s *Store) Fail(name string, err error, at time.Time) {
	r := s.Get(name)
	r.Status, r.Err, r.Finished = StatusFailed, err, at
	s.records.Store(name, r)
}

// Skip records a descriptor that was never started.
func (s *Store) Skip(name string, reason error) {
	s.records.Store(name, Record{Name: name, Status: StatusSkipped, Err: reason})
}

// Get returns the record for name. A descriptor that was never touched is
// reported as pending.
func (s *Store) Get(name string) Record {
	v, ok := s.records.Load(name)
	if !ok {
		return Record{Name: name, Status: StatusPending}
	}
	return v.(Record)
}

// Snapshot returns the records of names, in the given order.
func (s *Store) Snapshot(names []string) []Record {
	out := make([]Record, 0, len(names))
	for _, n := range names {
		out = append(out, s.Get(n))
	}
	return out
}
