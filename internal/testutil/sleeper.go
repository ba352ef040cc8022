// Package testutil holds test doubles shared by the sweep packages.
package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/ximsweep/internal/matrix"
)

// ErrSimulated is returned for descriptors registered with FailOn.
var ErrSimulated = errors.New("simulator exited with status 1")

// SleeperExecutor is a run executor for concurrency tests. Each run sleeps
// for a fixed duration; the executor records every call, its execution
// window and the peak number of runs in flight at once.
type SleeperExecutor struct {
	mu             sync.Mutex
	ExecutionTimes map[string]*ExecutionRecord
	calls          map[string]int
	fail           map[string]bool
	panicOn        string
	sleepDuration  time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
}

// NewSleeperExecutor creates an executor whose runs take sleep each.
func NewSleeperExecutor(sleep time.Duration) *SleeperExecutor {
	return &SleeperExecutor{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		calls:          make(map[string]int),
		fail:           make(map[string]bool),
		sleepDuration:  sleep,
	}
}

// FailOn makes the runs of the named descriptors return ErrSimulated.
func (m *SleeperExecutor) FailOn(names ...string) *SleeperExecutor {
	for _, n := range names {
		m.fail[n] = true
	}
	return m
}

// PanicOn makes the run of the named descriptor panic.
func (m *SleeperExecutor) PanicOn(name string) *SleeperExecutor {
	m.panicOn = name
	return m
}

// Run implements dispatch.Executor.
func (m *SleeperExecutor) Run(_ context.Context, d matrix.Descriptor) (string, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	m.mu.Lock()
	m.calls[d.Name]++
	m.mu.Unlock()

	if d.Name == m.panicOn {
		panic("audit file vanished")
	}

	startTime := time.Now()
	time.Sleep(m.sleepDuration)
	endTime := time.Now()

	m.mu.Lock()
	m.ExecutionTimes[d.Name] = &ExecutionRecord{Start: startTime, End: endTime}
	m.mu.Unlock()

	if m.fail[d.Name] {
		return "", ErrSimulated
	}
	return "summary " + d.Name, nil
}

// Calls returns how many times each descriptor was run.
func (m *SleeperExecutor) Calls() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.calls))
	for k, v := range m.calls {
		out[k] = v
	}
	return out
}

// Peak is the largest number of runs observed in flight at once.
func (m *SleeperExecutor) Peak() int {
	return int(m.peak.Load())
}
