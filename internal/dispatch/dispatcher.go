package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/matrix"
	"github.com/vk/ximsweep/internal/runstore"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 12

// ErrAborted is the reason recorded for descriptors that never ran because
// the sweep was aborted.
var ErrAborted = errors.New("sweep aborted")

// FailurePolicy selects what a failed run does to the rest of the sweep.
type FailurePolicy string

const (
	PolicyContinue FailurePolicy = "continue"
	PolicyAbort    FailurePolicy = "abort"
)

// ParseFailurePolicy validates a policy name.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case PolicyContinue, PolicyAbort:
		return p, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q: must be %q or %q", s, PolicyContinue, PolicyAbort)
	}
}

// Executor runs one descriptor and returns its one-line summary.
type Executor interface {
	Run(ctx context.Context, d matrix.Descriptor) (string, error)
}

// Dispatcher runs descriptors through an Executor with bounded concurrency.
type Dispatcher struct {
	exec    Executor
	workers int
	policy  FailurePolicy
	now     func() time.Time
}

// New creates a Dispatcher. A non-positive worker count means
// DefaultWorkers; an empty policy means PolicyContinue.
func New(exec Executor, workers int, policy FailurePolicy) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if policy == "" {
		policy = PolicyContinue
	}
	return &Dispatcher{exec: exec, workers: workers, policy: policy, now: time.Now}
}

// Report is the outcome of a dispatch.
type Report struct {
	Records   []runstore.Record
	Succeeded int
	Failed    int
	Skipped   int
}

// Total is the number of descriptors dispatched.
func (r *Report) Total() int { return len(r.Records) }

// OK reports whether every descriptor succeeded.
func (r *Report) OK() bool { return r.Succeeded == len(r.Records) }

// Dispatch runs every descriptor once and blocks until all workers are done.
// The report is always returned. The error is non-nil when the sweep was
// aborted by the failure policy or ctx was cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, descriptors []matrix.Descriptor) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	store := runstore.New()

	workers := min(d.workers, len(descriptors))
	logger.Info("🚀 Starting concurrent execution...", "descriptors", len(descriptors), "workers", workers, "failure_policy", d.policy)

	g, gctx := errgroup.WithContext(ctx)
	readyChan := make(chan matrix.Descriptor)

	g.Go(func() error {
		defer close(readyChan)
		for _, desc := range descriptors {
			select {
			case readyChan <- desc:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	var done atomic.Int64
	for id := range workers {
		g.Go(func() error {
			return d.worker(gctx, readyChan, store, id, &done, len(descriptors))
		})
	}

	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = context.Cause(ctx)
	}

	names := make([]string, len(descriptors))
	for i, desc := range descriptors {
		names[i] = desc.Name
		if store.Get(desc.Name).Status == runstore.StatusPending {
			store.Skip(desc.Name, ErrAborted)
		}
	}

	report := &Report{Records: store.Snapshot(names)}
	for _, r := range report.Records {
		switch r.Status {
		case runstore.StatusSucceeded:
			report.Succeeded++
		case runstore.StatusFailed:
			report.Failed++
		case runstore.StatusSkipped:
			report.Skipped++
		}
	}
	logger.Info("🏁 Execution finished.", "succeeded", report.Succeeded, "failed", report.Failed, "skipped", report.Skipped)

	if runErr != nil {
		return report, fmt.Errorf("%w: %w", ErrAborted, runErr)
	}
	return report, nil
}

// worker is the processing loop for a single concurrent worker.
func (d *Dispatcher) worker(ctx context.Context, readyChan <-chan matrix.Descriptor, store *runstore.Store, workerID int, done *atomic.Int64, total int) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for desc := range readyChan {
		workerLogger := logger.With("workerID", workerID, "run", desc.Name)

		if ctx.Err() != nil {
			store.Skip(desc.Name, ErrAborted)
			continue
		}

		workerLogger.Debug("Worker picked up descriptor.")
		store.Start(desc.Name, d.now())
		summary, err := d.runOne(ctx, desc)
		n := done.Add(1)

		if err != nil {
			workerLogger.Error("Experiment failed.", "error", err, "progress", fmt.Sprintf("%d/%d", n, total))
			store.Fail(desc.Name, err, d.now())
			if d.policy == PolicyAbort {
				return fmt.Errorf("%s: %w", desc.Name, err)
			}
			continue
		}

		store.Succeed(desc.Name, summary, d.now())
		workerLogger.Debug("Experiment succeeded.", "progress", fmt.Sprintf("%d/%d", n, total))
	}
	logger.Debug("Worker finished.", "workerID", workerID)
	return nil
}

// runOne turns a panicking run into a failed run so one bad descriptor
// cannot take its siblings down.
func (d *Dispatcher) runOne(ctx context.Context, desc matrix.Descriptor) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run panicked: %v", r)
		}
	}()
	return d.exec.Run(ctx, desc)
}
