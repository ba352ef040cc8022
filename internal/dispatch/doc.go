// Package dispatch fans a sweep's descriptors out to a fixed pool of
// workers.
//
// A feeder goroutine pushes descriptors onto an unbuffered channel and each
// worker takes the next one only after finishing its current run, so at most
// Workers runs are in flight. Every descriptor is handed to exactly one
// worker. Completion order is whatever the runs make it; the Report lists
// records in descriptor order regardless.
//
// What happens after a failed run is decided by the FailurePolicy: Continue
// records the failure and keeps going, Abort cancels everything still queued
// or running and marks the queued descriptors as skipped.
package dispatch
