// Package runstore records what happened to every descriptor of a sweep.
//
// # Purpose
//
// Workers report into the store as they finish; the dispatcher reads it back
// once the pool has drained to build the sweep report. Nothing here is
// persisted: the report package writes the final state to sweep.yaml.
//
// # Concurrency Model
//
// Each descriptor's record is written by exactly one worker and the key space
// is known up front, so records live in a sync.Map.
// Readers never see a half-written record because records are stored as
// whole values.
package runstore
