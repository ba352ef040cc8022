// Package runexec runs a single experiment descriptor from staging to audit
// extraction. Each run owns <scratch>/<name> and <result>/<name>, so any
// number of runs can proceed in parallel without locking.
package runexec
