// Package cli turns ximsweep's command line into an app.Config and maps
// invalid invocations to process exit codes: 255 for a missing or unknown
// mode, 2 for any other usage error.
package cli
