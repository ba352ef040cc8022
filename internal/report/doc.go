// Package report reconciles a finished sweep: it writes the sweep manifest
// next to the results and prints a summary to the console.
package report
