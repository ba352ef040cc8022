// Package preset turns a mode token into the option table of a sweep and
// the two directories the sweep works in.
//
// Built-in modes are the sweeps the simulator project ships with.
// Additional modes can be defined in HCL catalog files and passed to
// NewResolver as Definitions; they take precedence over built-ins of the
// same name.
package preset
