// Package matrix expands an option table into the ordered set of experiment
// descriptors that make up one sweep.
//
// The expansion is a Cartesian product over four dimensions in a fixed order:
// scheduler (outermost), traffic, rate and zero_comp (innermost). Each
// product tuple becomes one Descriptor named xim_000, xim_001, ... in the
// order it is produced. Downstream components rely on that order only for
// presentation; nothing else about a descriptor depends on its position.
package matrix
