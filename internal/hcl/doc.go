// Package hcl loads preset catalogs written in HCL. A catalog file declares
// `preset "<name>"` blocks whose option lists are evaluated with a small set
// of collection and string functions and the built-in network splits.
package hcl
