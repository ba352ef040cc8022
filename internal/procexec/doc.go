// Package procexec runs external programs from an explicit argument list and
// working directory. Nothing is ever passed through a shell, so trace file
// names and preset names cannot inject commands.
package procexec
