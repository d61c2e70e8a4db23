// Package preflight reports whether the environment can run the pipeline:
// external binaries on PATH, writable output and data directories, and which
// provider credentials are configured.
//
// The "autoshow status" command renders every check. The process command runs
// RunAll before touching any item so a missing directory or key fails the
// invocation up front.
package preflight
