// Package spawn provides the backends that launch external tools.
//
// A backend owns exactly one spawn/wait cycle per handle. There is no
// supervision beyond that: no retries, no process groups and no deadline
// based termination. Once a tool has been started the only way it ends, as
// far as this package is concerned, is its own natural termination; callers
// needing anything stronger must arrange it around the handle themselves.
package spawn
