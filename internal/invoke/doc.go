// Package invoke executes external tools and reduces each run to a single
// success or failure verdict.
//
// Two entry points share the same option resolution and command echo but
// differ deliberately in output visibility. Exec streams chunks as they
// arrive and applies the FailOnStderr/IgnoreExitCode policy when the tool
// exits. ExecSync buffers everything, reveals output only after termination
// and applies no policy at all; callers relying on buffered output for
// short-lived tools depend on that behaviour, so it is not to be "fixed" to
// stream.
package invoke
