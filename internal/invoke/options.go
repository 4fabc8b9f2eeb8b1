package invoke

import (
	"io"
	"os"
	"sort"

	"github.com/Paintersrp/toolrun/internal/spawn"
	"github.com/Paintersrp/toolrun/internal/tool"
)

// Options configure a single invocation. The zero value runs the tool in the
// caller's working directory with the caller's environment, echoes the
// command line and routes subprocess output to the caller's standard streams.
type Options struct {
	// Dir is the working directory. Empty means the caller's directory.
	Dir string

	// Env is the complete environment for the subprocess. Nil inherits the
	// caller's environment; a non-nil map replaces it entirely.
	Env map[string]string

	// Silent suppresses the command echo and the routing of subprocess
	// output to Stdout/Stderr. Debug emission is unaffected.
	Silent bool

	// FailOnStderr flips the verdict to failure as soon as the subprocess
	// writes to its error stream, even on a zero exit code. It also routes
	// stderr chunks to Stderr instead of Stdout.
	FailOnStderr bool

	// IgnoreExitCode keeps a non-zero exit code from failing the verdict
	// by itself.
	IgnoreExitCode bool

	// Subscribe opens the event stream on the returned Invocation.
	// Subscribers must drain Events for the invocation to make progress;
	// without Subscribe, Events returns an already-closed channel and the
	// verdict resolves with no reader involved.
	Subscribe bool

	// Stdout and Stderr receive subprocess output. Nil writers default to
	// the caller's standard streams.
	Stdout io.Writer
	Stderr io.Writer

	// Image names the container image for container backends.
	Image string
}

func (o Options) resolve(t *tool.Tool) (spawn.Spec, Options) {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	spec := spawn.Spec{
		Path:  t.Path(),
		Args:  t.Args(),
		Dir:   o.Dir,
		Env:   environSlice(o.Env),
		Image: o.Image,
	}
	return spec, o
}

func environSlice(env map[string]string) []string {
	if env == nil {
		return nil
	}
	vars := make([]string, 0, len(env))
	for k, v := range env {
		vars = append(vars, k+"="+v)
	}
	sort.Strings(vars)
	return vars
}
