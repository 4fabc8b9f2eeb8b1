package spawn

import "context"

// Source identifies the subprocess stream a chunk was read from.
type Source string

const (
	SourceStdout Source = "stdout"
	SourceStderr Source = "stderr"
)

// Chunk carries one bounded read from a subprocess output stream.
type Chunk struct {
	Source Source
	Data   []byte
}

// Spec describes a single subprocess launch.
type Spec struct {
	// Path is the executable to run, resolved by the backend.
	Path string
	// Args are the positional arguments, in order.
	Args []string
	// Dir is the working directory. Empty means the caller's directory.
	Dir string
	// Env is the complete environment in KEY=VALUE form. Nil means the
	// backend inherits the caller's environment.
	Env []string
	// Image names the container image. Only container backends use it.
	Image string
}

// Handle is a live subprocess started by a Spawner.
type Handle interface {
	// Output returns the stream of output chunks. The channel is closed
	// once both subprocess streams have drained. Callers must consume it;
	// Wait may not return until the stream has been drained.
	Output() <-chan Chunk

	// Wait blocks until the subprocess terminates or the context is done
	// and returns the exit code. A non-zero exit code is not an error;
	// the error reports backend-level wait failures only. Terminations
	// without an exit code (signals) report code -1.
	Wait(ctx context.Context) (int, error)
}

// Outcome is the collected result of a synchronous launch.
type Outcome struct {
	Stdout []byte
	Stderr []byte
	Code   int
	Err    error
}

// Spawner describes a backend capable of launching subprocesses.
type Spawner interface {
	// Start launches the subprocess asynchronously. Errors indicate the
	// process could not be started; exit-status handling happens through
	// the returned handle.
	Start(ctx context.Context, spec Spec) (Handle, error)

	// Run launches the subprocess and blocks until it exits, buffering
	// output in full. Launch failures populate Outcome.Err with code -1;
	// a plain non-zero exit is reported in Outcome.Code alone.
	Run(ctx context.Context, spec Spec) Outcome
}

// Registry maps backend identifiers to their concrete implementations.
type Registry map[string]Spawner

// Clone returns a shallow copy of the registry, allowing callers to avoid
// accidental mutation of shared maps.
func (r Registry) Clone() Registry {
	dup := make(Registry, len(r))
	for k, v := range r {
		dup[k] = v
	}
	return dup
}
