package invoke

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Paintersrp/toolrun/internal/cliutil"
	"github.com/Paintersrp/toolrun/internal/metrics"
	"github.com/Paintersrp/toolrun/internal/spawn"
	"github.com/Paintersrp/toolrun/internal/tool"
)

// commandMarker prefixes the echoed command line.
const commandMarker = "[command]"

// Invoker executes tools through a spawn backend and derives a verdict per
// invocation.
type Invoker struct {
	backend string
	spawner spawn.Spawner
	logger  zerolog.Logger
}

// Option customises an Invoker at construction time.
type Option func(*Invoker)

// WithLogger attaches a debug logger. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Invoker) {
		v.logger = logger
	}
}

// New constructs an Invoker around the named spawn backend.
func New(backend string, spawner spawn.Spawner, opts ...Option) *Invoker {
	v := &Invoker{
		backend: backend,
		spawner: spawner,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Event is one chunk of subprocess output, tagged by stream.
type Event struct {
	Timestamp time.Time
	Source    spawn.Source
	Data      []byte
}

// Invocation is a live streaming invocation. Events delivers output chunks in
// arrival order; Wait resolves the verdict once the tool has terminated.
type Invocation struct {
	toolPath   string
	subscribed bool

	events chan Event
	done   chan struct{}
	code   int
	err    error
}

// Events returns the stream of output chunks when the invocation was started
// with Options.Subscribe; otherwise the channel is already closed. Subscribers
// must drain it. Output routing and the verdict never depend on a reader, so
// callers that only Wait need not touch this channel.
func (i *Invocation) Events() <-chan Event {
	return i.events
}

// Wait blocks until the verdict is resolved or the context is done. A true
// verdict returns the exit code with a nil error; a false verdict returns the
// exit code alongside an error naming the tool and the cause.
func (i *Invocation) Wait(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return -1, ctx.Err()
	case <-i.done:
		return i.code, i.err
	}
}

// Exec launches the tool asynchronously and streams its output. Launch
// failures are returned immediately and no exit-code policy runs; the
// IgnoreExitCode and FailOnStderr flags only shape the verdict of a tool that
// actually started. Callers wanting the per-chunk event stream set
// Options.Subscribe; otherwise they may ignore Events and just Wait.
func (v *Invoker) Exec(ctx context.Context, t *tool.Tool, opts Options) (*Invocation, error) {
	spec, opts := opts.resolve(t)
	start := time.Now()

	v.logger.Debug().
		Str("tool", spec.Path).
		Strs("args", spec.Args).
		Str("backend", v.backend).
		Msg("exec")
	v.echo(t, opts)

	handle, err := v.spawner.Start(ctx, spec)
	if err != nil {
		metrics.RecordInvocation(v.backend, metrics.OutcomeFailure, time.Since(start))
		return nil, fmt.Errorf("exec tool %s: %w", spec.Path, err)
	}

	inv := &Invocation{
		toolPath:   spec.Path,
		subscribed: opts.Subscribe,
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
	}
	if !inv.subscribed {
		close(inv.events)
	}
	go v.supervise(inv, handle, opts, start)
	return inv, nil
}

func (v *Invoker) supervise(inv *Invocation, handle spawn.Handle, opts Options, start time.Time) {
	success := true

	for chunk := range handle.Output() {
		if chunk.Source == spawn.SourceStderr && opts.FailOnStderr {
			success = false
		}
		if !opts.Silent {
			switch {
			case chunk.Source == spawn.SourceStderr && opts.FailOnStderr:
				_, _ = opts.Stderr.Write(chunk.Data)
			default:
				_, _ = opts.Stdout.Write(chunk.Data)
			}
		}
		if inv.subscribed {
			inv.events <- Event{Timestamp: time.Now(), Source: chunk.Source, Data: chunk.Data}
		}
	}
	if inv.subscribed {
		close(inv.events)
	}

	code, waitErr := handle.Wait(context.Background())
	if waitErr != nil {
		success = false
	}
	if code != 0 && !opts.IgnoreExitCode {
		success = false
	}

	inv.code = code
	switch {
	case waitErr != nil:
		inv.err = waitErr
	case success:
		inv.err = nil
	case code != 0 && !opts.IgnoreExitCode:
		inv.err = fmt.Errorf("tool %s failed with exit code %d", inv.toolPath, code)
	default:
		inv.err = fmt.Errorf("tool %s wrote to stderr", inv.toolPath)
	}

	outcome := metrics.OutcomeSuccess
	if inv.err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.RecordInvocation(v.backend, outcome, time.Since(start))
	v.logger.Debug().
		Str("tool", inv.toolPath).
		Int("code", code).
		Bool("success", inv.err == nil).
		Msg("exec done")
	close(inv.done)
}

func (v *Invoker) echo(t *tool.Tool, opts Options) {
	if opts.Silent {
		return
	}
	fmt.Fprintf(opts.Stdout, "%s %s\n", commandMarker, cliutil.RedactSecrets(t.CommandLine()))
}
