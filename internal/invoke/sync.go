package invoke

import (
	"context"
	"fmt"
	"time"

	"github.com/Paintersrp/toolrun/internal/metrics"
	"github.com/Paintersrp/toolrun/internal/tool"
)

// Result is the raw outcome of a blocking invocation. Err is set only for
// backend-level launch failures; a non-zero exit code is reported in Code and
// left for the caller to interpret.
type Result struct {
	Stdout string
	Stderr string
	Code   int
	Err    error
}

// ExecSync launches the tool and blocks until it exits, buffering output in
// full. Unless Silent is set, the captured stdout and stderr are written to
// the configured streams only after termination, so long-running tools show
// nothing until they finish.
//
// Unlike Exec, no FailOnStderr or IgnoreExitCode policy is applied; callers
// needing a policy-based verdict with blocking semantics apply it themselves.
func (v *Invoker) ExecSync(ctx context.Context, t *tool.Tool, opts Options) Result {
	spec, opts := opts.resolve(t)
	start := time.Now()

	v.logger.Debug().
		Str("tool", spec.Path).
		Strs("args", spec.Args).
		Str("backend", v.backend).
		Msg("exec sync")
	v.echo(t, opts)

	outcome := v.spawner.Run(ctx, spec)

	if !opts.Silent {
		if len(outcome.Stdout) > 0 {
			_, _ = opts.Stdout.Write(outcome.Stdout)
		}
		if len(outcome.Stderr) > 0 {
			_, _ = opts.Stderr.Write(outcome.Stderr)
		}
	}

	result := Result{
		Stdout: string(outcome.Stdout),
		Stderr: string(outcome.Stderr),
		Code:   outcome.Code,
	}
	if outcome.Err != nil {
		result.Err = fmt.Errorf("exec tool %s: %w", spec.Path, outcome.Err)
	}

	label := metrics.OutcomeSuccess
	if result.Err != nil {
		label = metrics.OutcomeFailure
	}
	metrics.RecordInvocation(v.backend, label, time.Since(start))
	v.logger.Debug().
		Str("tool", spec.Path).
		Int("code", result.Code).
		Msg("exec sync done")
	return result
}
