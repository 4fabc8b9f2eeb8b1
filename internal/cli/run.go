package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/toolrun/internal/cliutil"
)

func newRunCmd(ctx *commandContext) *cobra.Command {
	flags := &invokeFlags{}
	cmd := &cobra.Command{
		Use:   "run [flags] -- tool [args...]",
		Short: "Run a tool, streaming its output",
		Long: "Run launches the tool and streams its output as it arrives. The exit code\n" +
			"of toolrun mirrors the tool's exit code; policy flags decide whether a run\n" +
			"counts as a failure.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, opts, invoker, err := ctx.buildInvocation(cmd, flags, args)
			if err != nil {
				return err
			}

			jsonOut := flags.jsonMode(cmd)
			if jsonOut {
				// Structured mode carries output in records instead of
				// echoing it.
				opts.Silent = true
				opts.Subscribe = true
			}

			inv, err := invoker.Exec(cmd.Context(), tl, opts)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for evt := range inv.Events() {
					cliutil.EncodeRecord(enc, cmd.ErrOrStderr(), cliutil.Record{
						Timestamp: evt.Timestamp,
						Tool:      tl.Path(),
						Source:    string(evt.Source),
						Message:   string(evt.Data),
					})
				}
			}

			code, err := inv.Wait(cmd.Context())
			if err != nil {
				return &toolExitError{code: code, err: err}
			}
			if code != 0 {
				return &toolExitError{code: code}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
