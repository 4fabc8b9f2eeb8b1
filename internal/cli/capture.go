package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newCaptureCmd(ctx *commandContext) *cobra.Command {
	flags := &invokeFlags{}
	cmd := &cobra.Command{
		Use:   "capture [flags] -- tool [args...]",
		Short: "Run a tool and print its captured output after it exits",
		Long: "Capture blocks until the tool terminates and only then writes the buffered\n" +
			"stdout and stderr. No failure policy is applied; the exit code is reported\n" +
			"as-is.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, opts, invoker, err := ctx.buildInvocation(cmd, flags, args)
			if err != nil {
				return err
			}

			jsonOut := flags.jsonMode(cmd)
			if jsonOut {
				opts.Silent = true
			}

			res := invoker.ExecSync(cmd.Context(), tl, opts)

			if jsonOut {
				record := struct {
					Tool   string `json:"tool"`
					Code   int    `json:"code"`
					Stdout string `json:"stdout"`
					Stderr string `json:"stderr"`
					Error  string `json:"error,omitempty"`
				}{
					Tool:   tl.Path(),
					Code:   res.Code,
					Stdout: res.Stdout,
					Stderr: res.Stderr,
				}
				if res.Err != nil {
					record.Error = res.Err.Error()
				}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(&record); err != nil {
					return err
				}
			}

			if res.Err != nil {
				return &toolExitError{code: res.Code, err: res.Err}
			}
			if res.Code != 0 {
				return &toolExitError{code: res.Code}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
