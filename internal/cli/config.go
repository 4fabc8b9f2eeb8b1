package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with invocation defaults files",
	}
	cmd.AddCommand(newConfigLintCmd(ctx))
	cmd.AddCommand(newConfigShowCmd(ctx))
	return cmd
}

func newConfigLintCmd(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Validate an invocation defaults file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.loadDefaults(cmd); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}
	return cmd
}

func newConfigShowCmd(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved invocation defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.loadDefaults(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("encode defaults: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	return cmd
}
