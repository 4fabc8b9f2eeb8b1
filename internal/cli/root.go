package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/toolrun/internal/config"
	"github.com/Paintersrp/toolrun/internal/spawn"
)

func NewRootCmd() *cobra.Command {
	var (
		defaultsFile string
		verbose      bool
	)

	root := &cobra.Command{
		Use:   "toolrun",
		Short: "Run external tools with a uniform success/failure verdict",
	}

	root.PersistentFlags().
		StringVarP(&defaultsFile, "file", "f", "toolrun.yaml", "Path to invocation defaults")
	root.PersistentFlags().
		BoolVar(&verbose, "verbose", false, "Emit debug events to stderr")

	ctx := &commandContext{defaultsFile: &defaultsFile, verbose: &verbose}
	root.AddCommand(newRunCmd(ctx))
	root.AddCommand(newCaptureCmd(ctx))
	root.AddCommand(newConfigCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *toolExitError
		if errors.As(err, &exitErr) {
			if exitErr.err != nil {
				fmt.Fprintln(os.Stderr, exitErr.err)
			}
			os.Exit(exitErr.exitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type commandContext struct {
	defaultsFile *string
	verbose      *bool
}

// loadDefaults reads the defaults file. The built-in path is optional; a path
// given explicitly must exist.
func (c *commandContext) loadDefaults(cmd *cobra.Command) (*config.File, error) {
	doc, err := config.Load(*c.defaultsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("file") {
			doc = &config.File{}
			doc.ApplyDefaults()
			return doc, nil
		}
		return nil, err
	}
	return doc, nil
}

func (c *commandContext) logger() zerolog.Logger {
	if !*c.verbose {
		return zerolog.Nop()
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(output).With().Timestamp().Logger()
}

func (c *commandContext) registry() spawn.Registry {
	return spawn.Registry{
		"local":  spawn.NewLocal(),
		"docker": spawn.NewDocker(),
	}
}

// toolExitError carries the subprocess exit code out of a command so the
// binary can mirror it.
type toolExitError struct {
	code int
	err  error
}

func (e *toolExitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *toolExitError) Unwrap() error {
	return e.err
}

func (e *toolExitError) exitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}
