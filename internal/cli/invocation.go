package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/toolrun/internal/config"
	"github.com/Paintersrp/toolrun/internal/invoke"
	"github.com/Paintersrp/toolrun/internal/tool"
)

// invokeFlags are shared by the run and capture commands.
type invokeFlags struct {
	workdir        string
	envVars        []string
	envFile        string
	argLine        string
	backend        string
	image          string
	silent         bool
	failOnStderr   bool
	ignoreExitCode bool
	jsonOut        bool
}

func (f *invokeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.workdir, "workdir", "", "Working directory for the tool")
	cmd.Flags().StringArrayVar(&f.envVars, "env", nil, "Environment entry KEY=VALUE (repeatable; replaces the inherited environment)")
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "File of KEY=VALUE environment entries")
	cmd.Flags().StringVar(&f.argLine, "arg-line", "", "Extra arguments as one quote-aware command line")
	cmd.Flags().StringVar(&f.backend, "backend", "", "Spawn backend (local or docker)")
	cmd.Flags().StringVar(&f.image, "image", "", "Container image for the docker backend")
	cmd.Flags().BoolVar(&f.silent, "silent", false, "Suppress command echo and output routing")
	cmd.Flags().BoolVar(&f.failOnStderr, "fail-on-stderr", false, "Treat any stderr output as failure")
	cmd.Flags().BoolVar(&f.ignoreExitCode, "ignore-exit-code", false, "Do not fail on a non-zero exit code")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Emit structured JSON instead of raw output (default when stdout is not a terminal)")
}

// jsonMode resolves the --json flag, defaulting to structured output when
// stdout is not a terminal.
func (f *invokeFlags) jsonMode(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("json") {
		return f.jsonOut
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// buildInvocation merges the defaults file with the command flags into a tool
// and its options.
func (c *commandContext) buildInvocation(cmd *cobra.Command, flags *invokeFlags, args []string) (*tool.Tool, invoke.Options, *invoke.Invoker, error) {
	var opts invoke.Options

	defaults, err := c.loadDefaults(cmd)
	if err != nil {
		return nil, opts, nil, err
	}

	logger := c.logger()
	tl := tool.New(args[0], tool.WithLogger(logger))
	tl.Arg(args[1:]...)
	tl.Line(flags.argLine, false)

	opts.Dir = defaults.Defaults.Workdir
	if flags.workdir != "" {
		opts.Dir = flags.workdir
	}
	opts.Image = defaults.Defaults.Image
	if flags.image != "" {
		opts.Image = flags.image
	}
	opts.Silent = resolveBool(cmd, "silent", flags.silent, defaults.Defaults.Silent)
	opts.FailOnStderr = resolveBool(cmd, "fail-on-stderr", flags.failOnStderr, defaults.Defaults.FailOnStderr)
	opts.IgnoreExitCode = resolveBool(cmd, "ignore-exit-code", flags.ignoreExitCode, defaults.Defaults.IgnoreExitCode)
	opts.Stdout = cmd.OutOrStdout()
	opts.Stderr = cmd.ErrOrStderr()

	opts.Env, err = c.buildEnv(defaults, flags)
	if err != nil {
		return nil, opts, nil, err
	}

	backend := defaults.Defaults.Backend
	if flags.backend != "" {
		backend = flags.backend
	}
	spawner, ok := c.registry()[backend]
	if !ok {
		return nil, opts, nil, fmt.Errorf("unknown backend %q", backend)
	}

	invoker := invoke.New(backend, spawner, invoke.WithLogger(logger))
	return tl, opts, invoker, nil
}

// buildEnv assembles the complete subprocess environment from the defaults
// file and flags. Nil means the tool inherits the caller's environment.
func (c *commandContext) buildEnv(defaults *config.File, flags *invokeFlags) (map[string]string, error) {
	var env map[string]string
	add := func(k, v string) {
		if env == nil {
			env = make(map[string]string)
		}
		env[k] = v
	}

	for k, v := range defaults.Env {
		add(k, v)
	}
	if flags.envFile != "" {
		fileEnv, err := config.LoadEnvFile(flags.envFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fileEnv {
			add(k, v)
		}
	}
	for _, entry := range flags.envVars {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env entry %q, want KEY=VALUE", entry)
		}
		add(key, value)
	}
	return env, nil
}

// resolveBool prefers an explicitly set flag over the defaults file.
func resolveBool(cmd *cobra.Command, name string, flagValue, defaultValue bool) bool {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return flagValue || defaultValue
}
