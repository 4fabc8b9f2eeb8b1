package tool

import (
	"strings"

	"github.com/rs/zerolog"
)

// Tool accumulates the argument list for a single invocation of an external
// executable. Append operations may be chained; the argument list is only
// mutated through them and must not be modified once execution starts.
type Tool struct {
	path   string
	args   []string
	quiet  bool
	logger zerolog.Logger
}

// Option customises a Tool at construction time.
type Option func(*Tool)

// WithLogger attaches a debug logger that receives one event per appended
// argument. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tool) {
		t.logger = logger
	}
}

// WithQuiet suppresses per-append debug emission for this tool. Subprocess
// output routing is unaffected.
func WithQuiet() Option {
	return func(t *Tool) {
		t.quiet = true
	}
}

// New constructs a Tool for the executable at path.
func New(path string, opts ...Option) *Tool {
	t := &Tool{
		path:   path,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Path returns the executable path the tool was constructed with.
func (t *Tool) Path() string {
	return t.path
}

// Args returns a copy of the accumulated argument list.
func (t *Tool) Args() []string {
	return append([]string(nil), t.args...)
}

// CommandLine renders the tool path followed by the space-joined arguments.
func (t *Tool) CommandLine() string {
	if len(t.args) == 0 {
		return t.path
	}
	return t.path + " " + strings.Join(t.args, " ")
}

// Arg appends each value verbatim as a single argument, empty strings
// included. Values containing spaces are preserved unsplit.
func (t *Tool) Arg(vals ...string) *Tool {
	for _, val := range vals {
		t.appendArg(val)
	}
	return t
}

// ArgIf appends the values only when cond holds.
func (t *Tool) ArgIf(cond bool, vals ...string) *Tool {
	if !cond {
		return t
	}
	return t.Arg(vals...)
}

// PathArg appends a filesystem path as a single verbatim argument. The path
// is not validated or cleaned.
func (t *Tool) PathArg(path string) *Tool {
	return t.Arg(path)
}

// Line appends arguments parsed from a command-line fragment. When literal is
// set the text is appended as one argument; otherwise it is split with Split.
// Empty text appends nothing either way.
//
// Splitting honours double quotes only; see Split for the limitations.
func (t *Tool) Line(text string, literal bool) *Tool {
	if text == "" {
		return t
	}
	if literal {
		return t.Arg(text)
	}
	for _, token := range Split(text) {
		t.appendArg(token)
	}
	return t
}

func (t *Tool) appendArg(val string) {
	t.args = append(t.args, val)
	if !t.quiet {
		t.logger.Debug().Str("tool", t.path).Str("arg", val).Msg("append arg")
	}
}
