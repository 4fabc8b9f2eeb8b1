package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	stdruntime "runtime"
	"strings"
	"testing"
)

func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	if stdruntime.GOOS == "windows" {
		t.Skip("cli tests use /bin/sh and are skipped on windows")
	}

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRunStreamsAndEchoes(t *testing.T) {
	out, _, err := execRoot(t, "run", "--json=false", "--", "/bin/sh", "-c", "echo hi")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "[command] /bin/sh -c echo hi\n") {
		t.Fatalf("missing command echo in %q", out)
	}
	if !strings.Contains(out, "hi\n") {
		t.Fatalf("missing tool output in %q", out)
	}
}

func TestRunMirrorsExitCode(t *testing.T) {
	_, _, err := execRoot(t, "run", "--json=false", "--", "/bin/sh", "-c", "exit 3")
	var exitErr *toolExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected toolExitError, got %v", err)
	}
	if exitErr.exitCode() != 3 {
		t.Fatalf("exit code = %d, want 3", exitErr.exitCode())
	}
	if exitErr.err == nil {
		t.Fatalf("expected verdict error for non-zero exit")
	}
}

func TestRunIgnoreExitCodeStillMirrors(t *testing.T) {
	_, _, err := execRoot(t, "run", "--json=false", "--ignore-exit-code", "--", "/bin/sh", "-c", "exit 3")
	var exitErr *toolExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected toolExitError, got %v", err)
	}
	if exitErr.err != nil {
		t.Fatalf("ignored exit code must not carry a verdict error, got %v", exitErr.err)
	}
	if exitErr.exitCode() != 3 {
		t.Fatalf("exit code = %d, want 3", exitErr.exitCode())
	}
}

func TestRunFailOnStderr(t *testing.T) {
	_, errOut, err := execRoot(t, "run", "--json=false", "--fail-on-stderr", "--", "/bin/sh", "-c", "echo warn >&2")
	if err == nil {
		t.Fatalf("expected failure when the tool writes to stderr")
	}
	if !strings.Contains(err.Error(), "stderr") {
		t.Fatalf("error %q does not name stderr", err)
	}
	if !strings.Contains(errOut, "warn") {
		t.Fatalf("stderr chunk not routed to stderr: %q", errOut)
	}
}

func TestRunStderrToleratedByDefault(t *testing.T) {
	out, errOut, err := execRoot(t, "run", "--json=false", "--", "/bin/sh", "-c", "echo warn >&2")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "warn") {
		t.Fatalf("stderr chunk should route to stdout by default: %q", out)
	}
	if strings.Contains(errOut, "warn") {
		t.Fatalf("unexpected stderr routing: %q", errOut)
	}
}

func TestRunJSONRecords(t *testing.T) {
	out, _, err := execRoot(t, "run", "--json", "--", "/bin/sh", "-c", "echo hi")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var rec struct {
		Tool    string `json:"tool"`
		Source  string `json:"source"`
		Message string `json:"msg"`
	}
	line := strings.SplitN(strings.TrimSpace(out), "\n", 2)[0]
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("decode record %q: %v", line, err)
	}
	if rec.Tool != "/bin/sh" || rec.Source != "stdout" || !strings.Contains(rec.Message, "hi") {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRunArgLineTokenizes(t *testing.T) {
	out, _, err := execRoot(t, "run", "--json=false", "--arg-line", `a "b c"`, "--", "/bin/echo")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "a b c\n") {
		t.Fatalf("arg line not tokenized: %q", out)
	}
}

func TestRunEnvReplacesEnvironment(t *testing.T) {
	out, _, err := execRoot(t, "run", "--json=false", "--env", "MARKER=zz9", "--", "/bin/sh", "-c", `printf "$MARKER:$HOME"`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "zz9:") {
		t.Fatalf("env entry missing: %q", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ":") {
		t.Fatalf("inherited variable leaked into replaced environment: %q", out)
	}
}

func TestRunUnknownBackend(t *testing.T) {
	_, _, err := execRoot(t, "run", "--backend", "warp", "--", "/bin/true")
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

func TestRunLaunchFailure(t *testing.T) {
	_, _, err := execRoot(t, "run", "--json=false", "--", "/no/such/tool")
	if err == nil {
		t.Fatalf("expected launch failure")
	}
	if !strings.Contains(err.Error(), "/no/such/tool") {
		t.Fatalf("error %q does not name the tool", err)
	}
}
