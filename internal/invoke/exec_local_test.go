package invoke

import (
	"bytes"
	"context"
	stdruntime "runtime"
	"strings"
	"testing"

	"github.com/Paintersrp/toolrun/internal/spawn"
	"github.com/Paintersrp/toolrun/internal/tool"
)

func localInvoker(t *testing.T) *Invoker {
	t.Helper()
	if stdruntime.GOOS == "windows" {
		t.Skip("local invocation tests skipped on windows")
	}
	return New("local", spawn.NewLocal())
}

func TestExecStreamsLocalTool(t *testing.T) {
	v := localInvoker(t)

	var out bytes.Buffer
	tl := tool.New("/bin/sh").Arg("-c").Arg("echo streamed")

	inv, err := v.Exec(context.Background(), tl, Options{Stdout: &out, Stderr: &bytes.Buffer{}, Subscribe: true})
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	var streamed bytes.Buffer
	for evt := range inv.Events() {
		if evt.Source == spawn.SourceStdout {
			streamed.Write(evt.Data)
		}
	}
	code, err := inv.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
	if streamed.String() != "streamed\n" {
		t.Fatalf("streamed = %q, want %q", streamed.String(), "streamed\n")
	}
	if !strings.HasPrefix(out.String(), "[command] /bin/sh -c echo streamed\n") {
		t.Fatalf("missing command echo in %q", out.String())
	}
}

func TestExecLocalNonZeroExit(t *testing.T) {
	v := localInvoker(t)

	inv, err := v.Exec(context.Background(), tool.New("/bin/sh").Arg("-c", "exit 4"), Options{Silent: true})
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	for range inv.Events() {
	}
	code, err := inv.Wait(context.Background())
	if err == nil {
		t.Fatalf("expected verdict failure")
	}
	if code != 4 {
		t.Fatalf("code = %d, want 4", code)
	}
	if !strings.Contains(err.Error(), "exit code 4") {
		t.Fatalf("error %q does not name the exit code", err)
	}
}

func TestExecSyncLocalCapturesEverything(t *testing.T) {
	v := localInvoker(t)

	res := v.ExecSync(context.Background(), tool.New("/bin/sh").Arg("-c", "printf hello"), Options{Silent: true})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Code != 0 || res.Stdout != "hello" || res.Stderr != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
