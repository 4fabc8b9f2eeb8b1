package spawn

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/client"
)

const integrationImage = "ghcr.io/library/alpine:3.19"

func requireDocker(t *testing.T) {
	t.Helper()
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker client: %v", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		t.Skipf("docker ping: %v", err)
	}
}

func TestDockerRunCaptures(t *testing.T) {
	requireDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	outcome := NewDocker().Run(ctx, Spec{
		Path:  "sh",
		Args:  []string{"-c", "echo hi; echo warn >&2"},
		Image: integrationImage,
	})
	if outcome.Err != nil {
		t.Fatalf("run: %v", outcome.Err)
	}
	if outcome.Code != 0 {
		t.Fatalf("code = %d, want 0", outcome.Code)
	}
	if !strings.Contains(string(outcome.Stdout), "hi") {
		t.Fatalf("stdout = %q, want hi", outcome.Stdout)
	}
	if !strings.Contains(string(outcome.Stderr), "warn") {
		t.Fatalf("stderr = %q, want warn", outcome.Stderr)
	}
}

func TestDockerStartStreamsAndReportsExitCode(t *testing.T) {
	requireDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	handle, err := NewDocker().Start(ctx, Spec{
		Path:  "sh",
		Args:  []string{"-c", "echo out; exit 3"},
		Image: integrationImage,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var stdout bytes.Buffer
	for chunk := range handle.Output() {
		if chunk.Source == SourceStdout {
			stdout.Write(chunk.Data)
		}
	}
	if !strings.Contains(stdout.String(), "out") {
		t.Fatalf("stdout = %q, want out", stdout.String())
	}

	code, err := handle.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if code != 3 {
		t.Fatalf("code = %d, want 3", code)
	}
}
