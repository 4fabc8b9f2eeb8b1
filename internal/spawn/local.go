package spawn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

const chunkSize = 32 * 1024

type localSpawner struct{}

// NewLocal constructs a spawner that runs tools as local child processes.
func NewLocal() Spawner {
	return &localSpawner{}
}

func (s *localSpawner) Start(ctx context.Context, spec Spec) (Handle, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	configureCmd(cmd, spec)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("tool %s stdout: %w", spec.Path, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("tool %s stderr: %w", spec.Path, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start tool %s: %w", spec.Path, err)
	}

	h := &localHandle{
		path:   spec.Path,
		output: make(chan Chunk, 64),
		done:   make(chan struct{}),
	}

	var pumps sync.WaitGroup
	pumps.Add(2)
	go h.pump(stdout, SourceStdout, &pumps)
	go h.pump(stderr, SourceStderr, &pumps)

	go func() {
		// Both pipes must reach EOF before cmd.Wait may close them.
		pumps.Wait()
		close(h.output)
		h.settle(cmd.Wait())
	}()

	return h, nil
}

func (s *localSpawner) Run(ctx context.Context, spec Spec) Outcome {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	configureCmd(cmd, spec)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := Outcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.Code = exitErr.ExitCode()
			return outcome
		}
		outcome.Code = -1
		outcome.Err = fmt.Errorf("start tool %s: %w", spec.Path, err)
	}
	return outcome
}

func configureCmd(cmd *exec.Cmd, spec Spec) {
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
}

type localHandle struct {
	path   string
	output chan Chunk

	done chan struct{}
	code int
	err  error
}

func (h *localHandle) Output() <-chan Chunk {
	return h.output
}

func (h *localHandle) Wait(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return -1, ctx.Err()
	case <-h.done:
		return h.code, h.err
	}
}

func (h *localHandle) pump(r io.Reader, source Source, pumps *sync.WaitGroup) {
	defer pumps.Done()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			h.output <- Chunk{Source: source, Data: data}
		}
		if err != nil {
			return
		}
	}
}

func (h *localHandle) settle(waitErr error) {
	defer close(h.done)
	if waitErr == nil {
		return
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		h.code = exitErr.ExitCode()
		return
	}
	h.code = -1
	h.err = fmt.Errorf("wait tool %s: %w", h.path, waitErr)
}
