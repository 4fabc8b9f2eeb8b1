package spawn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

type dockerSpawner struct {
	client     *client.Client
	clientOnce sync.Once
	clientErr  error
}

// NewDocker constructs a spawner that runs tools inside a container. The
// Spec must carry an image; the tool path and arguments become the container
// command.
func NewDocker() Spawner {
	return &dockerSpawner{}
}

func (s *dockerSpawner) getClient() (*client.Client, error) {
	s.clientOnce.Do(func() {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			s.clientErr = err
			return
		}
		s.client = cli
	})
	return s.client, s.clientErr
}

func (s *dockerSpawner) Start(ctx context.Context, spec Spec) (Handle, error) {
	if spec.Image == "" {
		return nil, fmt.Errorf("tool %s: docker backend requires an image", spec.Path)
	}

	cli, err := s.getClient()
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	if err := ensureImage(ctx, cli, spec.Image); err != nil {
		return nil, err
	}

	createResp, err := cli.ContainerCreate(ctx, buildContainerConfig(spec), &container.HostConfig{}, &network.NetworkingConfig{}, nil, "")
	if err != nil {
		return nil, fmt.Errorf("container create: %w", err)
	}
	containerID := createResp.ID

	if err := cli.ContainerStart(ctx, containerID, types.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("start tool %s: container start: %w", spec.Path, err)
	}

	h := &dockerHandle{
		cli:         cli,
		containerID: containerID,
		path:        spec.Path,
		output:      make(chan Chunk, 64),
		logDone:     make(chan struct{}),
		done:        make(chan struct{}),
	}
	h.startLogStreamer()
	h.startWaiter()
	return h, nil
}

func (s *dockerSpawner) Run(ctx context.Context, spec Spec) Outcome {
	handle, err := s.Start(ctx, spec)
	if err != nil {
		return Outcome{Code: -1, Err: err}
	}

	var stdout, stderr bytes.Buffer
	for chunk := range handle.Output() {
		switch chunk.Source {
		case SourceStdout:
			stdout.Write(chunk.Data)
		case SourceStderr:
			stderr.Write(chunk.Data)
		}
	}

	code, err := handle.Wait(ctx)
	return Outcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Code: code, Err: err}
}

func buildContainerConfig(spec Spec) *container.Config {
	return &container.Config{
		Image:      spec.Image,
		Cmd:        strslice.StrSlice(append([]string{spec.Path}, spec.Args...)),
		WorkingDir: spec.Dir,
		Env:        spec.Env,
	}
}

type dockerHandle struct {
	cli         *client.Client
	containerID string
	path        string

	output  chan Chunk
	logDone chan struct{}
	logOnce sync.Once
	logErr  error

	done chan struct{}
	code int
	err  error
}

func (h *dockerHandle) Output() <-chan Chunk {
	return h.output
}

func (h *dockerHandle) Wait(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return -1, ctx.Err()
	case <-h.done:
		return h.code, h.err
	}
}

func (h *dockerHandle) startLogStreamer() {
	h.logOnce.Do(func() {
		go func() {
			defer close(h.output)
			defer close(h.logDone)
			reader, err := h.cli.ContainerLogs(context.Background(), h.containerID, types.ContainerLogsOptions{
				ShowStdout: true,
				ShowStderr: true,
				Follow:     true,
				Tail:       "all",
			})
			if err != nil {
				h.logErr = err
				return
			}
			defer reader.Close()

			stdout := &chunkWriter{ch: h.output, source: SourceStdout}
			stderr := &chunkWriter{ch: h.output, source: SourceStderr}
			if _, err := stdcopy.StdCopy(stdout, stderr, reader); err != nil {
				h.logErr = err
			}
		}()
	})
}

func (h *dockerHandle) startWaiter() {
	go func() {
		defer close(h.done)
		var (
			code    int
			waitErr error
		)
		statusCh, errCh := h.cli.ContainerWait(context.Background(), h.containerID, container.WaitConditionNextExit)
		select {
		case err := <-errCh:
			if err != nil {
				code = -1
				waitErr = fmt.Errorf("wait tool %s: %w", h.path, err)
			}
		case resp := <-statusCh:
			code = int(resp.StatusCode)
			if resp.Error != nil {
				waitErr = errors.New(resp.Error.Message)
			}
		}
		// Removing the container tears down the log stream, so let it
		// drain first.
		<-h.logDone
		h.settle(code, waitErr)
		_ = h.cli.ContainerRemove(context.Background(), h.containerID, types.ContainerRemoveOptions{Force: true})
	}()
}

// settle records the final verdict. Must run after logDone so the log
// streamer's error is visible; wait errors take precedence over stream
// errors.
func (h *dockerHandle) settle(code int, waitErr error) {
	h.code = code
	h.err = waitErr
	if h.err == nil && h.logErr != nil {
		h.err = fmt.Errorf("stream tool %s logs: %w", h.path, h.logErr)
	}
}

type chunkWriter struct {
	ch     chan<- Chunk
	source Source
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data := make([]byte, len(p))
	copy(data, p)
	w.ch <- Chunk{Source: w.source, Data: data}
	return len(p), nil
}

func ensureImage(ctx context.Context, cli *client.Client, imageName string) error {
	_, _, err := cli.ImageInspectWithRaw(ctx, imageName)
	if err == nil {
		return nil
	}
	if !client.IsErrNotFound(err) {
		return fmt.Errorf("inspect image: %w", err)
	}
	reader, err := cli.ImagePull(ctx, imageName, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("pull image: %w", err)
	}
	defer reader.Close()
	_, _ = io.Copy(io.Discard, reader)
	return nil
}
