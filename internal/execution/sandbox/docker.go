package sandbox

import (
	"context"
	"fmt"

	appErr "github.com/assignexpert/assignexpert/pkg/errors"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// DockerEngine implements Engine on the Docker API.
type DockerEngine struct {
	cli *client.Client
}

// NewDockerEngine creates an engine from the environment's Docker settings
// (DOCKER_HOST and friends).
func NewDockerEngine() (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.ServiceUnavailable, "create docker client failed")
	}
	return &DockerEngine{cli: cli}, nil
}

// NewDockerEngineWithClient wraps an existing Docker client.
func NewDockerEngineWithClient(cli *client.Client) *DockerEngine {
	return &DockerEngine{cli: cli}
}

// Create provisions a container named after the job, with the workspace bind
// mounted at MountPath, networking disabled, and the memory limit applied as
// both the hard cap and the swap cap.
func (e *DockerEngine) Create(ctx context.Context, spec CreateSpec) error {
	memoryBytes := int64(spec.MemoryLimitMB) * 1024 * 1024

	_, err := e.cli.ContainerCreate(ctx,
		&container.Config{
			Image: spec.Image,
			Env:   []string{fmt.Sprintf("%s=%d", TimeLimitEnv, spec.TimeLimitSeconds)},
		},
		&container.HostConfig{
			NetworkMode: "none",
			Binds: []string{
				fmt.Sprintf("%s:%s:rw", spec.WorkspacePath, MountPath),
			},
			Resources: container.Resources{
				Memory:     memoryBytes,
				MemorySwap: memoryBytes,
			},
		},
		nil, nil, spec.Name)
	if err != nil {
		return appErr.Wrapf(err, appErr.SandboxCreateFailed, "create container %s failed", spec.Name)
	}
	return nil
}

// Start starts the container and blocks until it is no longer running, then
// reports the exit code and whether the kernel OOM killer terminated it.
func (e *DockerEngine) Start(ctx context.Context, name string) (StartResult, error) {
	if err := e.cli.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return StartResult{}, appErr.Wrapf(err, appErr.SandboxStartFailed, "start container %s failed", name)
	}

	statusCh, errCh := e.cli.ContainerWait(ctx, name, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case err := <-errCh:
		if err != nil {
			return StartResult{}, appErr.Wrapf(err, appErr.SandboxStartFailed, "wait for container %s failed", name)
		}
	case status := <-statusCh:
		exitCode = status.StatusCode
	case <-ctx.Done():
		return StartResult{}, appErr.Wrap(ctx.Err(), appErr.Timeout)
	}

	result := StartResult{ExitCode: exitCode}
	if inspect, err := e.cli.ContainerInspect(ctx, name); err == nil && inspect.State != nil {
		result.OOMKilled = inspect.State.OOMKilled
	}
	return result, nil
}

// Destroy force-removes the container. Removing an already-gone container is
// an error from the API and is returned as such; callers decide tolerance.
func (e *DockerEngine) Destroy(ctx context.Context, name string) error {
	if err := e.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true}); err != nil {
		return appErr.Wrapf(err, appErr.TeardownFailed, "remove container %s failed", name)
	}
	return nil
}
