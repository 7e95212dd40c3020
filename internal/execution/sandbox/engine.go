// Package sandbox defines the isolation contract the orchestrator drives and
// its Docker-backed implementation. Any backend works as long as it provides
// a constrained environment with no network, a hard memory ceiling without
// swap headroom, a shared read/write mount, and a recognizable signal when it
// kills the process for exceeding memory.
package sandbox

import (
	"context"
)

// MountPath is the fixed path inside the sandbox where the job workspace is
// mounted. The execution image reads the submission from here and writes its
// artifact files back to it.
const MountPath = "/ae"

// TimeLimitEnv is the environment variable through which the time limit is
// communicated into the sandbox. The execution image self-enforces it.
const TimeLimitEnv = "TIME_LIMIT"

// OOMExitCode is the conventional exit code reported when the backend's own
// resource enforcement kills the process for exceeding memory.
const OOMExitCode = 137

// CreateSpec describes one sandbox to create.
type CreateSpec struct {
	// Name addresses the sandbox for Start and Destroy. Namespaced by job
	// identifier so concurrent jobs never collide.
	Name string
	// Image is the execution image, selected by language.
	Image string
	// WorkspacePath is the host directory mounted read/write at MountPath.
	WorkspacePath string
	// MemoryLimitMB caps memory; applied as both the hard limit and the
	// swap limit so the program gets no swap headroom.
	MemoryLimitMB int
	// TimeLimitSeconds is passed into the sandbox via TimeLimitEnv.
	TimeLimitSeconds int
}

// StartResult reports how a sandbox run ended. Callers branch on these
// fields, never on the shape of an error value.
type StartResult struct {
	ExitCode  int64
	OOMKilled bool
}

// MemoryKilled reports whether the backend killed the process for exceeding
// its memory limit.
func (r StartResult) MemoryKilled() bool {
	return r.OOMKilled || r.ExitCode == OOMExitCode
}

// Engine is the capability set the orchestrator needs from an isolation
// backend.
type Engine interface {
	// Create provisions a new sandbox. It does not start execution.
	Create(ctx context.Context, spec CreateSpec) error

	// Start runs the sandbox and blocks until it exits or the backend's own
	// enforcement terminates it.
	Start(ctx context.Context, name string) (StartResult, error)

	// Destroy releases the sandbox by name.
	Destroy(ctx context.Context, name string) error
}
