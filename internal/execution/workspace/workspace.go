// Package workspace manages the ephemeral, job-scoped directory shared with
// the sandbox: the submission source, the generated stdin and expected-output
// files, and the artifact files the execution image writes back on exit.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/assignexpert/assignexpert/internal/execution/model"
	appErr "github.com/assignexpert/assignexpert/pkg/errors"
)

// File names shared with the execution image. These are a bit-exact contract:
// the image reads input.txt and writes the artifact files before exiting.
const (
	InputFile          = "input.txt"
	ExpectedOutputFile = "output.txt"

	ArtifactCompile = "compile.txt"
	ArtifactRuntime = "runtime.txt"
	ArtifactTimeout = "timeout.txt"
	ArtifactOutput  = "submission.txt"
	ArtifactStats   = "stats.txt"
)

// Workspace is one job's directory. It is exclusively owned by a single
// orchestrator invocation.
type Workspace struct {
	jobID string
	dir   string
}

// Build creates the job directory under root and writes the submission
// source, the stdin file, and the expected-output file.
//
// In judge mode the stdin file is the test-case count followed by each input;
// the expected-output file is every expected output concatenated. In run mode
// stdin is the caller-supplied input and the expected-output file is written
// empty. The expected-output file exists in both modes.
func Build(root, jobID string, req model.ExecutionRequest) (*Workspace, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.WorkspaceSetupFailed, "create workspace root failed")
	}
	dir := filepath.Join(root, jobID)
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.WorkspaceSetupFailed, "create job directory failed")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, appErr.Wrapf(err, appErr.WorkspaceSetupFailed, "resolve job directory failed")
	}
	ws := &Workspace{jobID: jobID, dir: abs}

	files := map[string]string{
		model.SourceFileName(req.Language): req.Code,
		InputFile:                          stdinContent(req),
		ExpectedOutputFile:                 expectedContent(req.TestCases),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(abs, name), []byte(content), 0644); err != nil {
			_ = ws.Remove()
			return nil, appErr.Wrapf(err, appErr.WorkspaceSetupFailed, "write %s failed", name)
		}
	}
	return ws, nil
}

// Path returns the absolute host path of the job directory, suitable for
// mounting into the sandbox.
func (w *Workspace) Path() string {
	return w.dir
}

// Artifact reads a file from the job directory and returns its content.
func (w *Workspace) Artifact(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, name))
	if err != nil {
		return "", fmt.Errorf("read artifact %s: %w", name, err)
	}
	return string(data), nil
}

// Remove deletes the job directory recursively. A directory that no longer
// exists is not an error.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return appErr.Wrapf(err, appErr.TeardownFailed, "remove workspace failed")
	}
	return nil
}

func stdinContent(req model.ExecutionRequest) string {
	if req.Mode != model.ModeJudge {
		return req.Stdin
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(req.TestCases))
	for _, tc := range req.TestCases {
		b.WriteString(tc.Input)
		b.WriteString("\n")
	}
	return b.String()
}

func expectedContent(testCases []model.TestCase) string {
	var b strings.Builder
	for _, tc := range testCases {
		b.WriteString(tc.Output)
		b.WriteString("\n")
	}
	return b.String()
}
