package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/assignexpert/assignexpert/internal/execution/model"
	"github.com/assignexpert/assignexpert/internal/execution/workspace"
)

func TestBuildJudgeModeLayout(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	req := model.ExecutionRequest{
		Code:     "print(input())",
		Language: "python",
		Mode:     model.ModeJudge,
		TestCases: []model.TestCase{
			{Input: "1 2", Output: "3"},
			{Input: "3 4", Output: "7"},
		},
	}

	ws, err := workspace.Build(root, "job-judge-layout", req)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !filepath.IsAbs(ws.Path()) {
		t.Fatalf("expected absolute workspace path, got %s", ws.Path())
	}

	source, err := ws.Artifact("submission.py")
	if err != nil {
		t.Fatalf("read source failed: %v", err)
	}
	if source != "print(input())" {
		t.Fatalf("unexpected source content %q", source)
	}

	stdin, err := ws.Artifact(workspace.InputFile)
	if err != nil {
		t.Fatalf("read stdin failed: %v", err)
	}
	if stdin != "2\n1 2\n3 4\n" {
		t.Fatalf("unexpected stdin content %q", stdin)
	}

	expected, err := ws.Artifact(workspace.ExpectedOutputFile)
	if err != nil {
		t.Fatalf("read expected output failed: %v", err)
	}
	if expected != "3\n7\n" {
		t.Fatalf("unexpected expected-output content %q", expected)
	}
}

func TestBuildRunModePassesStdinThrough(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	req := model.ExecutionRequest{
		Code:     "int main() { return 0; }",
		Language: "c",
		Mode:     model.ModeRun,
		Stdin:    "raw input\nwith two lines",
	}

	ws, err := workspace.Build(root, "job-run-layout", req)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	stdin, err := ws.Artifact(workspace.InputFile)
	if err != nil {
		t.Fatalf("read stdin failed: %v", err)
	}
	if stdin != "raw input\nwith two lines" {
		t.Fatalf("unexpected stdin content %q", stdin)
	}

	expected, err := ws.Artifact(workspace.ExpectedOutputFile)
	if err != nil {
		t.Fatalf("expected-output file should exist even in run mode: %v", err)
	}
	if expected != "" {
		t.Fatalf("expected empty expected-output file, got %q", expected)
	}

	if _, err := ws.Artifact("submission.c"); err != nil {
		t.Fatalf("read source failed: %v", err)
	}
}

func TestArtifactReadFailsForMissingFile(t *testing.T) {
	t.Parallel()
	ws, err := workspace.Build(t.TempDir(), "job-missing-artifact", model.ExecutionRequest{
		Code:     "x",
		Language: "cpp",
		Mode:     model.ModeRun,
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, err := ws.Artifact(workspace.ArtifactCompile); err == nil {
		t.Fatal("expected an error for an artifact the sandbox never wrote")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()
	ws, err := workspace.Build(t.TempDir(), "job-remove", model.ExecutionRequest{
		Code:     "x",
		Language: "c",
		Mode:     model.ModeRun,
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if err := ws.Remove(); err != nil {
		t.Fatalf("first remove failed: %v", err)
	}
	if _, err := os.Stat(ws.Path()); !os.IsNotExist(err) {
		t.Fatalf("workspace directory still present after remove")
	}
	if err := ws.Remove(); err != nil {
		t.Fatalf("second remove should tolerate a missing directory: %v", err)
	}
}
