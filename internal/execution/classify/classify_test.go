package classify_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/assignexpert/assignexpert/internal/execution/classify"
	"github.com/assignexpert/assignexpert/internal/execution/model"
	"github.com/assignexpert/assignexpert/internal/execution/workspace"
)

type fakeSource struct {
	files map[string]string
	errs  map[string]error
}

func (f *fakeSource) Artifact(name string) (string, error) {
	if err := f.errs[name]; err != nil {
		return "", err
	}
	content, ok := f.files[name]
	if !ok {
		return "", fmt.Errorf("artifact %s does not exist", name)
	}
	return content, nil
}

func cleanRun(output string) *fakeSource {
	return &fakeSource{files: map[string]string{
		workspace.ArtifactCompile:    "",
		workspace.ArtifactRuntime:    "",
		workspace.ArtifactTimeout:    classify.NoTimeoutSentinel,
		workspace.ArtifactOutput:     output,
		workspace.ExpectedOutputFile: output,
		workspace.ArtifactStats:      "1024-250",
	}}
}

func TestCompileErrorWinsOverEverything(t *testing.T) {
	t.Parallel()
	src := cleanRun("3\n")
	src.files[workspace.ArtifactCompile] = "submission.c:3: expected ';'"
	src.files[workspace.ArtifactRuntime] = "segfault"
	src.files[workspace.ArtifactTimeout] = "1\n"

	result, err := classify.Run(src, model.ModeJudge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.VerdictCE {
		t.Fatalf("expected CE, got %s", result.Status)
	}
	if result.Message != "submission.c:3: expected ';'" {
		t.Fatalf("expected verbatim compiler output, got %q", result.Message)
	}
}

func TestRuntimeErrorBeatsTimeout(t *testing.T) {
	t.Parallel()
	src := cleanRun("3\n")
	src.files[workspace.ArtifactRuntime] = "IndexError: list index out of range"
	src.files[workspace.ArtifactTimeout] = "1\n"

	result, err := classify.Run(src, model.ModeJudge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.VerdictRE {
		t.Fatalf("expected RE, got %s", result.Status)
	}
	if result.Message != "IndexError: list index out of range" {
		t.Fatalf("expected verbatim runtime output, got %q", result.Message)
	}
}

func TestTimeoutSentinelMismatchMeansTLE(t *testing.T) {
	t.Parallel()
	src := cleanRun("3\n")
	src.files[workspace.ArtifactTimeout] = "1\n"

	result, err := classify.Run(src, model.ModeJudge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.VerdictTLE {
		t.Fatalf("expected TLE, got %s", result.Status)
	}
	if result.Message == "" {
		t.Fatal("expected a fixed TLE message")
	}
}

func TestJudgeModeMatchingOutputIsAccepted(t *testing.T) {
	t.Parallel()
	result, err := classify.Run(cleanRun("3\n7\n"), model.ModeJudge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.VerdictAC {
		t.Fatalf("expected AC, got %s", result.Status)
	}
	if result.Message != "" {
		t.Fatalf("expected empty message for AC, got %q", result.Message)
	}
}

func TestJudgeModeDifferingOutputIsWrongAnswer(t *testing.T) {
	t.Parallel()
	src := cleanRun("3\n7\n")
	src.files[workspace.ArtifactOutput] = "3\n8\n"

	result, err := classify.Run(src, model.ModeJudge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.VerdictWA {
		t.Fatalf("expected WA, got %s", result.Status)
	}
	if result.Message == "" {
		t.Fatal("expected a non-empty diff for WA")
	}
	if !strings.Contains(result.Message, "8") {
		t.Fatalf("expected diff to mention the differing line, got %q", result.Message)
	}
}

func TestRunModeReturnsRawOutput(t *testing.T) {
	t.Parallel()
	src := cleanRun("hello world\n")
	src.files[workspace.ExpectedOutputFile] = ""

	result, err := classify.Run(src, model.ModeRun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.VerdictAC {
		t.Fatalf("expected AC in run mode, got %s", result.Status)
	}
	if result.Message != "hello world\n" {
		t.Fatalf("expected raw output verbatim, got %q", result.Message)
	}
}

func TestStatsAreAttachedRegardlessOfVerdict(t *testing.T) {
	t.Parallel()
	src := cleanRun("3\n")
	src.files[workspace.ArtifactCompile] = "boom"
	src.files[workspace.ArtifactStats] = "2048-512"

	result, err := classify.Run(src, model.ModeJudge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MemoryUsedKB == nil || *result.MemoryUsedKB != 2048 {
		t.Fatalf("expected memory 2048, got %v", result.MemoryUsedKB)
	}
	if result.TimeTaken == nil || *result.TimeTaken != 512 {
		t.Fatalf("expected time 512, got %v", result.TimeTaken)
	}
}

func TestMalformedStatsLeaveFieldsAbsent(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "notanumber", "1024", "1024-", "-250", "1024-250-7", "a-b"} {
		src := cleanRun("3\n7\n")
		src.files[workspace.ArtifactStats] = raw

		result, err := classify.Run(src, model.ModeJudge)
		if err != nil {
			t.Fatalf("stats %q: unexpected error: %v", raw, err)
		}
		if result.TimeTaken != nil || result.MemoryUsedKB != nil {
			t.Fatalf("stats %q: expected absent fields, got time=%v mem=%v", raw, result.TimeTaken, result.MemoryUsedKB)
		}
	}
}

func TestReadFailureFallsBackToCompileError(t *testing.T) {
	t.Parallel()
	src := cleanRun("3\n")
	src.errs = map[string]error{workspace.ArtifactCompile: errors.New("disk gone")}

	result, err := classify.Run(src, model.ModeJudge)
	if err == nil {
		t.Fatal("expected a degradation error")
	}
	if result.Status != model.VerdictCE {
		t.Fatalf("expected pessimistic CE default, got %s", result.Status)
	}
	if result.MemoryUsedKB == nil || *result.MemoryUsedKB != 1024 {
		t.Fatalf("expected stats parsed despite degradation, got %v", result.MemoryUsedKB)
	}
}

func TestMemoryExceededResult(t *testing.T) {
	t.Parallel()
	result := classify.MemoryExceeded()
	if result.Status != model.VerdictMLE {
		t.Fatalf("expected MLE, got %s", result.Status)
	}
	if result.Message == "" {
		t.Fatal("expected a fixed MLE message")
	}
}
