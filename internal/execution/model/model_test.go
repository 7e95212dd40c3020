package model_test

import (
	"strings"
	"testing"

	"github.com/assignexpert/assignexpert/internal/execution/model"
	appErr "github.com/assignexpert/assignexpert/pkg/errors"
)

func validJudgeRequest() model.ExecutionRequest {
	return model.ExecutionRequest{
		Code:        "print('hi')",
		Language:    "python",
		Mode:        model.ModeJudge,
		TestCases:   []model.TestCase{{Input: "1", Output: "1"}},
		TimeLimit:   2,
		MemoryLimit: 256,
	}
}

func TestValidateAcceptsSupportedLanguages(t *testing.T) {
	t.Parallel()
	for _, lang := range model.SupportedLanguages() {
		req := validJudgeRequest()
		req.Language = lang
		if err := req.Validate(0); err != nil {
			t.Fatalf("language %s: unexpected error %v", lang, err)
		}
	}
}

func TestValidateRejectsUnsupportedLanguage(t *testing.T) {
	t.Parallel()
	req := validJudgeRequest()
	req.Language = "brainfuck"
	err := req.Validate(0)
	if !appErr.Is(err, appErr.LanguageNotSupported) {
		t.Fatalf("expected LanguageNotSupported, got %v", err)
	}
}

func TestValidateRejectsJudgeModeWithoutTestCases(t *testing.T) {
	t.Parallel()
	req := validJudgeRequest()
	req.TestCases = nil
	err := req.Validate(0)
	if !appErr.Is(err, appErr.TestCasesRequired) {
		t.Fatalf("expected TestCasesRequired, got %v", err)
	}
}

func TestValidateEnforcesCodeSizeCap(t *testing.T) {
	t.Parallel()
	req := validJudgeRequest()
	req.Code = strings.Repeat("a", 100)
	if err := req.Validate(99); !appErr.Is(err, appErr.CodeTooLarge) {
		t.Fatalf("expected CodeTooLarge, got %v", err)
	}
	if err := req.Validate(100); err != nil {
		t.Fatalf("cap equal to size should pass, got %v", err)
	}
}

func TestNewJobIDHasPrefixAndIsUnique(t *testing.T) {
	t.Parallel()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := model.NewJobID()
		if !strings.HasPrefix(id, "job-") {
			t.Fatalf("expected job- prefix, got %s", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate job id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestJobMarshalRoundTrip(t *testing.T) {
	t.Parallel()
	job := &model.Job{ID: model.NewJobID(), Request: validJudgeRequest()}
	body, err := job.Marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	decoded, err := model.UnmarshalJob(body)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.ID != job.ID {
		t.Fatalf("id mismatch: %s vs %s", decoded.ID, job.ID)
	}
	if decoded.Request.Language != "python" || decoded.Request.Mode != model.ModeJudge {
		t.Fatalf("request fields lost in round trip: %+v", decoded.Request)
	}
}

func TestUnmarshalJobRejectsBadPayloads(t *testing.T) {
	t.Parallel()
	if _, err := model.UnmarshalJob([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := model.UnmarshalJob([]byte(`{"request":{"language":"python"}}`)); err == nil {
		t.Fatal("expected error for missing job id")
	}
	if _, err := model.UnmarshalJob([]byte(`{"id":"job-x","request":{"language":"cobol"}}`)); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestProgressNamesRoundTrip(t *testing.T) {
	t.Parallel()
	markers := []model.Progress{
		model.ProgressStarted,
		model.ProgressWorkspaceReady,
		model.ProgressSandboxCreated,
		model.ProgressSandboxRan,
		model.ProgressResultComputed,
		model.ProgressCleaned,
	}
	for _, p := range markers {
		parsed, ok := model.ParseProgress(p.String())
		if !ok || parsed != p {
			t.Fatalf("progress %s did not round trip", p)
		}
	}
	if _, ok := model.ParseProgress("NOPE"); ok {
		t.Fatal("expected unknown marker to be rejected")
	}
}

func TestSourceFileNames(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"c":      "submission.c",
		"cpp":    "submission.cpp",
		"python": "submission.py",
		"java":   "Submission.java",
	}
	for lang, want := range cases {
		if got := model.SourceFileName(lang); got != want {
			t.Fatalf("language %s: expected %s, got %s", lang, want, got)
		}
	}
}
