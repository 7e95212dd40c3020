package model

import (
	"strings"

	appErr "github.com/assignexpert/assignexpert/pkg/errors"
)

// ExecutionMode selects how a submission's output is handled.
type ExecutionMode string

const (
	// ModeJudge compares program output against expected test-case output.
	ModeJudge ExecutionMode = "judge"
	// ModeRun returns the raw program output without comparison.
	ModeRun ExecutionMode = "run"
)

// TestCase holds one input and its expected output.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ExecutionRequest describes one requested execution. It is immutable once
// enqueued.
type ExecutionRequest struct {
	Code     string        `json:"code"`
	Language string        `json:"language"`
	Mode     ExecutionMode `json:"executionType"`

	// TestCases are used only in judge mode.
	TestCases []TestCase `json:"testCases,omitempty"`
	// Stdin is the raw standard input, used only in run mode.
	Stdin string `json:"inputForRun,omitempty"`

	// TimeLimit is the requested time limit in seconds.
	TimeLimit int `json:"timeLimit"`
	// MemoryLimit is the requested memory limit in megabytes.
	MemoryLimit int `json:"memoryLimit"`
}

// supportedLanguages is the fixed set of languages the engine can execute.
var supportedLanguages = map[string]struct{}{
	"c":      {},
	"cpp":    {},
	"python": {},
	"java":   {},
}

// LanguageSupported reports whether the language is in the supported set.
func LanguageSupported(language string) bool {
	_, ok := supportedLanguages[language]
	return ok
}

// SupportedLanguages returns the supported language identifiers.
func SupportedLanguages() []string {
	out := make([]string, 0, len(supportedLanguages))
	for lang := range supportedLanguages {
		out = append(out, lang)
	}
	return out
}

// SourceFileName returns the conventional entry file name for the language.
func SourceFileName(language string) string {
	switch language {
	case "python":
		return "submission.py"
	case "java":
		return "Submission.java"
	default:
		return "submission." + language
	}
}

// Validate checks the request for intake. maxCodeBytes of 0 disables the
// source size cap.
func (r *ExecutionRequest) Validate(maxCodeBytes int) error {
	if !LanguageSupported(r.Language) {
		return appErr.Newf(appErr.LanguageNotSupported, "language %q is not supported", r.Language)
	}
	if strings.TrimSpace(r.Code) == "" {
		return appErr.ValidationError("code", "required")
	}
	if maxCodeBytes > 0 && len(r.Code) > maxCodeBytes {
		return appErr.New(appErr.CodeTooLarge)
	}
	switch r.Mode {
	case ModeJudge:
		if len(r.TestCases) == 0 {
			return appErr.New(appErr.TestCasesRequired)
		}
	case ModeRun:
	default:
		return appErr.ValidationError("executionType", "must be judge or run")
	}
	if r.TimeLimit <= 0 {
		return appErr.ValidationError("timeLimit", "must be positive")
	}
	if r.MemoryLimit <= 0 {
		return appErr.ValidationError("memoryLimit", "must be positive")
	}
	return nil
}
