// Package classify turns the artifact files a sandbox leaves behind into a
// terminal ExecutionResult. It is pure decision logic over artifact text;
// reading the artifacts is abstracted behind Source so the rules can be
// tested without a filesystem.
package classify

import (
	"strconv"
	"strings"

	"github.com/assignexpert/assignexpert/internal/execution/model"
	"github.com/assignexpert/assignexpert/internal/execution/workspace"

	"github.com/pmezard/go-difflib/difflib"
)

// NoTimeoutSentinel is the exact content the execution image writes to the
// timeout artifact when the program finished within its time limit.
const NoTimeoutSentinel = "0\n"

const (
	timeLimitMessage   = "Time limit exceeded."
	memoryLimitMessage = "Memory limit exceeded."

	statsDelimiter = "-"
)

// Source reads named artifacts from a job's workspace.
type Source interface {
	Artifact(name string) (string, error)
}

// MemoryExceeded is the result for a run the isolation backend killed for
// exceeding its memory limit. No artifacts are consulted in that case.
func MemoryExceeded() model.ExecutionResult {
	return model.ExecutionResult{Status: model.VerdictMLE, Message: memoryLimitMessage}
}

// Run classifies one execution. The verdict starts at CE as the pessimistic
// default; a failed artifact read stops the decision chain and keeps whatever
// verdict was determined so far, reported through the returned error. Resource
// usage is parsed last regardless of verdict, and the result is always usable
// even when err is non-nil.
func Run(src Source, mode model.ExecutionMode) (model.ExecutionResult, error) {
	result := model.ExecutionResult{Status: model.VerdictCE}
	err := decide(src, mode, &result)
	attachStats(src, &result)
	return result, err
}

func decide(src Source, mode model.ExecutionMode, result *model.ExecutionResult) error {
	compileOut, err := src.Artifact(workspace.ArtifactCompile)
	if err != nil {
		return err
	}
	if compileOut != "" {
		result.Status = model.VerdictCE
		result.Message = compileOut
		return nil
	}

	runtimeOut, err := src.Artifact(workspace.ArtifactRuntime)
	if err != nil {
		return err
	}
	if runtimeOut != "" {
		result.Status = model.VerdictRE
		result.Message = runtimeOut
		return nil
	}

	timeoutFlag, err := src.Artifact(workspace.ArtifactTimeout)
	if err != nil {
		return err
	}
	if timeoutFlag != NoTimeoutSentinel {
		result.Status = model.VerdictTLE
		result.Message = timeLimitMessage
		return nil
	}

	actual, err := src.Artifact(workspace.ArtifactOutput)
	if err != nil {
		return err
	}
	if mode != model.ModeJudge {
		result.Status = model.VerdictAC
		result.Message = actual
		return nil
	}

	expected, err := src.Artifact(workspace.ExpectedOutputFile)
	if err != nil {
		return err
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return err
	}
	if diff == "" {
		result.Status = model.VerdictAC
		result.Message = ""
	} else {
		result.Status = model.VerdictWA
		result.Message = diff
	}
	return nil
}

// attachStats parses the "memoryUsedKB-timeTakenMs" stats artifact. Any read
// or parse failure leaves both fields absent; telemetry never fails a job.
func attachStats(src Source, result *model.ExecutionResult) {
	raw, err := src.Artifact(workspace.ArtifactStats)
	if err != nil {
		return
	}
	fields := strings.Split(strings.TrimSpace(raw), statsDelimiter)
	if len(fields) != 2 {
		return
	}
	memKB, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return
	}
	timeMs, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return
	}
	result.MemoryUsedKB = &memKB
	result.TimeTaken = &timeMs
}
