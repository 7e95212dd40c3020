package model

import (
	"encoding/json"

	appErr "github.com/assignexpert/assignexpert/pkg/errors"

	"github.com/google/uuid"
)

// jobIDPrefix distinguishes job identifiers from other identifier namespaces
// (session ids, request ids) during debugging.
const jobIDPrefix = "job-"

// Job wraps an ExecutionRequest with its system-assigned identifier. The
// queue owns the job for its queued lifetime; exactly one worker processes it.
type Job struct {
	ID      string           `json:"id"`
	Request ExecutionRequest `json:"request"`
}

// NewJobID generates a fresh globally-unique job identifier.
func NewJobID() string {
	return jobIDPrefix + uuid.NewString()
}

// Marshal serializes the job for the queue, validating it first so a bad
// payload is rejected at enqueue time rather than at the worker.
func (j *Job) Marshal() ([]byte, error) {
	if j.ID == "" {
		return nil, appErr.ValidationError("id", "required")
	}
	body, err := json.Marshal(j)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "encode job failed")
	}
	return body, nil
}

// UnmarshalJob decodes and validates a queued job payload.
func UnmarshalJob(body []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "decode job failed")
	}
	if job.ID == "" {
		return nil, appErr.ValidationError("id", "required")
	}
	if !LanguageSupported(job.Request.Language) {
		return nil, appErr.Newf(appErr.LanguageNotSupported, "language %q is not supported", job.Request.Language)
	}
	return &job, nil
}

// Progress marks how far a job has advanced through the pipeline. Markers are
// monotonically advanced and exist for external observability only; they have
// no effect on control flow.
type Progress int

const (
	ProgressStarted Progress = iota
	ProgressWorkspaceReady
	ProgressSandboxCreated
	ProgressSandboxRan
	ProgressResultComputed
	ProgressCleaned
)

var progressNames = map[Progress]string{
	ProgressStarted:        "STARTED",
	ProgressWorkspaceReady: "WORKSPACE_READY",
	ProgressSandboxCreated: "SANDBOX_CREATED",
	ProgressSandboxRan:     "SANDBOX_RAN",
	ProgressResultComputed: "RESULT_COMPUTED",
	ProgressCleaned:        "CLEANED",
}

// String returns the wire name of the progress marker.
func (p Progress) String() string {
	if name, ok := progressNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseProgress maps a wire name back to a Progress marker.
func ParseProgress(name string) (Progress, bool) {
	for p, n := range progressNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}
