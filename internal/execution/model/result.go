package model

// Verdict classifies the outcome of one graded execution.
type Verdict string

const (
	VerdictAC  Verdict = "AC"  // accepted
	VerdictWA  Verdict = "WA"  // wrong answer
	VerdictTLE Verdict = "TLE" // time limit exceeded
	VerdictMLE Verdict = "MLE" // memory limit exceeded
	VerdictCE  Verdict = "CE"  // compile error
	VerdictRE  Verdict = "RE"  // runtime error
)

// ExecutionResult is the terminal record published to the result cache,
// produced exactly once per job.
type ExecutionResult struct {
	Status  Verdict `json:"resultStatus"`
	Message string  `json:"resultMessage"`

	// TimeTaken is the program run time in milliseconds. Absent when the
	// stats artifact could not be parsed.
	TimeTaken *int64 `json:"timeTaken,omitempty"`
	// MemoryUsedKB is the peak memory use in kilobytes. Absent when the
	// stats artifact could not be parsed.
	MemoryUsedKB *int64 `json:"memoryUsedInKiloBytes,omitempty"`
}
