package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Submission intake errors
// 12000-12999: Execution pipeline errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10004
	ServiceUnavailable  ErrorCode = 10005
	Timeout             ErrorCode = 10006

	// Cache errors (10100-10199)
	CacheError     ErrorCode = 10100
	CacheSetFailed ErrorCode = 10101

	// Queue errors (10200-10299)
	QueueError         ErrorCode = 10200
	QueuePublishFailed ErrorCode = 10201

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Submission Intake Errors (11000-11999) ==========

	LanguageNotSupported ErrorCode = 11000
	CodeTooLarge         ErrorCode = 11001
	TestCasesRequired    ErrorCode = 11002
	ExecutionNotFound    ErrorCode = 11003

	// ========== Execution Pipeline Errors (12000-12999) ==========

	WorkspaceSetupFailed ErrorCode = 12000
	SandboxCreateFailed  ErrorCode = 12001
	SandboxStartFailed   ErrorCode = 12002
	ClassificationFailed ErrorCode = 12003
	TeardownFailed       ErrorCode = 12004
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Cache
	CacheError:     "Cache operation failed",
	CacheSetFailed: "Failed to set cache",

	// Queue
	QueueError:         "Queue operation failed",
	QueuePublishFailed: "Failed to publish message",

	// Validation
	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "Required field is empty",

	// Submission intake
	LanguageNotSupported: "Language is not supported",
	CodeTooLarge:         "Source code too large",
	TestCasesRequired:    "At least one test case is required",
	ExecutionNotFound:    "Execution not found",

	// Execution pipeline
	WorkspaceSetupFailed: "Failed to set up job workspace",
	SandboxCreateFailed:  "Failed to create sandbox",
	SandboxStartFailed:   "Failed to start sandbox",
	ClassificationFailed: "Failed to classify execution output",
	TeardownFailed:       "Failed to tear down job resources",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == ExecutionNotFound:
		return 404
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams:
		return 400
	case c >= 11000 && c < 12000: // Intake errors are client errors
		return 400
	default:
		return 500
	}
}
