package errors

// Error codes for categorizing errors.
// These codes map to HTTP status codes in http.go.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the operation was cancelled.
	CodeCancelled = "CANCELLED"

	// CodeInvalidArgument indicates client specified an invalid argument.
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeUnimplemented indicates the operation has no implementation on this host.
	CodeUnimplemented = "UNIMPLEMENTED"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeUnauthorized indicates a session is required.
	CodeUnauthorized = "UNAUTHORIZED"

	// CodeTimeout indicates an operation timed out.
	CodeTimeout = "TIMEOUT"

	// CodeRateLimit indicates rate limit was exceeded.
	CodeRateLimit = "RATE_LIMIT_EXCEEDED"

	// Console-specific error codes

	// CodeAuthenticationFailed indicates the admin secret was rejected by the elevation check.
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"

	// CodeNoCredential indicates a privileged action ran without a cached credential.
	CodeNoCredential = "NO_CREDENTIAL"

	// CodeConfigNotFound indicates none of the candidate config files exist.
	CodeConfigNotFound = "CONFIG_NOT_FOUND"

	// CodeLogPathNotFound indicates no directive or fallback produced a log path.
	CodeLogPathNotFound = "LOG_PATH_NOT_FOUND"

	// CodeSpecialDestination indicates logs go somewhere other than a file.
	CodeSpecialDestination = "SPECIAL_DESTINATION"

	// CodeSubprocess indicates an external command exited non-zero.
	CodeSubprocess = "SUBPROCESS_ERROR"

	// CodeIO indicates a filesystem read failed.
	CodeIO = "IO_ERROR"

	// CodeCyclicInclude indicates an include chain loops back on itself.
	CodeCyclicInclude = "CYCLIC_INCLUDE"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryClient indicates a client-side error (4xx).
	CategoryClient ErrorCategory = "CLIENT_ERROR"

	// CategoryServer indicates a server-side error (5xx).
	CategoryServer ErrorCategory = "SERVER_ERROR"

	// CategoryTimeout indicates a timeout error.
	CategoryTimeout ErrorCategory = "TIMEOUT_ERROR"

	// CategoryAuth indicates an authentication error.
	CategoryAuth ErrorCategory = "AUTH_ERROR"

	// CategoryHost indicates the host lacks something the operation needs
	// (platform support, config files, log files).
	CategoryHost ErrorCategory = "HOST_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeInvalidArgument, CodeValidation, CodeRateLimit:
		return CategoryClient

	case CodeUnauthorized, CodeAuthenticationFailed, CodeNoCredential:
		return CategoryAuth

	case CodeTimeout:
		return CategoryTimeout

	case CodeUnimplemented, CodeConfigNotFound, CodeLogPathNotFound,
		CodeSpecialDestination, CodeNotFound:
		return CategoryHost

	default:
		return CategoryServer
	}
}

