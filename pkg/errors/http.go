package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// HTTPError represents an HTTP error response.
type HTTPError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for an error.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return codeToHTTPStatus(customErr.Code())
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, ErrUnsupportedPlatform):
		return http.StatusNotImplemented
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	}

	return http.StatusInternalServerError
}

// codeToHTTPStatus maps error codes to HTTP status codes.
func codeToHTTPStatus(code string) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeCancelled:
		return 499 // Client Closed Request
	case CodeInvalidArgument, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeAuthenticationFailed, CodeNoCredential:
		return http.StatusUnauthorized
	case CodeNotFound, CodeConfigNotFound, CodeLogPathNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeSpecialDestination:
		return http.StatusUnprocessableEntity
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeUnimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTPError converts an error to an HTTPError.
func ToHTTPError(err error, traceID string) *HTTPError {
	if err == nil {
		return &HTTPError{
			Status:  http.StatusOK,
			Code:    CodeOK,
			Message: "success",
			TraceID: traceID,
		}
	}

	httpErr := &HTTPError{
		Status:  StatusCode(err),
		TraceID: traceID,
		Details: make(map[string]string),
	}

	httpErr.Code = GetErrorCode(err)
	var customErr Error
	if errors.As(err, &customErr) {
		httpErr.Message = customErr.Message()
	} else {
		httpErr.Message = err.Error()
	}

	var (
		validationErr  *ValidationError
		timeoutErr     *TimeoutError
		rateLimitErr   *RateLimitError
		internalErr    *InternalError
		platformErr    *UnsupportedPlatformError
		configErr      *ConfigNotFoundError
		logPathErr     *LogPathNotFoundError
		destinationErr *SpecialDestinationError
		subprocessErr  *SubprocessError
		ioErr          *IOError
		cycleErr       *CyclicIncludeError
	)

	switch {
	case errors.As(err, &validationErr):
		if validationErr.Field != "" {
			httpErr.Details["field"] = validationErr.Field
		}
	case errors.As(err, &timeoutErr):
		if timeoutErr.Operation != "" {
			httpErr.Details["operation"] = timeoutErr.Operation
		}
		if timeoutErr.Duration != "" {
			httpErr.Details["duration"] = timeoutErr.Duration
		}
	case errors.As(err, &rateLimitErr):
		if rateLimitErr.RetryAfter > 0 {
			httpErr.Details["retry_after"] = strconv.Itoa(rateLimitErr.RetryAfter)
		}
	case errors.As(err, &platformErr):
		httpErr.Details["platform"] = platformErr.Platform
	case errors.As(err, &configErr):
		httpErr.Details["checked"] = strings.Join(configErr.Checked, ", ")
	case errors.As(err, &logPathErr):
		httpErr.Details["category"] = logPathErr.Category
		httpErr.Details["checked"] = strings.Join(logPathErr.Checked, ", ")
	case errors.As(err, &destinationErr):
		httpErr.Details["category"] = destinationErr.Category
		httpErr.Details["destination"] = destinationErr.Kind
		if destinationErr.Target != "" {
			httpErr.Details["target"] = destinationErr.Target
		}
		if destinationErr.Hint != "" {
			httpErr.Details["hint"] = destinationErr.Hint
		}
	case errors.As(err, &subprocessErr):
		httpErr.Details["command"] = subprocessErr.Command
		httpErr.Details["exit_code"] = strconv.Itoa(subprocessErr.ExitCode)
		if s := strings.TrimSpace(subprocessErr.Stderr); s != "" {
			httpErr.Details["stderr"] = s
		}
	case errors.As(err, &ioErr):
		httpErr.Details["path"] = ioErr.Path
	case errors.As(err, &cycleErr):
		httpErr.Details["path"] = cycleErr.Path
		httpErr.Details["chain"] = strings.Join(cycleErr.Chain, " -> ")
	case errors.As(err, &internalErr):
		if internalErr.Operation != "" {
			httpErr.Details["operation"] = internalErr.Operation
		}
	}

	if len(httpErr.Details) == 0 {
		httpErr.Details = nil
	}
	return httpErr
}

// WriteHTTPError writes an error response to an http.ResponseWriter.
func WriteHTTPError(w http.ResponseWriter, err error, traceID string) {
	httpErr := ToHTTPError(err, traceID)
	w.Header().Set("Content-Type", "application/json")

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) && rateLimitErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rateLimitErr.RetryAfter))
	}

	var unauthorizedErr *UnauthorizedError
	if errors.As(err, &unauthorizedErr) && unauthorizedErr.Realm != "" {
		w.Header().Set("WWW-Authenticate", `Cookie realm="`+unauthorizedErr.Realm+`"`)
	}

	w.WriteHeader(httpErr.Status)
	_ = json.NewEncoder(w).Encode(httpErr)
}
