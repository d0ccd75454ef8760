package errors

import "errors"

// IsNotFound checks if an error indicates a config file or log path was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsUnauthorized checks if an error indicates a missing or rejected login.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}

	var (
		unauthorizedErr *UnauthorizedError
		authErr         *AuthenticationFailedError
		credErr         *NoCredentialError
	)
	return errors.As(err, &unauthorizedErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &credErr) ||
		errors.Is(err, ErrUnauthorized)
}

// IsAuthenticationFailed checks if the administrator password was rejected.
func IsAuthenticationFailed(err error) bool {
	var authErr *AuthenticationFailedError
	return err != nil && errors.As(err, &authErr)
}

// IsNoCredential checks if a privileged action was refused for lack of a credential.
func IsNoCredential(err error) bool {
	var credErr *NoCredentialError
	return err != nil && errors.As(err, &credErr)
}

// IsSpecialDestination checks if a log category has no backing file.
func IsSpecialDestination(err error) bool {
	var destErr *SpecialDestinationError
	return err != nil && errors.As(err, &destErr)
}

// IsUnsupportedPlatform checks if the host OS has no strategy for an operation.
func IsUnsupportedPlatform(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUnsupportedPlatform)
}

// IsTimeout checks if an error indicates a timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr) || errors.Is(err, ErrTimeout)
}

// IsRateLimit checks if an error indicates rate limiting.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr) || errors.Is(err, ErrTooManyRequests)
}

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool {
	if err == nil {
		return false
	}

	var internalErr *InternalError
	return errors.As(err, &internalErr) || errors.Is(err, ErrInternal)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}

	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsUnauthorized(err):
		return CodeUnauthorized
	case IsTimeout(err):
		return CodeTimeout
	case IsRateLimit(err):
		return CodeRateLimit
	case IsUnsupportedPlatform(err):
		return CodeUnimplemented
	default:
		return CodeInternal
	}
}
