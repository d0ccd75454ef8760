package errors

import (
	"fmt"
	"strings"
)

// AuthenticationFailedError is returned when the elevation check rejects a secret.
type AuthenticationFailedError struct {
	*BaseError
}

// NewAuthenticationFailedError creates a new authentication failure.
func NewAuthenticationFailedError(cause error) *AuthenticationFailedError {
	return &AuthenticationFailedError{
		BaseError: &BaseError{
			code:    CodeAuthenticationFailed,
			message: "invalid admin password",
			cause:   cause,
		},
	}
}

// NoCredentialError is returned when a privileged action needs a credential
// and none is cached for the caller.
type NoCredentialError struct {
	*BaseError
}

// NewNoCredentialError creates a new missing-credential error.
func NewNoCredentialError() *NoCredentialError {
	return &NoCredentialError{
		BaseError: &BaseError{
			code:    CodeNoCredential,
			message: "no admin credential cached, log in first",
		},
	}
}

// UnsupportedPlatformError is returned by strategies for operating systems
// the console cannot drive.
type UnsupportedPlatformError struct {
	*BaseError
	Platform  string
	Operation string
}

// NewUnsupportedPlatformError creates a new unsupported-platform error.
func NewUnsupportedPlatformError(platform, operation string) *UnsupportedPlatformError {
	message := fmt.Sprintf("unsupported platform: %s", platform)
	if operation != "" {
		message = fmt.Sprintf("%s is not supported on %s", operation, platform)
	}
	return &UnsupportedPlatformError{
		BaseError: &BaseError{
			code:    CodeUnimplemented,
			message: message,
			cause:   ErrUnsupportedPlatform,
		},
		Platform:  platform,
		Operation: operation,
	}
}

// Error implements the error interface.
func (e *UnsupportedPlatformError) Error() string {
	return e.message
}

// ConfigNotFoundError is returned when no candidate config file exists.
type ConfigNotFoundError struct {
	*BaseError
	Checked []string
}

// NewConfigNotFoundError creates a new config-not-found error.
func NewConfigNotFoundError(checked []string) *ConfigNotFoundError {
	return &ConfigNotFoundError{
		BaseError: &BaseError{
			code:    CodeConfigNotFound,
			message: "service config file not found",
			cause:   ErrNotFound,
		},
		Checked: append([]string(nil), checked...),
	}
}

// Error implements the error interface.
func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("%s (checked: %s)", e.message, strings.Join(e.Checked, ", "))
}

// LogPathNotFoundError is returned when neither the config tree nor the
// fallback paths yield a log location.
type LogPathNotFoundError struct {
	*BaseError
	Category string
	Checked  []string
}

// NewLogPathNotFoundError creates a new log-path-not-found error.
func NewLogPathNotFoundError(category string, checked []string) *LogPathNotFoundError {
	return &LogPathNotFoundError{
		BaseError: &BaseError{
			code:    CodeLogPathNotFound,
			message: fmt.Sprintf("%s log path not found", category),
			cause:   ErrNotFound,
		},
		Category: category,
		Checked:  append([]string(nil), checked...),
	}
}

// Error implements the error interface.
func (e *LogPathNotFoundError) Error() string {
	return fmt.Sprintf("%s (checked: %s)", e.message, strings.Join(e.Checked, ", "))
}

// SpecialDestinationError is returned when a log category is routed to a
// stream, syslog or nowhere, so there is no file to read.
type SpecialDestinationError struct {
	*BaseError
	Category string
	Kind     string
	Target   string
	Hint     string
}

// NewSpecialDestinationError creates a new special-destination error.
func NewSpecialDestinationError(category, kind, target, hint string) *SpecialDestinationError {
	message := fmt.Sprintf("%s logs are sent to %s", category, kind)
	if target != "" {
		message = fmt.Sprintf("%s logs are sent to %s (%s)", category, kind, target)
	}
	return &SpecialDestinationError{
		BaseError: &BaseError{
			code:    CodeSpecialDestination,
			message: message,
		},
		Category: category,
		Kind:     kind,
		Target:   target,
		Hint:     hint,
	}
}

// Error implements the error interface.
func (e *SpecialDestinationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s; %s", e.message, e.Hint)
	}
	return e.message
}

// SubprocessError is returned when an external command fails to start or
// exits non-zero.
type SubprocessError struct {
	*BaseError
	Command  string
	ExitCode int
	Stderr   string
}

// NewSubprocessError creates a new subprocess error. Stderr is kept verbatim.
func NewSubprocessError(command string, exitCode int, stderr string, cause error) *SubprocessError {
	message := fmt.Sprintf("%s exited with code %d", command, exitCode)
	if exitCode < 0 {
		message = fmt.Sprintf("%s failed to start", command)
	}
	return &SubprocessError{
		BaseError: &BaseError{
			code:    CodeSubprocess,
			message: message,
			cause:   cause,
		},
		Command:  command,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// Error implements the error interface.
func (e *SubprocessError) Error() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return fmt.Sprintf("%s: %s", e.message, s)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	*BaseError
	Op   string
	Path string
}

// NewIOError creates a new IO error.
func NewIOError(op, path string, cause error) *IOError {
	return &IOError{
		BaseError: &BaseError{
			code:    CodeIO,
			message: fmt.Sprintf("%s %s", op, path),
			cause:   cause,
		},
		Op:   op,
		Path: path,
	}
}

// CyclicIncludeError is returned when an include directive leads back to a
// file already on the include chain.
type CyclicIncludeError struct {
	*BaseError
	Path  string
	Chain []string
}

// NewCyclicIncludeError creates a new cyclic include error.
func NewCyclicIncludeError(path string, chain []string) *CyclicIncludeError {
	return &CyclicIncludeError{
		BaseError: &BaseError{
			code:    CodeCyclicInclude,
			message: fmt.Sprintf("include cycle at %s", path),
		},
		Path:  path,
		Chain: append([]string(nil), chain...),
	}
}

// Error implements the error interface.
func (e *CyclicIncludeError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", e.message, strings.Join(e.Chain, " -> "), e.Path)
}
