package config

import (
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "service.default_log_paths.access"
	Message string // e.g., "must be an absolute path"
	Hint    string // e.g., "relative paths are resolved against the console's cwd"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs semantic validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateService()...)
	errs = append(errs, c.validateDurations()...)
	errs = append(errs, c.validateTail()...)
	errs = append(errs, c.validateMetrics()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error
	if _, _, err := net.SplitHostPort(c.Server.ListenAddr); err != nil {
		errs = append(errs, ValidationError{
			Path:    "server.listen_addr",
			Message: fmt.Sprintf("invalid address %q", c.Server.ListenAddr),
			Hint:    "expected host:port or :port",
		})
	}
	return errs
}

func (c *Config) validateService() []error {
	var errs []error
	for i, p := range c.Service.ConfigCandidates {
		if !filepath.IsAbs(p) {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("service.config_candidates[%d]", i),
				Message: fmt.Sprintf("%q must be an absolute path", p),
			})
		}
	}
	for cat, p := range c.Service.DefaultLogPaths {
		if cat != "access" && cat != "error" {
			errs = append(errs, ValidationError{
				Path:    "service.default_log_paths." + cat,
				Message: "unknown log category",
				Hint:    "expected access or error",
			})
			continue
		}
		if !filepath.IsAbs(p) {
			errs = append(errs, ValidationError{
				Path:    "service.default_log_paths." + cat,
				Message: fmt.Sprintf("%q must be an absolute path", p),
			})
		}
	}
	return errs
}

func (c *Config) validateDurations() []error {
	var errs []error
	checks := []struct {
		path string
		d    time.Duration
	}{
		{"server.session_ttl", c.Server.SessionTTL},
		{"server.session_idle", c.Server.SessionIdle},
		{"server.request_timeout", c.Server.RequestTimeout},
		{"auth.credential_ttl", c.Auth.CredentialTTL},
		{"auth.lock_timeout", c.Auth.LockTimeout},
		{"exec.timeout", c.Exec.Timeout},
		{"tail.poll_interval", c.Tail.PollInterval},
		{"tail.restart_min", c.Tail.RestartMin},
		{"tail.restart_max", c.Tail.RestartMax},
	}
	for _, chk := range checks {
		if chk.d <= 0 {
			errs = append(errs, ValidationError{
				Path:    chk.path,
				Message: "must be positive",
			})
		}
	}
	if c.Exec.KillGrace < 0 {
		errs = append(errs, ValidationError{Path: "exec.kill_grace", Message: "must not be negative"})
	}
	return errs
}

func (c *Config) validateTail() []error {
	var errs []error
	if c.Tail.RestartMax < c.Tail.RestartMin {
		errs = append(errs, ValidationError{
			Path:    "tail.restart_max",
			Message: "must be >= tail.restart_min",
		})
	}
	for _, cat := range c.Tail.Categories {
		if _, ok := c.Service.DefaultLogPaths[cat]; !ok {
			errs = append(errs, ValidationError{
				Path:    "tail.categories",
				Message: fmt.Sprintf("category %q has no default log path", cat),
				Hint:    "add it under service.default_log_paths",
			})
		}
	}
	return errs
}

func (c *Config) validateMetrics() []error {
	if !c.Metrics.Enabled {
		return nil
	}
	var errs []error
	if _, err := cron.ParseStandard(c.Metrics.Schedule); err != nil {
		errs = append(errs, ValidationError{
			Path:    "metrics.schedule",
			Message: err.Error(),
			Hint:    `e.g. "@every 5s" or "*/1 * * * *"`,
		})
	}
	if c.Metrics.ProcessName == "" {
		errs = append(errs, ValidationError{Path: "metrics.process_name", Message: "must not be empty"})
	}
	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: err.Error(),
			Hint:    "expected debug, info, warn or error",
		})
	}
	return errs
}
