package config

import (
	"time"
)

// Config represents the main configuration for the proxy console
type Config struct {
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Service ServiceConfig `yaml:"service" koanf:"service"`
	Auth    AuthConfig    `yaml:"auth" koanf:"auth"`
	Exec    ExecConfig    `yaml:"exec" koanf:"exec"`
	Tail    TailConfig    `yaml:"tail" koanf:"tail"`
	Metrics MetricsConfig `yaml:"metrics" koanf:"metrics"`
	Logging LoggingConfig `yaml:"logging" koanf:"logging"`
}

// ServerConfig contains the HTTP console listener settings
type ServerConfig struct {
	ListenAddr     string        `yaml:"listen_addr" koanf:"listen_addr" validate:"required"`         // e.g. ":8081"
	MaxConnections int           `yaml:"max_connections" koanf:"max_connections" validate:"min=1"`    // concurrent connection cap
	SessionCookie  string        `yaml:"session_cookie" koanf:"session_cookie" validate:"required"`   // cookie name
	CookieSecure   bool          `yaml:"cookie_secure" koanf:"cookie_secure"`                         // set when served over TLS
	SessionTTL     time.Duration `yaml:"session_ttl" koanf:"session_ttl"`                             // absolute lifetime
	SessionIdle    time.Duration `yaml:"session_idle" koanf:"session_idle"`                           // idle expiry
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`                     // non-streaming handlers
}

// ServiceConfig describes the managed reverse proxy
type ServiceConfig struct {
	Name             string            `yaml:"name" koanf:"name" validate:"required"`     // display name and unit/formula
	Binary           string            `yaml:"binary" koanf:"binary" validate:"required"` // for -V and -t
	Unit             string            `yaml:"unit" koanf:"unit"`                         // systemd unit, defaults to Name
	ConfigCandidates []string          `yaml:"config_candidates" koanf:"config_candidates" validate:"min=1,dive,required"`
	DefaultLogPaths  map[string]string `yaml:"default_log_paths" koanf:"default_log_paths"`
	CheckBuildInfo   bool              `yaml:"check_build_info" koanf:"check_build_info"` // inspect <binary> -V before parsing
}

// AuthConfig contains credential cache and login throttling settings
type AuthConfig struct {
	CredentialTTL time.Duration `yaml:"credential_ttl" koanf:"credential_ttl"`
	LockTimeout   time.Duration `yaml:"lock_timeout" koanf:"lock_timeout"`
	LoginPerMin   int           `yaml:"login_per_minute" koanf:"login_per_minute" validate:"min=1"`
	LoginBurst    int           `yaml:"login_burst" koanf:"login_burst" validate:"min=1"`
}

// ExecConfig bounds external commands
type ExecConfig struct {
	Timeout   time.Duration `yaml:"timeout" koanf:"timeout"`
	KillGrace time.Duration `yaml:"kill_grace" koanf:"kill_grace"`
	Helper    string        `yaml:"helper" koanf:"helper" validate:"required"` // elevation helper, e.g. sudo
}

// TailConfig controls the live log watchers
type TailConfig struct {
	PollInterval     time.Duration `yaml:"poll_interval" koanf:"poll_interval"`
	Notify           bool          `yaml:"notify" koanf:"notify"` // fsnotify wake-ups on top of polling
	Categories       []string      `yaml:"categories" koanf:"categories" validate:"dive,oneof=access error"`
	RestartMin       time.Duration `yaml:"restart_min" koanf:"restart_min"`
	RestartMax       time.Duration `yaml:"restart_max" koanf:"restart_max"`
	SubscriberBuffer int           `yaml:"subscriber_buffer" koanf:"subscriber_buffer" validate:"min=1"`
}

// MetricsConfig controls the host metrics sampler
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled" koanf:"enabled"`
	Schedule    string `yaml:"schedule" koanf:"schedule"` // cron spec, e.g. "@every 5s"
	ProcessName string `yaml:"process_name" koanf:"process_name"`
}

// Default returns a config populated with defaults for an nginx host.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:     ":8081",
			MaxConnections: 64,
			SessionCookie:  "console_session",
			SessionTTL:     12 * time.Hour,
			SessionIdle:    time.Hour,
			RequestTimeout: 60 * time.Second,
		},
		Service: ServiceConfig{
			Name:   "nginx",
			Binary: "nginx",
			ConfigCandidates: []string{
				"/etc/nginx/nginx.conf",
				"/usr/local/etc/nginx/nginx.conf",
				"/opt/nginx/nginx.conf",
				"/usr/local/nginx/conf/nginx.conf",
			},
			DefaultLogPaths: map[string]string{
				"access": "/var/log/nginx/access.log",
				"error":  "/var/log/nginx/error.log",
			},
			CheckBuildInfo: true,
		},
		Auth: AuthConfig{
			CredentialTTL: 30 * time.Minute,
			LockTimeout:   250 * time.Millisecond,
			LoginPerMin:   5,
			LoginBurst:    3,
		},
		Exec: ExecConfig{
			Timeout:   30 * time.Second,
			KillGrace: 2 * time.Second,
			Helper:    "sudo",
		},
		Tail: TailConfig{
			PollInterval:     500 * time.Millisecond,
			Notify:           true,
			Categories:       []string{"access", "error"},
			RestartMin:       time.Second,
			RestartMax:       time.Minute,
			SubscriberBuffer: 256,
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Schedule:    "@every 5s",
			ProcessName: "nginx",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// UnitName returns the systemd unit or brew formula for the service.
func (s ServiceConfig) UnitName() string {
	if s.Unit != "" {
		return s.Unit
	}
	return s.Name
}
