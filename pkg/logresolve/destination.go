// Package logresolve finds where the proxy actually writes its logs by
// reading its configuration tree.
package logresolve

import (
	"fmt"
	"path/filepath"
	"strings"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
)

// Category is a log stream the proxy produces.
type Category string

const (
	CategoryAccess Category = "access"
	CategoryError  Category = "error"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryAccess, CategoryError}

// ParseCategory validates s. Anything but access or error is rejected.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryAccess, CategoryError:
		return c, nil
	default:
		return "", cerrors.NewValidationError("category",
			fmt.Sprintf("invalid log category %q, expected access or error", s), s)
	}
}

// Directive is the config directive that routes this category.
func (c Category) Directive() string {
	return string(c) + "_log"
}

// Kind discriminates Destination.
type Kind int

const (
	KindFile Kind = iota
	KindStream
	KindSyslog
	KindDisabled
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindStream:
		return "stream"
	case KindSyslog:
		return "syslog"
	case KindDisabled:
		return "disabled"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Destination is where one log category goes. Only the field matching Kind
// is meaningful: Path for files, Stream ("stderr"/"stdout") for streams and
// Target (the text after "syslog:") for syslog.
type Destination struct {
	Kind   Kind
	Path   string
	Stream string
	Target string
	// DeclaredIn is the config file holding the directive, empty for
	// fallbacks and build defaults.
	DeclaredIn string
}

func (d Destination) String() string {
	switch d.Kind {
	case KindFile:
		return d.Path
	case KindStream:
		return d.Stream
	case KindSyslog:
		if d.Target == "" {
			return "syslog"
		}
		return "syslog:" + d.Target
	case KindDisabled:
		return "off"
	}
	return d.Kind.String()
}

// IsFile reports whether the destination is a readable file.
func (d Destination) IsFile() bool { return d.Kind == KindFile }

// Hint tells the operator where to look instead when there is no file.
func (d Destination) Hint(service string) string {
	switch d.Kind {
	case KindStream:
		return fmt.Sprintf("logs go to %s of the %s process; use the journal view (journalctl -u %s) or the container runtime's log command", d.Stream, service, service)
	case KindSyslog:
		return fmt.Sprintf("logs are shipped to syslog (%s); read them from the syslog collector or the journal view", d.String())
	case KindDisabled:
		return fmt.Sprintf("logging is disabled in the %s config; enable the directive to collect logs", service)
	}
	return ""
}

// classify interprets a directive value. Relative file paths are joined to
// baseDir, the directory of the declaring file.
func classify(value, baseDir string) Destination {
	switch value {
	case "stderr", "/dev/stderr":
		return Destination{Kind: KindStream, Stream: "stderr"}
	case "stdout", "/dev/stdout":
		return Destination{Kind: KindStream, Stream: "stdout"}
	case "off":
		return Destination{Kind: KindDisabled}
	case "syslog":
		return Destination{Kind: KindSyslog}
	}
	if target, ok := strings.CutPrefix(value, "syslog:"); ok {
		return Destination{Kind: KindSyslog, Target: target}
	}
	if !filepath.IsAbs(value) {
		value = filepath.Join(baseDir, value)
	}
	return Destination{Kind: KindFile, Path: filepath.Clean(value)}
}
