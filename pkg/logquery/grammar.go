package logquery

import (
	"strconv"
	"strings"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

// Grammar turns a Query into the command line of one log facility. Build
// is deterministic: equal queries give equal commands.
type Grammar interface {
	Name() string
	Build(q Query) (shell.Command, error)
}

// JournalGrammar targets journalctl.
type JournalGrammar struct {
	Binary string
}

func (JournalGrammar) Name() string { return "journal" }

// Build implements Grammar.
func (g JournalGrammar) Build(q Query) (shell.Command, error) {
	if err := q.Validate(); err != nil {
		return shell.Command{}, err
	}

	args := []string{"-u", strings.TrimSpace(q.ServiceName)}
	if q.NoPager {
		args = append(args, "--no-pager")
	}
	if q.NumLines != nil {
		args = append(args, "-n", strconv.FormatUint(uint64(*q.NumLines), 10))
	}
	if since := normalizeTime(q.Since); since != "" {
		args = append(args, "--since", since)
	}
	if until := normalizeTime(q.Until); until != "" {
		args = append(args, "--until", until)
	}
	if q.Reverse {
		args = append(args, "--reverse")
	}
	return shell.Command{Name: orDefault(g.Binary, "journalctl"), Args: args}, nil
}

// UnifiedLogGrammar targets the macOS log tool. It has no line count, so
// NumLines becomes a window of that many seconds.
type UnifiedLogGrammar struct {
	Binary string
}

func (UnifiedLogGrammar) Name() string { return "unified-log" }

// Build implements Grammar.
func (g UnifiedLogGrammar) Build(q Query) (shell.Command, error) {
	if err := q.Validate(); err != nil {
		return shell.Command{}, err
	}

	process := processName(q.ServiceName)
	args := []string{"show", "--predicate", "process == '" + process + "'"}
	if q.NumLines != nil {
		args = append(args, "--last", strconv.FormatUint(uint64(*q.NumLines), 10)+"s")
	}
	if since := padDate(normalizeTime(q.Since)); since != "" {
		args = append(args, "--start", since)
	}
	if until := padDate(normalizeTime(q.Until)); until != "" {
		args = append(args, "--end", until)
	}
	if q.Reverse {
		args = append(args, "--reverse")
	}
	return shell.Command{Name: orDefault(g.Binary, "log"), Args: args}, nil
}

// processName strips the systemd unit suffixes, which the unified log does
// not know about.
func processName(service string) string {
	name := strings.TrimSpace(service)
	name = strings.TrimSuffix(name, ".service")
	name = strings.TrimSuffix(name, ".socket")
	return name
}

// padDate turns a bare YYYY-MM-DD into midnight of that day.
func padDate(v string) string {
	if len(v) == 10 {
		return v + " 00:00:00"
	}
	return v
}

// UnsupportedGrammar rejects every query.
type UnsupportedGrammar struct {
	Platform string
}

func (UnsupportedGrammar) Name() string { return "unsupported" }

// Build implements Grammar.
func (g UnsupportedGrammar) Build(Query) (shell.Command, error) {
	return shell.Command{}, cerrors.NewUnsupportedPlatformError(g.Platform, "system log queries")
}

// ForPlatform returns the grammar for goos.
func ForPlatform(goos string) Grammar {
	switch goos {
	case "linux":
		return JournalGrammar{Binary: "journalctl"}
	case "darwin":
		return UnifiedLogGrammar{Binary: "log"}
	default:
		return UnsupportedGrammar{Platform: goos}
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
