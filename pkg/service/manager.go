// Package service drives the lifecycle of the managed proxy through the
// host's service manager.
package service

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

// ErrServiceNotFound is reported by status checks when the unit is unknown.
var ErrServiceNotFound = errors.New("service not found")

// Action is a lifecycle verb.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
)

// ParseAction validates s as an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionStart, ActionStop, ActionRestart:
		return a, nil
	default:
		return "", cerrors.NewValidationError("action", fmt.Sprintf("unknown action %q", s), s)
	}
}

// PastTense returns the verb for result messages.
func (a Action) PastTense() string {
	switch a {
	case ActionStart:
		return "started"
	case ActionStop:
		return "stopped"
	case ActionRestart:
		return "restarted"
	}
	return string(a) + "ed"
}

// State is the coarse run state of the service.
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
	StateUnknown  State = "unknown"
)

// Status is the result of a status check. Raw is the service manager's own
// output for display.
type Status struct {
	State State  `json:"status"`
	Raw   string `json:"raw_output"`
}

// Manager is the per-platform service manager strategy.
type Manager interface {
	Name() string
	// Privileged reports whether lifecycle commands need elevation.
	Privileged() bool
	ActionCommand(action Action) (shell.Command, error)
	StatusCommand() (shell.Command, error)
	// ParseStatus interprets the status command's result. runErr is the
	// error returned by the runner, if any.
	ParseStatus(res shell.Result, runErr error) (Status, error)
}

// SystemdManager uses systemctl.
type SystemdManager struct {
	Unit string
}

func (SystemdManager) Name() string     { return "systemd" }
func (SystemdManager) Privileged() bool { return true }

// ActionCommand implements Manager.
func (m SystemdManager) ActionCommand(action Action) (shell.Command, error) {
	return shell.Command{Name: "systemctl", Args: []string{string(action), m.Unit}}, nil
}

// StatusCommand implements Manager.
func (m SystemdManager) StatusCommand() (shell.Command, error) {
	return shell.Command{Name: "systemctl", Args: []string{"is-active", m.Unit}}, nil
}

// ParseStatus implements Manager. systemctl is-active exits 3 for an
// inactive unit and 4 for an unknown one.
func (m SystemdManager) ParseStatus(res shell.Result, runErr error) (Status, error) {
	raw := strings.TrimSpace(string(res.Stdout))
	switch code := shell.ExitCode(runErr); {
	case code == 0:
		if raw == "active" {
			return Status{State: StateActive, Raw: raw}, nil
		}
		return Status{State: StateInactive, Raw: raw}, nil
	case code == 4:
		return Status{State: StateUnknown, Raw: raw}, fmt.Errorf("%s: %w", m.Unit, ErrServiceNotFound)
	case code > 0:
		return Status{State: StateInactive, Raw: raw}, nil
	default:
		return Status{State: StateUnknown, Raw: raw}, runErr
	}
}

// BrewManager uses Homebrew services.
type BrewManager struct {
	Formula string
}

func (BrewManager) Name() string     { return "brew" }
func (BrewManager) Privileged() bool { return false }

// ActionCommand implements Manager.
func (m BrewManager) ActionCommand(action Action) (shell.Command, error) {
	return shell.Command{Name: "brew", Args: []string{"services", string(action), m.Formula}}, nil
}

// StatusCommand implements Manager.
func (m BrewManager) StatusCommand() (shell.Command, error) {
	return shell.Command{Name: "brew", Args: []string{"services", "list"}}, nil
}

// ParseStatus implements Manager. The formula's row of `brew services list`
// must read "started".
func (m BrewManager) ParseStatus(res shell.Result, runErr error) (Status, error) {
	if runErr != nil {
		return Status{State: StateUnknown, Raw: strings.TrimSpace(res.Combined())}, runErr
	}
	sc := bufio.NewScanner(strings.NewReader(string(res.Stdout)))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || fields[0] != m.Formula {
			continue
		}
		row := strings.TrimSpace(sc.Text())
		if fields[1] == "started" {
			return Status{State: StateActive, Raw: row}, nil
		}
		return Status{State: StateInactive, Raw: row}, nil
	}
	return Status{State: StateUnknown, Raw: strings.TrimSpace(string(res.Stdout))},
		fmt.Errorf("%s: %w", m.Formula, ErrServiceNotFound)
}

// UnsupportedManager refuses everything.
type UnsupportedManager struct {
	Platform string
}

func (UnsupportedManager) Name() string     { return "unsupported" }
func (UnsupportedManager) Privileged() bool { return false }

// ActionCommand implements Manager.
func (u UnsupportedManager) ActionCommand(Action) (shell.Command, error) {
	return shell.Command{}, cerrors.NewUnsupportedPlatformError(u.Platform, "service control")
}

// StatusCommand implements Manager.
func (u UnsupportedManager) StatusCommand() (shell.Command, error) {
	return shell.Command{}, cerrors.NewUnsupportedPlatformError(u.Platform, "service status")
}

// ParseStatus implements Manager.
func (u UnsupportedManager) ParseStatus(shell.Result, error) (Status, error) {
	return Status{State: StateUnknown}, cerrors.NewUnsupportedPlatformError(u.Platform, "service status")
}

// ForPlatform returns the manager for goos.
func ForPlatform(goos, unit string) Manager {
	switch goos {
	case "linux":
		return SystemdManager{Unit: unit}
	case "darwin":
		return BrewManager{Formula: unit}
	default:
		return UnsupportedManager{Platform: goos}
	}
}
