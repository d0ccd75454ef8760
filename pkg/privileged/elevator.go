// Package privileged runs commands with administrator rights. How elevation
// happens is a per-platform Elevator strategy chosen once at startup.
package privileged

import (
	"github.com/DeBrosOfficial/proxyconsole/pkg/credential"
	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

// Elevator turns a plain command into one that runs with administrator rights.
type Elevator interface {
	// Name identifies the strategy in logs.
	Name() string
	// NeedsCredential reports whether Wrap consults the credential source.
	NeedsCredential() bool
	// Wrap returns the elevated form of cmd. It must not spawn anything.
	Wrap(cmd shell.Command, cred credential.Source) (shell.Command, error)
	// Verify returns a harmless command that succeeds only if secret is a
	// valid administrator password.
	Verify(secret string) (shell.Command, error)
}

// SudoElevator pipes the credential to sudo on stdin.
type SudoElevator struct {
	// Helper is the sudo binary, "sudo" by default.
	Helper string
}

func (s SudoElevator) helper() string {
	if s.Helper == "" {
		return "sudo"
	}
	return s.Helper
}

func (s SudoElevator) Name() string          { return s.helper() }
func (s SudoElevator) NeedsCredential() bool { return true }

// Wrap implements Elevator. -S reads the password from stdin and -p ""
// suppresses the prompt so it never lands in captured stderr.
func (s SudoElevator) Wrap(cmd shell.Command, cred credential.Source) (shell.Command, error) {
	if cred == nil {
		return shell.Command{}, cerrors.NewNoCredentialError()
	}
	secret, ok := cred.Secret()
	if !ok {
		return shell.Command{}, cerrors.NewNoCredentialError()
	}
	args := append([]string{"-S", "-p", "", cmd.Name}, cmd.Args...)
	return shell.Command{
		Name:  s.helper(),
		Args:  args,
		Stdin: []byte(secret + "\n"),
	}, nil
}

// Verify implements Elevator. -k ignores any cached sudo timestamp so the
// password is actually checked.
func (s SudoElevator) Verify(secret string) (shell.Command, error) {
	return shell.Command{
		Name:  s.helper(),
		Args:  []string{"-k", "-S", "-p", "", "true"},
		Stdin: []byte(secret + "\n"),
	}, nil
}

// NativeElevator is used where the service manager handles privilege itself
// (Homebrew services on macOS). Commands run unchanged and the credential
// cache is never touched.
type NativeElevator struct {
	// Verifier validates login secrets. Defaults to sudo.
	Verifier SudoElevator
}

func (NativeElevator) Name() string          { return "native" }
func (NativeElevator) NeedsCredential() bool { return false }

// Wrap implements Elevator.
func (NativeElevator) Wrap(cmd shell.Command, _ credential.Source) (shell.Command, error) {
	return cmd, nil
}

// Verify implements Elevator.
func (n NativeElevator) Verify(secret string) (shell.Command, error) {
	return n.Verifier.Verify(secret)
}

// UnsupportedElevator refuses everything.
type UnsupportedElevator struct {
	Platform string
}

func (UnsupportedElevator) Name() string          { return "unsupported" }
func (UnsupportedElevator) NeedsCredential() bool { return false }

// Wrap implements Elevator.
func (u UnsupportedElevator) Wrap(shell.Command, credential.Source) (shell.Command, error) {
	return shell.Command{}, cerrors.NewUnsupportedPlatformError(u.Platform, "privileged execution")
}

// Verify implements Elevator.
func (u UnsupportedElevator) Verify(string) (shell.Command, error) {
	return shell.Command{}, cerrors.NewUnsupportedPlatformError(u.Platform, "credential validation")
}

// ForPlatform returns the elevator for goos.
func ForPlatform(goos, helper string) Elevator {
	switch goos {
	case "linux":
		return SudoElevator{Helper: helper}
	case "darwin":
		return NativeElevator{Verifier: SudoElevator{Helper: helper}}
	default:
		return UnsupportedElevator{Platform: goos}
	}
}
