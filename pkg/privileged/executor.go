package privileged

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/credential"
	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

// Executor runs privileged commands through an Elevator.
type Executor struct {
	elevator Elevator
	runner   shell.Runner
	logger   *logging.ColoredLogger
}

// NewExecutor creates an Executor.
func NewExecutor(elevator Elevator, runner shell.Runner, logger *logging.ColoredLogger) *Executor {
	return &Executor{elevator: elevator, runner: runner, logger: logger}
}

// Elevator returns the strategy in use.
func (e *Executor) Elevator() Elevator { return e.elevator }

// RunPrivileged runs name with args as administrator. A missing credential
// fails before anything is spawned. A non-zero exit is returned as an
// errors.SubprocessError with the captured stderr.
func (e *Executor) RunPrivileged(ctx context.Context, cred credential.Source, name string, args ...string) (shell.Result, error) {
	plain := shell.Command{Name: name, Args: args}
	cmd, err := e.elevator.Wrap(plain, cred)
	if err != nil {
		e.logger.ComponentWarn(logging.ComponentExec, "Privileged command refused",
			zap.String("command", plain.String()),
			zap.String("elevator", e.elevator.Name()),
			zap.Error(err))
		return shell.Result{}, err
	}

	e.logger.ComponentInfo(logging.ComponentExec, "Running privileged command",
		zap.String("command", plain.String()),
		zap.String("elevator", e.elevator.Name()))

	res, err := e.runner.Run(ctx, cmd)
	if err != nil {
		e.logger.ComponentError(logging.ComponentExec, "Privileged command failed",
			zap.String("command", plain.String()),
			zap.Int("exit_code", res.ExitCode),
			zap.Error(err))
		return res, err
	}

	e.logger.ComponentDebug(logging.ComponentExec, "Privileged command finished",
		zap.String("command", plain.String()),
		zap.Duration("took", res.Duration))
	return res, nil
}

// Validate runs the elevator's Verify command with secret. A rejected secret
// is an errors.AuthenticationFailedError; timeouts and launch failures keep
// their own types.
func (e *Executor) Validate(ctx context.Context, secret string) error {
	check, err := e.elevator.Verify(secret)
	if err != nil {
		return err
	}

	_, err = e.runner.Run(ctx, check)
	if err == nil {
		e.logger.ComponentInfo(logging.ComponentAuth, "Admin credential accepted")
		return nil
	}

	var subErr *cerrors.SubprocessError
	if errors.As(err, &subErr) && subErr.ExitCode > 0 {
		e.logger.ComponentWarn(logging.ComponentAuth, "Admin credential rejected",
			zap.Int("exit_code", subErr.ExitCode))
		return cerrors.NewAuthenticationFailedError(nil)
	}
	e.logger.ComponentError(logging.ComponentAuth, "Credential check could not run", zap.Error(err))
	return err
}
