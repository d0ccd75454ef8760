package logquery

import (
	"context"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

// Runner executes queries with a fixed grammar.
type Runner struct {
	grammar Grammar
	runner  shell.Runner
	logger  *logging.ColoredLogger
}

// NewRunner creates a Runner.
func NewRunner(grammar Grammar, runner shell.Runner, logger *logging.ColoredLogger) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{grammar: grammar, runner: runner, logger: logger}
}

// Grammar returns the grammar in use.
func (r *Runner) Grammar() Grammar { return r.grammar }

// Query runs q and returns the facility's stdout. A non-zero exit is an
// errors.SubprocessError carrying stderr.
func (r *Runner) Query(ctx context.Context, q Query) (string, error) {
	cmd, err := r.grammar.Build(q)
	if err != nil {
		return "", err
	}

	r.logger.ComponentInfo(logging.ComponentQuery, "Querying system log",
		zap.String("grammar", r.grammar.Name()),
		zap.String("command", cmd.String()))

	res, err := r.runner.Run(ctx, cmd)
	if err != nil {
		r.logger.ComponentWarn(logging.ComponentQuery, "System log query failed",
			zap.String("service", q.ServiceName),
			zap.Int("exit_code", res.ExitCode),
			zap.Error(err))
		return "", err
	}
	return string(res.Stdout), nil
}
