package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/credential"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/privileged"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

// DefaultConfigPath is reported when the binary does not name its config.
const DefaultConfigPath = "/etc/nginx/nginx.conf"

var confPathRe = regexp.MustCompile(`(/[^ :'"]+\.conf)`)

// Controller performs lifecycle actions and read-only queries on the proxy.
type Controller struct {
	name     string
	binary   string
	manager  Manager
	executor *privileged.Executor
	runner   shell.Runner
	logger   *logging.ColoredLogger
}

// NewController creates a Controller. name is used in messages; binary is
// the proxy executable run with -V and -t.
func NewController(name, binary string, manager Manager, executor *privileged.Executor, runner shell.Runner, logger *logging.ColoredLogger) *Controller {
	return &Controller{
		name:     name,
		binary:   binary,
		manager:  manager,
		executor: executor,
		runner:   runner,
		logger:   logger,
	}
}

// Name returns the managed service name.
func (c *Controller) Name() string { return c.name }

// Do runs a lifecycle action. Managers that need elevation go through the
// privileged executor with cred; others run directly.
func (c *Controller) Do(ctx context.Context, cred credential.Source, action Action) (string, error) {
	cmd, err := c.manager.ActionCommand(action)
	if err != nil {
		return "", err
	}

	c.logger.ComponentInfo(logging.ComponentService, "Service action requested",
		zap.String("service", c.name),
		zap.String("action", string(action)),
		zap.String("manager", c.manager.Name()))

	if c.manager.Privileged() {
		_, err = c.executor.RunPrivileged(ctx, cred, cmd.Name, cmd.Args...)
	} else {
		_, err = c.runner.Run(ctx, cmd)
	}
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("%s %s successfully", c.name, action.PastTense())
	c.logger.ComponentInfo(logging.ComponentService, msg)
	return msg, nil
}

// Status reports whether the service is running.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	cmd, err := c.manager.StatusCommand()
	if err != nil {
		return Status{State: StateUnknown}, err
	}
	res, runErr := c.runner.Run(ctx, cmd)
	return c.manager.ParseStatus(res, runErr)
}

// Version returns the proxy's build report (<binary> -V). nginx writes it to
// stderr, so stderr wins when present.
func (c *Controller) Version(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, shell.Command{Name: c.binary, Args: []string{"-V"}})
	if err != nil {
		return "", err
	}
	if out := strings.TrimSpace(string(res.Stderr)); out != "" {
		return out, nil
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// BuildInfo adapts Version for the log resolver's build-info lookup.
func (c *Controller) BuildInfo(ctx context.Context) (string, error) {
	return c.Version(ctx)
}

// ConfigPath asks the binary which config file it loads (<binary> -t) and
// returns the first .conf path in its output. A failing test run still
// names the file, so the exit status is ignored. found is false when the
// default is returned.
func (c *Controller) ConfigPath(ctx context.Context) (path string, found bool) {
	res, err := c.runner.Run(ctx, shell.Command{Name: c.binary, Args: []string{"-t"}})
	if m := confPathRe.FindString(res.Combined()); m != "" {
		return m, true
	}
	if err != nil {
		c.logger.ComponentDebug(logging.ComponentService, "Config test produced no path",
			zap.String("binary", c.binary), zap.Error(err))
	}
	return DefaultConfigPath, false
}
