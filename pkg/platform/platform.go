// Package platform picks the host-specific strategies once at startup and
// wires the console's services from configuration.
package platform

import (
	"runtime"

	"github.com/DeBrosOfficial/proxyconsole/pkg/config"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logquery"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logresolve"
	"github.com/DeBrosOfficial/proxyconsole/pkg/privileged"
	"github.com/DeBrosOfficial/proxyconsole/pkg/service"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

// Strategies are the per-OS behaviours.
type Strategies struct {
	GOOS     string
	Elevator privileged.Elevator
	Manager  service.Manager
	Grammar  logquery.Grammar
}

// Select returns the strategies for goos.
func Select(goos string, cfg *config.Config) Strategies {
	return Strategies{
		GOOS:     goos,
		Elevator: privileged.ForPlatform(goos, cfg.Exec.Helper),
		Manager:  service.ForPlatform(goos, cfg.Service.UnitName()),
		Grammar:  logquery.ForPlatform(goos),
	}
}

// Current returns the strategies for the running OS.
func Current(cfg *config.Config) Strategies {
	return Select(runtime.GOOS, cfg)
}

// Services holds everything a front end needs to act on the proxy.
type Services struct {
	Strategies Strategies
	Runner     shell.Runner
	Executor   *privileged.Executor
	Controller *service.Controller
	Resolver   *logresolve.Resolver
	Query      *logquery.Runner
}

// NewServices wires the services for strat. A nil runner means real
// processes bounded by the exec settings.
func NewServices(cfg *config.Config, strat Strategies, runner shell.Runner, logger *logging.ColoredLogger) *Services {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if runner == nil {
		runner = shell.Exec{Timeout: cfg.Exec.Timeout, KillGrace: cfg.Exec.KillGrace}
	}

	exec := privileged.NewExecutor(strat.Elevator, runner, logger)
	ctrl := service.NewController(cfg.Service.Name, cfg.Service.Binary, strat.Manager, exec, runner, logger)

	opts := logresolve.Options{
		Candidates:  cfg.Service.ConfigCandidates,
		Defaults:    defaultLogPaths(cfg.Service.DefaultLogPaths),
		ServiceName: cfg.Service.UnitName(),
		Logger:      logger,
	}
	if cfg.Service.CheckBuildInfo {
		opts.BuildInfo = ctrl.BuildInfo
	}

	return &Services{
		Strategies: strat,
		Runner:     runner,
		Executor:   exec,
		Controller: ctrl,
		Resolver:   logresolve.New(opts),
		Query:      logquery.NewRunner(strat.Grammar, runner, logger),
	}
}

// Categories converts configured category names, skipping unknown ones.
func Categories(names []string) []logresolve.Category {
	out := make([]logresolve.Category, 0, len(names))
	for _, n := range names {
		if c, err := logresolve.ParseCategory(n); err == nil {
			out = append(out, c)
		}
	}
	return out
}

func defaultLogPaths(in map[string]string) map[logresolve.Category]string {
	out := make(map[logresolve.Category]string, len(in))
	for name, path := range in {
		if c, err := logresolve.ParseCategory(name); err == nil {
			out[c] = path
		}
	}
	return out
}
