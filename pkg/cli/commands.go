// Package cli implements the console's terminal commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/DeBrosOfficial/proxyconsole/pkg/config"
	"github.com/DeBrosOfficial/proxyconsole/pkg/credential"
	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logquery"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logresolve"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logtail"
	"github.com/DeBrosOfficial/proxyconsole/pkg/platform"
	"github.com/DeBrosOfficial/proxyconsole/pkg/service"
)

// PromptFunc asks the operator for a secret.
type PromptFunc func(title, hint string) (string, error)

// Console runs terminal commands against the local proxy.
type Console struct {
	Config   *config.Config
	Services *platform.Services
	Out      io.Writer
	Prompt   PromptFunc
}

// NewConsole creates a Console writing to stdout and prompting on the
// terminal.
func NewConsole(cfg *config.Config, services *platform.Services) *Console {
	return &Console{
		Config:   cfg,
		Services: services,
		Out:      os.Stdout,
		Prompt: func(title, hint string) (string, error) {
			return PromptPassword(title, hint, os.Stdin, os.Stderr)
		},
	}
}

// Status prints whether the proxy is running.
func (c *Console) Status(ctx context.Context) error {
	st, err := c.Services.Controller.Status(ctx)
	if err != nil && !errors.Is(err, service.ErrServiceNotFound) {
		return err
	}
	fmt.Fprintf(c.Out, "%s %s\n", labelStyle.Render(c.Services.Controller.Name()), stateText(st.State))
	if st.Raw != "" && st.Raw != string(st.State) {
		fmt.Fprintln(c.Out, subtitleStyle.Render(st.Raw))
	}
	return nil
}

func stateText(s service.State) string {
	switch s {
	case service.StateActive:
		return successStyle.Render(string(s))
	case service.StateInactive:
		return errorStyle.Render(string(s))
	}
	return string(s)
}

// Version prints the console build and the proxy's version report.
func (c *Console) Version(ctx context.Context, build string) error {
	fmt.Fprintf(c.Out, "console %s\n", build)
	v, err := c.Services.Controller.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, v)
	return nil
}

// ConfigPath prints the config file the proxy loads.
func (c *Console) ConfigPath(ctx context.Context) error {
	path, found := c.Services.Controller.ConfigPath(ctx)
	fmt.Fprintln(c.Out, path)
	if !found {
		fmt.Fprintln(c.Out, subtitleStyle.Render("(default path, not reported by "+c.Config.Service.Binary+" -t)"))
	}
	return nil
}

// Action starts, stops or restarts the proxy. When the platform elevates
// with a password the operator is prompted and the password is checked
// before the action runs.
func (c *Console) Action(ctx context.Context, name string) error {
	action, err := service.ParseAction(name)
	if err != nil {
		return err
	}

	var cred credential.Source
	strat := c.Services.Strategies
	if strat.Manager.Privileged() && strat.Elevator.NeedsCredential() {
		secret, err := c.Prompt("Administrator password",
			fmt.Sprintf("%s %s requires %s", action, c.Services.Controller.Name(), strat.Elevator.Name()))
		if err != nil {
			return err
		}
		if err := c.Services.Executor.Validate(ctx, secret); err != nil {
			return err
		}
		cred = credential.Static(secret)
	}

	msg, err := c.Services.Controller.Do(ctx, cred, action)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, successStyle.Render("✓ "+msg))
	return nil
}

// Logs prints the last lines of a log category, then keeps following the
// file with -f until ctx is cancelled.
//
//	logs [access|error] [-n N] [-f]
func (c *Console) Logs(ctx context.Context, args []string) error {
	raw := string(logresolve.CategoryAccess)
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		raw, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int("n", 100, "number of lines")
	follow := fs.Bool("f", false, "follow the file")
	if err := fs.Parse(args); err != nil {
		return cerrors.NewValidationError("args", err.Error(), strings.Join(args, " "))
	}

	cat, err := logresolve.ParseCategory(raw)
	if err != nil {
		return err
	}
	path, err := c.Services.Resolver.ResolveFile(ctx, cat)
	if err != nil {
		return err
	}

	lines, err := logtail.ReadLastLines(path, *n)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(c.Out, l)
	}
	if !*follow {
		return nil
	}

	w := logtail.NewWatcher(path, func(line string) { fmt.Fprintln(c.Out, line) },
		logtail.WithPollInterval(c.Config.Tail.PollInterval),
		logtail.WithNotify(c.Config.Tail.Notify))
	return w.Run(ctx)
}

// Journal runs a system log query for a service unit.
//
//	journal <service> [-n N] [-since T] [-until T] [-reverse]
func (c *Console) Journal(ctx context.Context, args []string) error {
	var name string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int64("n", -1, "number of entries")
	since := fs.String("since", "", "start time")
	until := fs.String("until", "", "end time")
	reverse := fs.Bool("reverse", false, "newest first")
	if err := fs.Parse(args); err != nil {
		return cerrors.NewValidationError("args", err.Error(), strings.Join(args, " "))
	}
	if name == "" && fs.NArg() > 0 {
		name = fs.Arg(0)
	}
	if name == "" {
		name = c.Config.Service.UnitName()
	}

	q := logquery.Query{
		ServiceName: name,
		NoPager:     true,
		Since:       *since,
		Until:       *until,
		Reverse:     *reverse,
	}
	if *n > math.MaxUint32 {
		return cerrors.NewValidationError("n", fmt.Sprintf("must be at most %d", uint32(math.MaxUint32)), *n)
	}
	if *n >= 0 {
		v := uint32(*n)
		q.NumLines = &v
	}

	out, err := c.Services.Query.Query(ctx, q)
	if err != nil {
		return err
	}
	fmt.Fprint(c.Out, out)
	return nil
}

// Describe renders err for the terminal, including the operator hint or the
// captured stderr when the error carries one.
func Describe(err error) string {
	var s strings.Builder
	s.WriteString(errorStyle.Render("✗ " + err.Error()))

	var dest *cerrors.SpecialDestinationError
	var sub *cerrors.SubprocessError
	switch {
	case errors.As(err, &dest) && dest.Hint != "":
		s.WriteString("\n" + subtitleStyle.Render(dest.Hint))
	case errors.As(err, &sub) && strings.TrimSpace(sub.Stderr) != "":
		s.WriteString("\n" + subtitleStyle.Render(strings.TrimSpace(sub.Stderr)))
	}
	return s.String()
}
