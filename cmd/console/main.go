package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeBrosOfficial/proxyconsole/pkg/cli"
	"github.com/DeBrosOfficial/proxyconsole/pkg/config"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/platform"
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

var (
	configPath = ""
	timeout    = 60 * time.Second
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	if command == "serve" {
		if err := runServe(args); err != nil {
			fmt.Fprintln(os.Stderr, cli.Describe(err))
			os.Exit(1)
		}
		return
	}

	args = parseGlobalFlags(args)

	switch command {
	case "help", "--help", "-h":
		showHelp()
		return
	case "status", "version", "start", "stop", "restart", "logs", "journal", "config-path":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		showHelp()
		os.Exit(1)
	}

	console, err := newConsole()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Following a log runs until interrupted.
	if command != "logs" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch command {
	case "status":
		err = console.Status(ctx)
	case "version":
		err = console.Version(ctx, buildString())
	case "start", "stop", "restart":
		err = console.Action(ctx, command)
	case "logs":
		err = console.Logs(ctx, args)
	case "journal":
		err = console.Journal(ctx, args)
	case "config-path":
		err = console.ConfigPath(ctx)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(1)
	}
}

// newConsole loads the config file and wires the platform services for a
// one-shot command. Command logs go to a quiet logger.
func newConsole() (*cli.Console, error) {
	path := configPath
	if path == "" {
		path = getEnvDefault("CONSOLE_CONFIG", "")
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.Logging.Level = "error"
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	services := platform.NewServices(cfg, platform.Current(cfg), nil, logger)
	return cli.NewConsole(cfg, services), nil
}

func newLogger(cfg *config.Config) (*logging.ColoredLogger, error) {
	return logging.New(logging.Options{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		OutputFile:   cfg.Logging.OutputFile,
		EnableColors: cfg.Logging.OutputFile == "",
	})
}

// parseGlobalFlags pulls -config and -t out of args and returns the rest.
func parseGlobalFlags(args []string) []string {
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "--config", "-config":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		case "-t", "--timeout":
			if i+1 < len(args) {
				if d, err := time.ParseDuration(args[i+1]); err == nil {
					timeout = d
				}
				i++
			}
		default:
			rest = append(rest, args[i])
		}
	}
	return rest
}

func buildString() string {
	s := version
	if commit != "" {
		s += fmt.Sprintf(" (commit %s)", commit)
	}
	if date != "" {
		s += fmt.Sprintf(" built %s", date)
	}
	return s
}

func showHelp() {
	fmt.Printf("Proxy Console - operator console for the local nginx proxy\n\n")
	fmt.Printf("Usage: console <command> [args...]\n\n")

	fmt.Printf("Server:\n")
	fmt.Printf("  serve [-config path] [-addr :8081]  - Run the HTTP console\n\n")

	fmt.Printf("Service:\n")
	fmt.Printf("  status                              - Show whether the proxy is running\n")
	fmt.Printf("  start | stop | restart              - Control the proxy (prompts for the admin password)\n")
	fmt.Printf("  version                             - Show console and proxy versions\n")
	fmt.Printf("  config-path                         - Show the config file the proxy loads\n\n")

	fmt.Printf("Logs:\n")
	fmt.Printf("  logs [access|error] [-n N] [-f]     - Print or follow a log file\n")
	fmt.Printf("  journal [service] [-n N] [-since T] [-until T] [-reverse]\n")
	fmt.Printf("                                      - Query the system log for a service\n\n")

	fmt.Printf("Global Flags:\n")
	fmt.Printf("  -c, --config <path>                 - Config file (default ~/.proxyconsole/console.yaml)\n")
	fmt.Printf("  -t, --timeout <duration>            - Command timeout (default 60s)\n")
}
