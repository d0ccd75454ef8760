package main

import (
	"flag"
	"os"
	"strings"

	"github.com/DeBrosOfficial/proxyconsole/pkg/config"
)

const defaultConfigName = "console.yaml"

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// loadConfig resolves path (or the default location) and loads it.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath(defaultConfigName)
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.Load(path)
}

// serveFlags are the command-line overrides of serve.
type serveFlags struct {
	configPath string
	addr       string
}

// parseServeFlags parses serve's flags. Priority: flags > env > file >
// defaults; the env and file layers are applied by config.Load.
func parseServeFlags(args []string) (serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfgPath := fs.String("config", getEnvDefault("CONSOLE_CONFIG", ""), "Path to the console config file")
	addr := fs.String("addr", "", "HTTP listen address (e.g., :8081)")
	if err := fs.Parse(args); err != nil {
		return serveFlags{}, err
	}
	return serveFlags{configPath: *cfgPath, addr: strings.TrimSpace(*addr)}, nil
}

// serveConfig loads the config for serve and applies flag overrides.
func serveConfig(f serveFlags) (*config.Config, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.addr != "" {
		cfg.Server.ListenAddr = f.addr
	}
	return cfg, nil
}
