package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseGlobalFlags(t *testing.T) {
	configPath, timeout = "", 60*time.Second
	t.Cleanup(func() { configPath, timeout = "", 60*time.Second })

	rest := parseGlobalFlags([]string{"access", "-c", "/tmp/c.yaml", "-n", "5", "--timeout", "5s", "-f"})

	want := []string{"access", "-n", "5", "-f"}
	if len(rest) != len(want) {
		t.Fatalf("rest = %v, want %v", rest, want)
	}
	for i := range want {
		if rest[i] != want[i] {
			t.Fatalf("rest = %v, want %v", rest, want)
		}
	}
	if configPath != "/tmp/c.yaml" {
		t.Errorf("configPath = %q", configPath)
	}
	if timeout != 5*time.Second {
		t.Errorf("timeout = %v", timeout)
	}
}

func TestServeConfigAddrOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.yaml")
	if err := os.WriteFile(path, []byte("server:\n  listen_addr: \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	flags, err := parseServeFlags([]string{"-config", path})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := serveConfig(flags)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Fatalf("file addr = %q", cfg.Server.ListenAddr)
	}

	flags, err = parseServeFlags([]string{"-config", path, "-addr", "127.0.0.1:7000"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err = serveConfig(flags)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:7000" {
		t.Fatalf("flag addr = %q", cfg.Server.ListenAddr)
	}
}

func TestBuildString(t *testing.T) {
	version, commit, date = "1.2.0", "abc123", ""
	t.Cleanup(func() { version, commit, date = "dev", "", "" })
	if got := buildString(); got != "1.2.0 (commit abc123)" {
		t.Fatalf("buildString = %q", got)
	}
}
