package platform

import (
	"testing"

	"github.com/DeBrosOfficial/proxyconsole/pkg/config"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logresolve"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

func TestSelect(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		goos     string
		elevator string
		manager  string
		grammar  string
	}{
		{"linux", "sudo", "systemd", "journal"},
		{"darwin", "native", "brew", "unified-log"},
		{"windows", "unsupported", "unsupported", "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			s := Select(tt.goos, cfg)
			if got := s.Elevator.Name(); got != tt.elevator {
				t.Errorf("elevator = %q, want %q", got, tt.elevator)
			}
			if got := s.Manager.Name(); got != tt.manager {
				t.Errorf("manager = %q, want %q", got, tt.manager)
			}
			if got := s.Grammar.Name(); got != tt.grammar {
				t.Errorf("grammar = %q, want %q", got, tt.grammar)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	got := Categories([]string{"error", "bogus", "access"})
	want := []logresolve.Category{logresolve.CategoryError, logresolve.CategoryAccess}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewServices(t *testing.T) {
	cfg := config.Default()
	svc := NewServices(cfg, Select("linux", cfg), shell.NewScripted(), nil)

	if svc.Controller.Name() != cfg.Service.Name {
		t.Errorf("controller name = %q", svc.Controller.Name())
	}
	if svc.Query.Grammar().Name() != "journal" {
		t.Errorf("grammar = %q", svc.Query.Grammar().Name())
	}
	if svc.Executor.Elevator().Name() != "sudo" {
		t.Errorf("elevator = %q", svc.Executor.Elevator().Name())
	}
}
