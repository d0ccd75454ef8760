package shell

import (
	"context"
	"sync"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
)

// Scripted is a Runner that replays canned results and records every
// command it receives. Responses are matched by program name; unknown
// programs succeed with empty output.
type Scripted struct {
	mu        sync.Mutex
	responses map[string]Result
	calls     []Command
}

// NewScripted returns an empty Scripted runner.
func NewScripted() *Scripted {
	return &Scripted{responses: make(map[string]Result)}
}

// On registers the result returned for program name.
func (s *Scripted) On(name string, res Result) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[name] = res
	return s
}

// Run implements Runner.
func (s *Scripted) Run(ctx context.Context, cmd Command) (Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cmd)
	res := s.responses[cmd.Name]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}
	if res.ExitCode != 0 {
		return res, cerrors.NewSubprocessError(cmd.Name, res.ExitCode, string(res.Stderr), nil)
	}
	return res, nil
}

// Calls returns a copy of the recorded commands.
func (s *Scripted) Calls() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Command(nil), s.calls...)
}
