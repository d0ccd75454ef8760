package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/proxyconsole/pkg/config"
	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/platform"
	"github.com/DeBrosOfficial/proxyconsole/pkg/shell"
)

type fixture struct {
	console *Console
	runner  *shell.Scripted
	out     *bytes.Buffer
	prompts int
	dir     string
}

func newFixture(t *testing.T, goos string, runner *shell.Scripted) *fixture {
	t.Helper()
	dir := t.TempDir()
	conf := filepath.Join(dir, "nginx.conf")
	body := "access_log logs/access.log;\nerror_log syslog:server=127.0.0.1;\n"
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(conf, []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "access.log"), []byte("one\ntwo\nthree\n"), 0o644))

	cfg := config.Default()
	cfg.Service.ConfigCandidates = []string{conf}
	cfg.Service.CheckBuildInfo = false

	f := &fixture{runner: runner, out: &bytes.Buffer{}, dir: dir}
	f.console = &Console{
		Config:   cfg,
		Services: platform.NewServices(cfg, platform.Select(goos, cfg), runner, nil),
		Out:      f.out,
		Prompt: func(title, hint string) (string, error) {
			f.prompts++
			return "hunter2", nil
		},
	}
	return f
}

func TestActionPromptsAndElevates(t *testing.T) {
	f := newFixture(t, "linux", shell.NewScripted())

	require.NoError(t, f.console.Action(context.Background(), "restart"))
	assert.Equal(t, 1, f.prompts)
	assert.Contains(t, f.out.String(), "nginx restarted successfully")

	calls := f.runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"sudo", "-k", "-S", "-p", "", "true"}, calls[0].Argv())
	assert.Equal(t, []string{"sudo", "-S", "-p", "", "systemctl", "restart", "nginx"}, calls[1].Argv())
	assert.Equal(t, "hunter2\n", string(calls[1].Stdin))
}

func TestActionRejectedPasswordRunsNothing(t *testing.T) {
	runner := shell.NewScripted().On("sudo", shell.Result{ExitCode: 1})
	f := newFixture(t, "linux", runner)

	err := f.console.Action(context.Background(), "stop")
	require.Error(t, err)
	assert.True(t, cerrors.IsAuthenticationFailed(err))
	assert.Len(t, runner.Calls(), 1)
}

func TestActionWithoutElevation(t *testing.T) {
	f := newFixture(t, "darwin", shell.NewScripted())

	require.NoError(t, f.console.Action(context.Background(), "start"))
	assert.Zero(t, f.prompts)
	require.Len(t, f.runner.Calls(), 1)
	assert.Equal(t, []string{"brew", "services", "start", "nginx"}, f.runner.Calls()[0].Argv())
}

func TestActionPromptCancelled(t *testing.T) {
	f := newFixture(t, "linux", shell.NewScripted())
	f.console.Prompt = func(string, string) (string, error) { return "", ErrPromptCancelled }

	err := f.console.Action(context.Background(), "restart")
	assert.True(t, errors.Is(err, ErrPromptCancelled))
	assert.Empty(t, f.runner.Calls())
}

func TestActionUnknown(t *testing.T) {
	f := newFixture(t, "linux", shell.NewScripted())
	err := f.console.Action(context.Background(), "explode")
	assert.True(t, cerrors.IsValidation(err))
	assert.Zero(t, f.prompts)
}

func TestLogsPrintsTail(t *testing.T) {
	f := newFixture(t, "linux", shell.NewScripted())

	require.NoError(t, f.console.Logs(context.Background(), []string{"access", "-n", "2"}))
	assert.Equal(t, "two\nthree\n", f.out.String())
}

func TestLogsSpecialDestination(t *testing.T) {
	f := newFixture(t, "linux", shell.NewScripted())

	err := f.console.Logs(context.Background(), []string{"error"})
	var dest *cerrors.SpecialDestinationError
	require.True(t, errors.As(err, &dest))
	assert.Equal(t, "syslog", dest.Kind)
	assert.Contains(t, Describe(err), "syslog")
}

func TestLogsFollowStopsOnCancel(t *testing.T) {
	f := newFixture(t, "linux", shell.NewScripted())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.console.Logs(ctx, []string{"-n", "1", "-f"}))
	assert.Equal(t, "three\n", f.out.String())
}

func TestJournal(t *testing.T) {
	runner := shell.NewScripted().On("journalctl", shell.Result{Stdout: []byte("entry\n")})
	f := newFixture(t, "linux", runner)

	require.NoError(t, f.console.Journal(context.Background(),
		[]string{"nginx", "-n", "20", "-since", "2024-05-01T10:00:00", "-reverse"}))
	assert.Equal(t, "entry\n", f.out.String())
	assert.Equal(t,
		"journalctl -u nginx --no-pager -n 20 --since 2024-05-01 10:00:00 --reverse",
		runner.Calls()[0].String())
}

func TestJournalDefaultsToUnit(t *testing.T) {
	runner := shell.NewScripted()
	f := newFixture(t, "linux", runner)

	require.NoError(t, f.console.Journal(context.Background(), nil))
	assert.Equal(t, []string{"journalctl", "-u", "nginx", "--no-pager"}, runner.Calls()[0].Argv())
}

func TestJournalRejectsLineCountAboveUint32(t *testing.T) {
	runner := shell.NewScripted()
	f := newFixture(t, "linux", runner)

	err := f.console.Journal(context.Background(), []string{"nginx", "-n", "4294967296"})
	require.Error(t, err)
	assert.True(t, cerrors.IsValidation(err))
	assert.Empty(t, runner.Calls())

	require.NoError(t, f.console.Journal(context.Background(), []string{"nginx", "-n", "4294967295"}))
	assert.Equal(t, "journalctl -u nginx --no-pager -n 4294967295", runner.Calls()[0].String())
}

func TestStatusAndConfigPath(t *testing.T) {
	runner := shell.NewScripted().
		On("systemctl", shell.Result{Stdout: []byte("active\n")}).
		On("nginx", shell.Result{ExitCode: 1, Stderr: []byte("nginx: [emerg] open() \"/srv/nginx/nginx.conf\" failed\n")})
	f := newFixture(t, "linux", runner)

	require.NoError(t, f.console.Status(context.Background()))
	assert.Contains(t, f.out.String(), "active")

	f.out.Reset()
	require.NoError(t, f.console.ConfigPath(context.Background()))
	assert.Equal(t, "/srv/nginx/nginx.conf", strings.TrimSpace(f.out.String()))
}

func TestDescribeIncludesStderr(t *testing.T) {
	err := cerrors.NewSubprocessError("systemctl", 1, "Job for nginx.service failed\n", nil)
	out := Describe(err)
	assert.Contains(t, out, "Job for nginx.service failed")
}

func TestPasswordModel(t *testing.T) {
	var m tea.Model = newPasswordModel("Administrator password", "")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.(passwordModel).submitted, "empty input is not submitted")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s3cret")})
	assert.NotContains(t, m.View(), "s3cret")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pm := m.(passwordModel)
	assert.True(t, pm.submitted)
	assert.Equal(t, "s3cret", pm.input.Value())
	require.NotNil(t, cmd)
}

func TestPasswordModelCancel(t *testing.T) {
	var m tea.Model = newPasswordModel("Administrator password", "")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.(passwordModel).cancelled)
	assert.Empty(t, m.View())
}
