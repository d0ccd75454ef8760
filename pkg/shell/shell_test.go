package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
)

func TestExecSuccess(t *testing.T) {
	res, err := Exec{Timeout: 5 * time.Second}.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\nerr\n", res.Combined())
}

func TestExecStdin(t *testing.T) {
	res, err := Exec{Timeout: 5 * time.Second}.Run(context.Background(), Command{
		Name:  "cat",
		Stdin: []byte("secret\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "secret\n", string(res.Stdout))
}

func TestExecNonZeroExit(t *testing.T) {
	res, err := Exec{Timeout: 5 * time.Second}.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo 'unit not found' >&2; exit 4"},
	})
	require.Error(t, err)

	var subErr *cerrors.SubprocessError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, 4, subErr.ExitCode)
	assert.Equal(t, "unit not found\n", subErr.Stderr)
	assert.Equal(t, 4, res.ExitCode)
	assert.Equal(t, 4, ExitCode(err))
}

func TestExecMissingBinary(t *testing.T) {
	_, err := Exec{}.Run(context.Background(), Command{Name: "definitely-not-a-real-binary-xyz"})
	require.Error(t, err)
	assert.Equal(t, -1, ExitCode(err))
}

func TestExecTimeoutKillsChild(t *testing.T) {
	start := time.Now()
	_, err := Exec{Timeout: 200 * time.Millisecond, KillGrace: 200 * time.Millisecond}.Run(
		context.Background(), Command{Name: "sleep", Args: []string{"10"}})
	require.Error(t, err)
	assert.True(t, cerrors.IsTimeout(err), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCommandStringOmitsStdin(t *testing.T) {
	c := Command{Name: "sudo", Args: []string{"-S", "systemctl", "restart", "nginx"}, Stdin: []byte("hunter2\n")}
	assert.Equal(t, "sudo -S systemctl restart nginx", c.String())
	assert.NotContains(t, c.String(), "hunter2")
	assert.Equal(t, []string{"sudo", "-S", "systemctl", "restart", "nginx"}, c.Argv())
}

func TestScripted(t *testing.T) {
	r := NewScripted().On("systemctl", Result{ExitCode: 3, Stdout: []byte("inactive\n")})

	res, err := r.Run(context.Background(), Command{Name: "systemctl", Args: []string{"is-active", "nginx"}})
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
	assert.Equal(t, "inactive\n", string(res.Stdout))

	_, err = r.Run(context.Background(), Command{Name: "nginx", Args: []string{"-V"}})
	require.NoError(t, err)

	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "systemctl is-active nginx", calls[0].String())
}
