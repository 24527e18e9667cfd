package core

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestExecutor_Execute(t *testing.T) {
	requireCommand(t, "sh")

	cases := []struct {
		name     string
		args     Args
		expected string
		exitCode int
	}{
		{"stdout", Args{"sh", "-c", "echo hello"}, "hello\n", 0},
		{"stderr-is-captured", Args{"sh", "-c", "echo out; echo err 1>&2"}, "out\nerr\n", 0},
		{"no-output", Args{"sh", "-c", "true"}, "", 0},
		{"no-command", Args{}, MsgNoCommand, -1},
		{"non-zero-exit-hides-output", Args{"sh", "-c", "echo detail; exit 3"}, MsgExecFailed, 3},
		{"not-found", Args{"no_such_binary_xyz"}, MsgExecFailed, -1},
		{"not-executable", Args{"/dev/null"}, MsgExecFailed, -1},
	}

	executor := &Executor{BufferSize: 1024}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := executor.Execute(context.Background(), tc.args)

			assert.Equal(t, tc.expected, string(result.Output))
			assert.Equal(t, tc.exitCode, result.ExitCode)
			assert.False(t, result.Truncated)
		})
	}
}

func TestExecutor_truncates(t *testing.T) {
	requireCommand(t, "head")
	requireCommand(t, "yes")

	executor := &Executor{BufferSize: 1024}

	t.Run("finite", func(t *testing.T) {
		result := executor.Execute(context.Background(), Args{"head", "-c", "5000", "/dev/zero"})

		assert.Len(t, result.Output, 1023)
		assert.True(t, result.Truncated)
	})

	t.Run("endless", func(t *testing.T) {
		// yes only stops once the closed pipe kills it.
		result := executor.Execute(context.Background(), Args{"yes"})

		assert.Len(t, result.Output, 1023)
		assert.True(t, result.Truncated)
		assert.Equal(t, strings.Repeat("y\n", 511)+"y", string(result.Output))
	})
}

func TestExecutor_pipeFailure(t *testing.T) {
	executor := &Executor{
		BufferSize: 1024,
		pipe: func() (*os.File, *os.File, error) {
			return nil, nil, errors.New("too many open files")
		},
	}

	result := executor.Execute(context.Background(), Args{"true"})
	assert.Equal(t, MsgPipeFailed, string(result.Output))
	assert.Error(t, result.Err)
}

func TestExecutor_forkFailure(t *testing.T) {
	executor := &Executor{
		BufferSize: 1024,
		start: func(*exec.Cmd) error {
			return syscall.EAGAIN
		},
	}

	result := executor.Execute(context.Background(), Args{"true"})
	assert.Equal(t, MsgForkFailed, string(result.Output))
	assert.ErrorIs(t, result.Err, syscall.EAGAIN)
}

func TestExecutor_timeoutKeepsOutput(t *testing.T) {
	requireCommand(t, "sh")
	requireCommand(t, "sleep")

	executor := &Executor{BufferSize: 1024, Timeout: 100 * time.Millisecond}

	start := time.Now()
	result := executor.Execute(context.Background(), Args{"sh", "-c", "echo started; exec sleep 5"})

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Equal(t, "started\n", string(result.Output))
	assert.Equal(t, -1, result.ExitCode)
}

func TestExecutor_timeoutKillsProcessGroup(t *testing.T) {
	requireCommand(t, "sh")
	requireCommand(t, "sleep")

	executor := &Executor{BufferSize: 1024, Timeout: 200 * time.Millisecond}

	// sleep runs as a child of sh and holds the output pipe open too.
	start := time.Now()
	result := executor.Execute(context.Background(), Args{"sh", "-c", "echo started; sleep 4; echo done"})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "started\n", string(result.Output))
	assert.Equal(t, -1, result.ExitCode)
	assert.False(t, result.Truncated)
}

func TestExecutor_exactFitIsNotTruncated(t *testing.T) {
	requireCommand(t, "printf")

	executor := &Executor{BufferSize: 6}

	result := executor.Execute(context.Background(), Args{"printf", "12345"})
	assert.Equal(t, "12345", string(result.Output))
	assert.False(t, result.Truncated)

	result = executor.Execute(context.Background(), Args{"printf", "123456"})
	assert.Equal(t, "12345", string(result.Output))
	assert.True(t, result.Truncated)
}

type fixedWorkdir string

func (d fixedWorkdir) Chdir(string) error     { return errors.New("read only") }
func (d fixedWorkdir) Getwd() (string, error) { return string(d), nil }

func TestExecutor_workdir(t *testing.T) {
	requireCommand(t, "pwd")

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	executor := &Executor{BufferSize: 1024, Workdir: fixedWorkdir(dir)}
	result := executor.Execute(context.Background(), Args{"pwd"})

	assert.Equal(t, dir+"\n", string(result.Output))
}
