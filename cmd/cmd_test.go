package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/rshd/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()

	run(t, "init", "--config", dir)
	assert.FileExists(t, filepath.Join(dir, config.ConfigurationName))
	assert.DirExists(t, filepath.Join(dir, config.LogsDirName))

	out := run(t, "builtins")
	for _, name := range []string{"cd", "pwd", "echo", "exit"} {
		assert.Contains(t, out, name)
	}

	events := `{"timestamp_micros":1,"session_id":"s1","connect":{"remote_addr":"127.0.0.1:4000"}}
{"timestamp_micros":2,"session_id":"s1","run_command":{"command":["ls"],"exit_code":0}}
{"timestamp_micros":3,"session_id":"s1","disconnect":{"reason":"disconnect","commands":1}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.AppLogName), []byte(events), 0600))

	out = run(t, "events", "report", "--config", dir, "--format", "table")
	assert.Contains(t, out, "127.0.0.1:4000")

	out = run(t, "events", "report", "--config", dir, "--format", "yaml")
	assert.Contains(t, out, "log_entries: 3")
	assert.Contains(t, out, "127.0.0.1:4000")

	out = run(t, "logs", "ls", "--config", dir)
	assert.Contains(t, out, "NAME")
}
