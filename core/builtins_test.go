package core

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/rshd/core/logger"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(out io.Writer) *Session {
	return &Session{
		out:        out,
		shutdown:   NewShutdown(),
		workdir:    ProcessWorkdir{},
		tokenizer:  &Tokenizer{MaxArgs: 10},
		executor:   &Executor{BufferSize: 1024},
		events:     logger.NewNopLogger().Sessionless(),
		bufferSize: 1024,
	}
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Args Args
}

func (gts goldenTestSuite) Run(t *testing.T) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden", "builtins")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			out := &bytes.Buffer{}
			handled, err := RunBuiltin(newTestSession(out), tc.Args)
			require.NoError(t, err)
			require.True(t, handled)

			g.Assert(t, tn, out.Bytes())
		})
	}
}

func TestBuiltins(t *testing.T) {
	cases := goldenTestSuite{
		"echo-no-args":       {Args{"echo"}},
		"echo-args":          {Args{"echo", "a", "b", "c"}},
		"echo-quoted":        {Args{"echo", `"hello`, `world"`}},
		"cd-no-dir":          {Args{"cd"}},
		"cd-missing-dir":     {Args{"cd", "/no/such/dir"}},
		"cd-not-a-directory": {Args{"cd", "/dev/null"}},
		"exit":               {Args{"exit"}},
	}

	cases.Run(t)
}

func TestIsBuiltin(t *testing.T) {
	cases := map[string]struct {
		args     Args
		expected bool
	}{
		"cd":         {Args{"cd", "/"}, true},
		"pwd":        {Args{"pwd"}, true},
		"echo":       {Args{"echo"}, true},
		"exit":       {Args{"exit"}, true},
		"uppercase":  {Args{"PWD"}, false},
		"prefix":     {Args{"ech"}, false},
		"external":   {Args{"ls"}, false},
		"no-command": {Args{}, false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsBuiltin(tc.args))
		})
	}
}

func TestListBuiltins(t *testing.T) {
	var names []string
	for _, b := range ListBuiltins() {
		names = append(names, b.Name)
		assert.NotEmpty(t, b.Usage)
		assert.NotEmpty(t, b.Short)
	}

	assert.Equal(t, []string{"cd", "echo", "exit", "pwd"}, names)
}

func TestCd_pwd(t *testing.T) {
	chdir(t, t.TempDir())

	target := t.TempDir()
	resolved, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)

	s := newTestSession(io.Discard)

	before := Pwd(s, Args{"pwd"})
	assert.Equal(t, before, Pwd(s, Args{"pwd"}), "pwd is idempotent")

	assert.Equal(t, "Changed directory to "+target+"\n", Cd(s, Args{"cd", target}))
	assert.Equal(t, resolved+"\n", Pwd(s, Args{"pwd"}))

	assert.Equal(t, "cd: No such directory\n", Cd(s, Args{"cd", "/no/such/dir"}))
	assert.Equal(t, resolved+"\n", Pwd(s, Args{"pwd"}), "failed cd leaves the directory alone")
}

func TestPwd_error(t *testing.T) {
	s := newTestSession(io.Discard)
	s.workdir = brokenWorkdir{}

	assert.Equal(t, "pwd: Error getting current directory\n", Pwd(s, Args{"pwd"}))
}

type brokenWorkdir struct{}

func (brokenWorkdir) Chdir(string) error     { return assert.AnError }
func (brokenWorkdir) Getwd() (string, error) { return "", assert.AnError }

func TestExit_stopsServer(t *testing.T) {
	s := newTestSession(io.Discard)
	assert.False(t, s.Shutdown().Stopped())

	assert.Equal(t, "Exiting shell...\n", Exit(s, Args{"exit"}))
	assert.True(t, s.Shutdown().Stopped())
}

func TestEcho_truncates(t *testing.T) {
	out := &bytes.Buffer{}
	s := newTestSession(out)

	args := Args{"echo"}
	for i := 0; i < 9; i++ {
		args = append(args, strings.Repeat("x", 200))
	}

	handled, err := RunBuiltin(s, args)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1023, out.Len())
}

func TestRunBuiltin_external(t *testing.T) {
	out := &bytes.Buffer{}
	handled, err := RunBuiltin(newTestSession(out), Args{"ls"})

	assert.NoError(t, err)
	assert.False(t, handled)
	assert.Zero(t, out.Len(), "nothing is written for non-builtins")
}
