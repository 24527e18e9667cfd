package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJsonLinesLogRecorder(t *testing.T) {
	buf := &bytes.Buffer{}
	session := NewJsonLinesLogRecorder(buf).NewSession()

	_, err := uuid.Parse(session.SessionID())
	assert.NoError(t, err, "session ids are UUIDs")

	require.NoError(t, session.Record(&RunCommand{Command: []string{"ls", "-l"}, ExitCode: 0}))
	require.NoError(t, session.Record(&Disconnect{Reason: "disconnect", Commands: 1}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, session.SessionID(), entry.SessionID)
	assert.NotZero(t, entry.TimestampMicros)
	require.NotNil(t, entry.RunCommand)
	assert.Equal(t, []string{"ls", "-l"}, entry.RunCommand.Command)
	assert.Nil(t, entry.Connect)
	assert.Nil(t, entry.Disconnect)
}

func TestReport(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewJsonLinesLogRecorder(buf)

	first := l.NewSession()
	first.Record(&Connect{RemoteAddr: "10.0.0.1:5000", TTYLog: "first.log"})
	first.Record(&RunCommand{Command: []string{"pwd"}, Builtin: true})
	first.Record(&RunCommand{Command: []string{"make"}, ExitCode: 2})
	first.Record(&Disconnect{Reason: "disconnect", Commands: 2})

	second := l.NewSession()
	second.Record(&Connect{RemoteAddr: "10.0.0.2:5000"})
	second.Record(&RunCommand{Command: []string{"yes"}, ExitCode: -1, Truncated: true})
	second.Record(&RunCommand{Command: []string{"exit"}, Builtin: true})
	second.Record(&Disconnect{Reason: "shutdown", Commands: 2})

	l.Sessionless().Record(&Shutdown{Reason: "stopped"})
	buf.WriteString("{}\n")

	var report Report
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	assert.Equal(t, 10, report.LogEntries)
	assert.Equal(t, 1, report.InvalidEntries)
	assert.Equal(t, 1, report.Shutdowns.Get("stopped"))
	assert.Equal(t, 2, report.RunCommand.Builtins)
	assert.Equal(t, 2, report.RunCommand.Failures)
	assert.Equal(t, 1, report.RunCommand.Truncated)
	assert.Equal(t, 1, report.RunCommand.CommandNames.Get("make"))

	byAddr := make(map[string]*InteractiveSession)
	for _, s := range report.Sessions() {
		byAddr[s.RemoteAddr] = s
	}
	require.Len(t, byAddr, 2)

	got := byAddr["10.0.0.1:5000"]
	require.NotNil(t, got)
	assert.Equal(t, first.SessionID(), got.ID)
	assert.Equal(t, "first.log", got.TTYLog)
	assert.Equal(t, []string{"pwd", "make"}, got.Commands)
	assert.Equal(t, 1, got.Failures)
	assert.Equal(t, "disconnect", got.Reason)

	got = byAddr["10.0.0.2:5000"]
	require.NotNil(t, got)
	assert.Equal(t, "shutdown", got.Reason)
	assert.Equal(t, 1, got.Failures)
}

func TestStrCounter_MarshalJSON(t *testing.T) {
	var ctr StrCounter
	ctr.Increment("a")
	ctr.Increment("a")
	ctr.Increment("b")

	out, err := json.Marshal(ctr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2,"b":1}`, string(out))
	assert.Equal(t, 3, ctr.Total())
}
