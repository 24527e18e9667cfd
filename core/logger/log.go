package logger

// LogEntry is a single recorded event. Exactly one of the event fields is
// set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	Connect    *Connect    `json:"connect,omitempty"`
	RunCommand *RunCommand `json:"run_command,omitempty"`
	Disconnect *Disconnect `json:"disconnect,omitempty"`
	Shutdown   *Shutdown   `json:"shutdown,omitempty"`
}

// LogType is implemented by every event that can be recorded.
type LogType interface {
	attach(le *LogEntry)
}

// Connect is recorded when a client session starts.
type Connect struct {
	RemoteAddr string `json:"remote_addr"`
	TTYLog     string `json:"tty_log,omitempty"`
}

func (e *Connect) attach(le *LogEntry) { le.Connect = e }

// RunCommand is recorded for every dispatched command.
type RunCommand struct {
	Command   []string `json:"command"`
	Builtin   bool     `json:"builtin,omitempty"`
	ExitCode  int      `json:"exit_code"`
	Truncated bool     `json:"truncated,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (e *RunCommand) attach(le *LogEntry) { le.RunCommand = e }

// Disconnect is recorded when a session ends.
type Disconnect struct {
	Reason   string `json:"reason"`
	Commands int    `json:"commands"`
}

func (e *Disconnect) attach(le *LogEntry) { le.Disconnect = e }

// Shutdown is recorded once when the server stops accepting clients.
type Shutdown struct {
	Reason string `json:"reason"`
}

func (e *Shutdown) attach(le *LogEntry) { le.Shutdown = e }

var (
	_ LogType = (*Connect)(nil)
	_ LogType = (*RunCommand)(nil)
	_ LogType = (*Disconnect)(nil)
	_ LogType = (*Shutdown)(nil)
)
