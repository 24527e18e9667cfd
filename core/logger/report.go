package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries int        `json:"invalid_entries,omitempty"`
	Shutdowns      StrCounter `json:"shutdowns"`

	RunCommand RunCommandReport `json:"run_command"`

	// Map of sessionID -> interactions
	sessions map[string]*InteractiveSession
}

// Update adds the entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.Connect != nil:
		r.session(le).Update(le)
	case le.RunCommand != nil:
		r.RunCommand.update(le.RunCommand)
		r.session(le).Update(le)
	case le.Disconnect != nil:
		r.session(le).Update(le)
	case le.Shutdown != nil:
		r.Shutdowns.Increment(le.Shutdown.Reason)
	default:
		r.InvalidEntries++
	}
}

func (r *Report) session(le *LogEntry) *InteractiveSession {
	if r.sessions == nil {
		r.sessions = make(map[string]*InteractiveSession)
	}
	s, ok := r.sessions[le.SessionID]
	if !ok {
		s = &InteractiveSession{ID: le.SessionID}
		r.sessions[le.SessionID] = s
	}
	return s
}

// Sessions returns the sessions seen so far ordered by start time.
func (r *Report) Sessions() []*InteractiveSession {
	var out []*InteractiveSession
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartMicros == out[j].StartMicros {
			return out[i].ID < out[j].ID
		}
		return out[i].StartMicros < out[j].StartMicros
	})
	return out
}

// InteractiveSession summarizes one client session.
type InteractiveSession struct {
	ID          string   `json:"id"`
	RemoteAddr  string   `json:"remote_addr,omitempty"`
	TTYLog      string   `json:"tty_log,omitempty"`
	StartMicros int64    `json:"start_micros"`
	Reason      string   `json:"disconnect_reason,omitempty"`
	Commands    []string `json:"commands"`
	Failures    int      `json:"failures"`
}

// Update adds a session event to the summary.
func (i *InteractiveSession) Update(le *LogEntry) {
	switch {
	case le.Connect != nil:
		i.RemoteAddr = le.Connect.RemoteAddr
		i.TTYLog = le.Connect.TTYLog
		i.StartMicros = le.TimestampMicros
	case le.RunCommand != nil:
		i.Commands = append(i.Commands, strings.Join(le.RunCommand.Command, " "))
		if le.RunCommand.ExitCode != 0 {
			i.Failures++
		}
	case le.Disconnect != nil:
		i.Reason = le.Disconnect.Reason
	}
}

// RunCommandReport counts executed commands.
type RunCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
	Builtins     int        `json:"builtins"`
	Failures     int        `json:"failures"`
	Truncated    int        `json:"truncated"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if len(rc.Command) > 0 {
		r.CommandNames.Increment(rc.Command[0])
	} else {
		r.CommandNames.Increment("")
	}
	if rc.Builtin {
		r.Builtins++
	}
	if rc.ExitCode != 0 {
		r.Failures++
	}
	if rc.Truncated {
		r.Truncated++
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// Total returns the sum of all counts.
func (s *StrCounter) Total() int {
	total := 0
	for _, v := range s.internal {
		total += v
	}
	return total
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}
