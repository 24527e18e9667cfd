package ttylog

import (
	"io"
	"sync"
	"time"
)

// FD identifies the stream an event belongs to, seen from the server.
type FD int32

const (
	// FD_STDIN is data received from the client.
	FD_STDIN FD = 0
	// FD_STDOUT is data sent to the client.
	FD_STDOUT FD = 1
	// FD_STDERR is kept for format compatibility, the server never writes it.
	FD_STDERR FD = 2
)

// Op is the kind of event.
type Op int32

const (
	OpWrite Op = 3
	OpClose Op = 2
)

// TTYLogEntry is one recorded terminal event.
type TTYLogEntry struct {
	TimestampMicros int64
	Op              Op
	Fd              FD
	Data            []byte
}

// LogSink receives log events.
type LogSink func(t *TTYLogEntry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It reutrns io.EOF if the source
	// has no more log entries.
	Next() (*TTYLogEntry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(logEntry *TTYLogEntry) error {
		once.Do(func() {
			prevTimeMicros = logEntry.TimestampMicros
		})

		delta := logEntry.TimestampMicros - prevTimeMicros
		prevTimeMicros = logEntry.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(logEntry)
	}
}

// NewClientOutput writes what the client saw to w. If withInput is set the
// commands the client sent are written too.
func NewClientOutput(w io.Writer, withInput bool) LogSink {
	return func(logEntry *TTYLogEntry) error {
		if logEntry.Op != OpWrite {
			return nil
		}
		if logEntry.Fd == FD_STDIN && !withInput {
			return nil
		}
		_, err := w.Write(logEntry.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) (err error) {
	for {
		logEntry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(logEntry); err != nil {
			return err
		}
	}
}
