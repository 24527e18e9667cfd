package ttylog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"
)

type MockFdOp int

const (
	opOpen  MockFdOp = 1
	opClose MockFdOp = 2
	opWrite MockFdOp = 3
	opExec  MockFdOp = 4
)

type MockFdDir int

const (
	dirRead  MockFdDir = 1
	dirWrite MockFdDir = 2
)

type event struct {
	Operation    int32  // Operation, maps into MockFdOp.
	Tty          uint32 // Should always be 0.
	Size         int32  // Number of bytes following this event that represent the data.
	Direction    int32  // Data direction, maps into MockFdDir.
	Seconds      uint32 // UNIX timestamp of the event.
	Microseconds uint32 // Microseconds after the timestamp of the event.
}

// According to Kippo, the format matches User Mode Linux recording.
func logEvent(out io.Writer, timestamp time.Time, mockFd FD, op MockFdOp, data []byte) error {
	direction := dirWrite
	if mockFd == FD_STDIN {
		direction = dirRead
	}

	header := event{
		Operation:    int32(op),
		Size:         int32(len(data)),
		Direction:    int32(direction),
		Seconds:      uint32(timestamp.Unix()),
		Microseconds: uint32(timestamp.Nanosecond() / int(time.Microsecond)),
	}

	// Header and payload go out in one write so concurrent sinks can't
	// interleave them.
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return err
	}
	buf.Write(data)

	_, err := out.Write(buf.Bytes())
	return err
}

// NewUMLLogSink creates a LogSink compatible with the user-mode-linux TTY.
func NewUMLLogSink(w io.Writer) LogSink {
	var mu sync.Mutex
	return func(entry *TTYLogEntry) error {
		timestamp := time.UnixMicro(entry.TimestampMicros)

		mu.Lock()
		defer mu.Unlock()
		switch entry.Op {
		case OpWrite:
			return logEvent(w, timestamp, entry.Fd, opWrite, entry.Data)
		case OpClose:
			return logEvent(w, timestamp, entry.Fd, opClose, nil)
		default:
			return fmt.Errorf("unknown event: %d", entry.Op)
		}
	}
}

// UMLLogSource parses log events from a user-mode-linux/Kippo formatted file.
type UMLLogSource struct {
	r io.Reader
}

var _ LogSource = (*UMLLogSource)(nil)

// NewUMLLogSource reads log events from a user-mode-linux/Kippo formatted file.
func NewUMLLogSource(r io.Reader) *UMLLogSource {
	return &UMLLogSource{r: r}
}

// Next gets the next log entry, it returns io.EOF if there are no more.
func (log *UMLLogSource) Next() (*TTYLogEntry, error) {
	eventPtr := &event{}

	for {
		// Read the event's data
		if err := binary.Read(log.r, binary.LittleEndian, eventPtr); err != nil {
			return nil, io.EOF
		}
		buf := &bytes.Buffer{}
		if _, err := io.CopyN(buf, log.r, int64(eventPtr.Size)); err != nil {
			return nil, err
		}

		logTime := int64(eventPtr.Seconds)*int64(time.Second/time.Microsecond) + int64(eventPtr.Microseconds)

		// UML doesn't distinguish between stdout and stderr so we'll report it all
		// as stdout.
		var fd FD = FD_STDOUT
		if MockFdDir(eventPtr.Direction) == dirRead {
			fd = FD_STDIN
		}

		switch MockFdOp(eventPtr.Operation) {
		case opClose:
			return &TTYLogEntry{TimestampMicros: logTime, Op: OpClose, Fd: fd}, nil
		case opWrite:
			return &TTYLogEntry{TimestampMicros: logTime, Op: OpWrite, Fd: fd, Data: buf.Bytes()}, nil
		case opOpen, opExec:
			fallthrough
		default:
			// Skip unknown or non-I/O operations
			continue
		}
	}
}
