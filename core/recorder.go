package core

import (
	"net"
	"sync"
	"time"

	"github.com/josephlewis42/rshd/core/ttylog"
	log "github.com/sirupsen/logrus"
)

// Recorder wraps a client connection and logs everything read from and
// written to it.
type Recorder struct {
	net.Conn
	output    ttylog.LogSink
	closeOnce sync.Once
}

var _ net.Conn = (*Recorder)(nil)

// RecordConn logs all traffic on conn to output.
func RecordConn(conn net.Conn, output ttylog.LogSink) *Recorder {
	return &Recorder{Conn: conn, output: output}
}

func (r *Recorder) record(fd ttylog.FD, op ttylog.Op, data []byte) {
	// The sink may hold on to the entry, so it gets its own copy.
	entry := &ttylog.TTYLogEntry{
		TimestampMicros: time.Now().UnixMicro(),
		Op:              op,
		Fd:              fd,
		Data:            append([]byte(nil), data...),
	}
	if err := r.output(entry); err != nil {
		log.WithError(err).Warn("couldn't record session I/O")
	}
}

// Read implements net.Conn.
func (r *Recorder) Read(p []byte) (int, error) {
	n, err := r.Conn.Read(p)
	if n > 0 {
		r.record(ttylog.FD_STDIN, ttylog.OpWrite, p[:n])
	}
	return n, err
}

// Write implements net.Conn.
func (r *Recorder) Write(p []byte) (int, error) {
	n, err := r.Conn.Write(p)
	if n > 0 {
		r.record(ttylog.FD_STDOUT, ttylog.OpWrite, p[:n])
	}
	return n, err
}

// Close implements net.Conn.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.record(ttylog.FD_STDOUT, ttylog.OpClose, nil)
	})
	return r.Conn.Close()
}
