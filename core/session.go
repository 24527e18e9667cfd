package core

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/josephlewis42/rshd/core/logger"
	log "github.com/sirupsen/logrus"
)

// Reasons a session ended.
const (
	ReasonDisconnect  = "disconnect"
	ReasonShutdown    = "shutdown"
	ReasonReadTimeout = "read timeout"
	ReasonWriteError  = "write error"
	ReasonNoDeadline  = "deadline error"
)

// Session serves commands for one client connection.
type Session struct {
	conn      net.Conn
	out       io.Writer
	shutdown  *Shutdown
	workdir   Workdir
	tokenizer *Tokenizer
	executor  *Executor
	events    *logger.SessionLogger

	bufferSize  int
	readTimeout time.Duration
	commands    int
}

// Shutdown returns the server wide stop flag.
func (s *Session) Shutdown() *Shutdown {
	return s.shutdown
}

// Workdir returns the directory shared by builtins and external commands.
func (s *Session) Workdir() Workdir {
	return s.workdir
}

// Commands is the number of commands dispatched so far.
func (s *Session) Commands() int {
	return s.commands
}

// respond sends one response, cut down to the buffer capacity.
func (s *Session) respond(p []byte) error {
	if limit := s.bufferSize - 1; len(p) > limit {
		p = p[:limit]
	}
	_, err := s.out.Write(p)
	return err
}

// Run reads and dispatches commands until the client goes away or the
// server is stopped. It returns the reason the session ended.
func (s *Session) Run(ctx context.Context) string {
	buf := make([]byte, s.bufferSize-1)

	for {
		// The flag is only checked between commands, a read already blocked
		// here finishes first.
		if s.shutdown.Stopped() {
			return ReasonShutdown
		}

		if s.readTimeout > 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
				log.WithError(err).Warn("couldn't set read deadline")
				return ReasonNoDeadline
			}
		}
		n, err := s.conn.Read(buf)
		if n <= 0 {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return ReasonReadTimeout
			}
			return ReasonDisconnect
		}

		if err := s.dispatch(ctx, string(buf[:n])); err != nil {
			log.WithError(err).Warn("couldn't send response")
			return ReasonWriteError
		}
	}
}

// dispatch runs a single command line and writes its response.
func (s *Session) dispatch(ctx context.Context, line string) error {
	s.commands++

	args, err := s.tokenizer.Tokenize(line)
	if err != nil {
		s.events.Record(&logger.RunCommand{ExitCode: -1, Error: err.Error()})
		return s.respond([]byte(MsgSyntaxError))
	}

	if handled, err := RunBuiltin(s, args); handled {
		s.events.Record(&logger.RunCommand{Command: args, Builtin: true})
		return err
	}

	result := s.executor.Execute(ctx, args)
	event := &logger.RunCommand{
		Command:   args,
		ExitCode:  result.ExitCode,
		Truncated: result.Truncated,
	}
	if result.Err != nil {
		event.Error = result.Err.Error()
	}
	s.events.Record(event)

	return s.respond(result.Output)
}
