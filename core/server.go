package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/josephlewis42/rshd/core/config"
	"github.com/josephlewis42/rshd/core/logger"
	"github.com/josephlewis42/rshd/core/ttylog"
	"github.com/juju/ratelimit"
	log "github.com/sirupsen/logrus"
)

// ErrServerClosed is returned by Serve once the shutdown flag stops it.
var ErrServerClosed = errors.New("rshd: server closed")

// Server accepts clients one at a time and runs a Session for each.
type Server struct {
	configuration *config.Configuration
	shutdown      *Shutdown
	events        *logger.Logger
	workdir       Workdir
	tokenizer     *Tokenizer
	executor      *Executor
}

// NewServer creates a server. Events are recorded to events, and shutdown
// is the flag that stops it.
func NewServer(configuration *config.Configuration, events *logger.Logger, shutdown *Shutdown) (*Server, error) {
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	if events == nil {
		events = logger.NewNopLogger()
	}
	if shutdown == nil {
		shutdown = NewShutdown()
	}

	workdir := ProcessWorkdir{}
	return &Server{
		configuration: configuration,
		shutdown:      shutdown,
		events:        events,
		workdir:       workdir,
		tokenizer: &Tokenizer{
			MaxArgs: configuration.MaxArgs,
			Mode:    configuration.Tokenizer,
		},
		executor: &Executor{
			BufferSize: configuration.BufferSize,
			Timeout:    configuration.CommandTimeout(),
			Workdir:    workdir,
		},
	}, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.configuration.ListenAddress, strconv.Itoa(s.configuration.Port))
}

// Shutdown returns the flag that stops the server.
func (s *Server) Shutdown() *Shutdown {
	return s.shutdown
}

// ListenAndServe listens on Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and handles them one at a time until the
// shutdown flag is stopped. It always closes ln and returns ErrServerClosed
// after a shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	// Closing the listener is what gets a blocked Accept to notice the flag.
	serveDone := make(chan struct{})
	defer close(serveDone)
	go func() {
		select {
		case <-s.shutdown.Done():
			ln.Close()
		case <-serveDone:
		}
	}()

	log.Infof("Server listening on %s...", ln.Addr())

	for !s.shutdown.Stopped() {
		conn, err := ln.Accept()
		if err != nil {
			if s.shutdown.Stopped() {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.WithError(err).Warn("accept failed")
			continue
		}

		log.WithField("remote_addr", conn.RemoteAddr()).Info("Client connected")
		s.HandleConnection(ctx, conn)
		log.WithField("remote_addr", conn.RemoteAddr()).Info("Client disconnected")
	}

	s.events.Sessionless().Record(&logger.Shutdown{Reason: "stopped"})
	return ErrServerClosed
}

// HandleConnection runs a session on conn until it ends, then closes conn.
func (s *Server) HandleConnection(ctx context.Context, conn net.Conn) string {
	sessionLogger := s.events.NewSession()
	connect := &logger.Connect{RemoteAddr: conn.RemoteAddr().String()}

	if s.configuration.RecordSessions {
		logFileName := fmt.Sprintf("%s-%s.log", time.Now().UTC().Format("20060102T150405Z"), sessionLogger.SessionID())
		logFd, err := s.configuration.CreateSessionLog(logFileName)
		if err != nil {
			log.WithError(err).Warn("couldn't create session log")
		} else {
			defer logFd.Close()
			conn = RecordConn(conn, ttylog.NewUMLLogSink(logFd))
			connect.TTYLog = logFileName
		}
	}
	defer conn.Close()

	sessionLogger.Record(connect)

	session := s.newSession(conn, sessionLogger)
	reason := session.Run(ctx)

	sessionLogger.Record(&logger.Disconnect{Reason: reason, Commands: session.Commands()})
	return reason
}

func (s *Server) newSession(conn net.Conn, events *logger.SessionLogger) *Session {
	var out io.Writer = conn
	if rate := s.configuration.ResponseRateLimit; rate > 0 {
		out = ratelimit.Writer(conn, ratelimit.NewBucketWithRate(float64(rate), rate))
	}

	return &Session{
		conn:        conn,
		out:         out,
		shutdown:    s.shutdown,
		workdir:     s.workdir,
		tokenizer:   s.tokenizer,
		executor:    s.executor,
		events:      events,
		bufferSize:  s.configuration.BufferSize,
		readTimeout: s.configuration.ReadTimeout(),
	}
}
