package core

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Responses sent to the client when a command can't produce output.
const (
	MsgNoCommand   = "Error: No command provided.\n"
	MsgPipeFailed  = "Error: Failed to create pipe.\n"
	MsgForkFailed  = "Error: Failed to fork.\n"
	MsgExecFailed  = "Error: Command failed to execute.\n"
	MsgSyntaxError = "Error: Syntax error.\n"
)

// DefaultBufferSize is the reference size of command lines and responses.
const DefaultBufferSize = 1024

// waitDelay bounds how long Wait lingers after a timeout kill.
const waitDelay = time.Second

// Result is the outcome of running one external command.
type Result struct {
	// Output is the response for the client.
	Output []byte
	// ExitCode of the process, -1 if it never ran or was killed by a signal.
	ExitCode int
	// Truncated is set if the capture buffer filled up.
	Truncated bool
	// Err holds the underlying failure, if any. It is never sent to the
	// client.
	Err error
}

// Executor runs external programs and captures their combined output.
type Executor struct {
	// BufferSize is the response capacity. At most BufferSize-1 bytes are
	// captured.
	BufferSize int
	// Timeout kills the process after the given duration, zero disables it.
	Timeout time.Duration
	// Workdir is the directory commands start in, nil uses the process's.
	Workdir Workdir

	// pipe and start are swapped in tests.
	pipe  func() (*os.File, *os.File, error)
	start func(*exec.Cmd) error
}

func (e *Executor) capacity() int {
	size := e.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	return size - 1
}

// Execute runs args[0] found on the PATH with the remaining args. It blocks
// until the process exits.
func (e *Executor) Execute(ctx context.Context, args Args) *Result {
	if len(args) == 0 {
		return failed(MsgNoCommand, nil)
	}

	pipe := e.pipe
	if pipe == nil {
		pipe = os.Pipe
	}
	// Both ends are opened close-on-exec. The child only gets the write end
	// as its stdout and stderr.
	readEnd, writeEnd, err := pipe()
	if err != nil {
		return failed(MsgPipeFailed, err)
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = writeEnd
	cmd.Stderr = writeEnd
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)
	if e.Workdir != nil {
		if dir, err := e.Workdir.Getwd(); err == nil {
			cmd.Dir = dir
		}
	}

	start := e.start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	startErr := start(cmd)
	writeEnd.Close()
	if startErr != nil {
		readEnd.Close()
		if isExecFailure(startErr) {
			return failed(MsgExecFailed, startErr)
		}
		return failed(MsgForkFailed, startErr)
	}

	// One spare byte tells a full buffer apart from output that was cut off.
	capacity := e.capacity()
	buf := make([]byte, capacity+1)
	n, _ := io.ReadFull(readEnd, buf)
	truncated := n > capacity
	if truncated {
		n = capacity
	}
	readEnd.Close()

	// Wait even when the buffer filled first, a writer still blocked on the
	// pipe gets EPIPE or SIGPIPE now that the read end is closed.
	waitErr := cmd.Wait()
	if cmd.ProcessState == nil {
		return failed(MsgExecFailed, waitErr)
	}

	result := &Result{
		Output:    buf[:n],
		ExitCode:  cmd.ProcessState.ExitCode(),
		Truncated: truncated,
	}

	// Only a normal non-zero exit hides the output, a process killed by a
	// signal keeps whatever it wrote.
	if cmd.ProcessState.Exited() && cmd.ProcessState.ExitCode() != 0 {
		result.Output = []byte(MsgExecFailed)
		result.Truncated = false
		result.Err = waitErr
	}

	return result
}

func failed(msg string, err error) *Result {
	return &Result{Output: []byte(msg), ExitCode: -1, Err: err}
}

// isExecFailure reports whether err means the program itself couldn't be
// run, as opposed to the system failing to create a process.
func isExecFailure(err error) bool {
	switch {
	case errors.Is(err, exec.ErrNotFound),
		errors.Is(err, exec.ErrDot),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, syscall.ENOEXEC),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.EISDIR):
		return true
	}
	return false
}
