package client

import (
	"io"
	"net"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
)

// Prompt is shown before every line of input.
const Prompt = "> "

var (
	colorConnected    = color.New(color.FgGreen, color.Bold)
	colorDisconnected = color.New(color.FgYellow)
)

// NewTerminal creates a line editor reading from in and echoing to out.
func NewTerminal(in io.Reader, out io.Writer) (*readline.Instance, error) {
	cfg := &readline.Config{
		Prompt: Prompt,
		Stdin:  readline.NewCancelableStdin(in),
		Stdout: out,
		Stderr: out,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	return readline.NewEx(cfg)
}

// PrintConnected writes the greeting shown once the connection is up.
func PrintConnected(w io.Writer, ip net.IP, port int) {
	colorConnected.Fprintf(w, "Connected to server %s:%d. Type 'exit' to quit.\n", ip, port)
}

// PrintDisconnected writes the farewell shown after the connection closes.
func PrintDisconnected(w io.Writer) {
	colorDisconnected.Fprintln(w, "Disconnected from server.")
}
