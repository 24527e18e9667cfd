// Package client implements the interactive terminal that talks to an rshd
// server.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/abiosoft/readline"
)

const (
	// ExitCommand ends the client after its reply is printed.
	ExitCommand = "exit"

	// DefaultBufferSize matches the server's default read size.
	DefaultBufferSize = 1024
)

var (
	ErrInvalidPort    = errors.New("invalid port number")
	ErrInvalidAddress = errors.New("invalid server address")
)

// ParsePort parses a decimal TCP port in the range 1..65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil || port == 0 {
		return 0, ErrInvalidPort
	}
	return int(port), nil
}

// ParseAddress parses a literal IPv4 or IPv6 server address.
func ParseAddress(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, ErrInvalidAddress
	}
	return ip, nil
}

// LineReader supplies lines typed by the user without their trailing newline.
// *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
}

// Client is a connection to a server.
type Client struct {
	conn       net.Conn
	bufferSize int
}

// Dial connects to the server at ip:port.
func Dial(ctx context.Context, ip net.IP, port int) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip.String(), strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("connect failed: %w", err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, bufferSize: DefaultBufferSize}
}

// Send writes one line to the server and returns the single reply chunk.
func (c *Client) Send(line string) (string, error) {
	if _, err := io.WriteString(c.conn, line); err != nil {
		return "", err
	}

	buf := make([]byte, c.bufferSize-1)
	n, err := c.conn.Read(buf)
	if n > 0 {
		return string(buf[:n]), nil
	}
	return "", err
}

// Interact forwards lines to the server and prints every reply to out until
// the user types exit, input ends, or the server hangs up.
func (c *Client) Interact(lines LineReader, out io.Writer) error {
	for {
		line, err := lines.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		reply, err := c.Send(line + "\n")
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		fmt.Fprint(out, reply)

		if line == ExitCommand {
			return nil
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
