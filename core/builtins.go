package core

import (
	"sort"
	"strings"
)

// AllBuiltins holds the commands that run inside the server process.
var AllBuiltins = make(map[string]ShellBuiltin)

// ShellBuiltin computes the response of an in-process command.
type ShellBuiltin interface {
	Main(s *Session, args Args) string
}

// ShellBuiltinFunc adapts a function to a ShellBuiltin.
type ShellBuiltinFunc func(s *Session, args Args) string

// Main implements ShellBuiltin.
func (f ShellBuiltinFunc) Main(s *Session, args Args) string {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinHelp describes a builtin for listings.
type BuiltinHelp struct {
	Name  string
	Usage string
	Short string
}

var builtinHelp = map[string]BuiltinHelp{}

func addBuiltin(help BuiltinHelp, fn ShellBuiltinFunc) {
	AllBuiltins[help.Name] = fn
	builtinHelp[help.Name] = help
}

// ListBuiltins returns help for every builtin sorted by name.
func ListBuiltins() []BuiltinHelp {
	var out []BuiltinHelp
	for _, h := range builtinHelp {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsBuiltin reports whether args names a builtin. Matching is exact on the
// first argument.
func IsBuiltin(args Args) bool {
	if len(args) == 0 {
		return false
	}
	_, ok := AllBuiltins[args[0]]
	return ok
}

// RunBuiltin runs the builtin named by args and writes its response to the
// client. It reports false if args doesn't name a builtin.
func RunBuiltin(s *Session, args Args) (bool, error) {
	if !IsBuiltin(args) {
		return false, nil
	}
	out := AllBuiltins[args[0]].Main(s, args)
	return true, s.respond([]byte(out))
}

// Cd changes the shared working directory.
func Cd(s *Session, args Args) string {
	if len(args) < 2 {
		return "cd: No specified directory\n"
	}
	if err := s.Workdir().Chdir(args[1]); err != nil {
		return "cd: No such directory\n"
	}
	return "Changed directory to " + args[1] + "\n"
}

// Pwd prints the shared working directory.
func Pwd(s *Session, args Args) string {
	wd, err := s.Workdir().Getwd()
	if err != nil {
		return "pwd: Error getting current directory\n"
	}
	return wd + "\n"
}

// Echo writes every argument followed by a space, then a newline.
func Echo(s *Session, args Args) string {
	var sb strings.Builder
	for _, arg := range args[1:] {
		sb.WriteString(arg)
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Exit stops the server. The session ends at its next loop check.
func Exit(s *Session, args Args) string {
	s.Shutdown().Stop()
	return "Exiting shell...\n"
}

func init() {
	addBuiltin(BuiltinHelp{"cd", "cd DIR", "Change the server's working directory."}, Cd)
	addBuiltin(BuiltinHelp{"pwd", "pwd", "Print the server's working directory."}, Pwd)
	addBuiltin(BuiltinHelp{"echo", "echo [ARG]...", "Display a line of text."}, Echo)
	addBuiltin(BuiltinHelp{"exit", "exit", "End the session and shut the server down."}, Exit)
}
