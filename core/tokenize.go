package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
)

const (
	// TokenizeWhitespace splits only on whitespace, quotes are literal.
	TokenizeWhitespace = "whitespace"
	// TokenizeShell honours shell quoting and escapes.
	TokenizeShell = "shell"
)

// ErrSyntax is returned when a line can't be split in shell mode.
var ErrSyntax = errors.New("syntax error")

// Args is the argument list produced from one command line. The first
// element is the command name, an empty list means no command was given.
type Args []string

// Name returns the command name or "" if the list is empty.
func (a Args) Name() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// Tokenizer splits command lines into argument lists.
type Tokenizer struct {
	// MaxArgs bounds the list. It counts a terminator slot, so at most
	// MaxArgs-1 tokens are kept and the rest of the line is dropped.
	MaxArgs int
	// Mode is TokenizeWhitespace or TokenizeShell.
	Mode string
}

// Tokenize splits line into an Args list.
func (t *Tokenizer) Tokenize(line string) (Args, error) {
	var tokens []string
	switch t.Mode {
	case TokenizeShell:
		split, err := shlex.Split(line, true)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		tokens = split
	case TokenizeWhitespace, "":
		tokens = strings.FieldsFunc(line, isSeparator)
	default:
		return nil, fmt.Errorf("unknown tokenizer mode %q", t.Mode)
	}

	if limit := t.MaxArgs - 1; limit >= 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}

	if tokens == nil {
		return Args{}, nil
	}
	return Args(tokens), nil
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}
