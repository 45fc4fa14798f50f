package command

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

func ErrUnknownCmd(cmd string) error {
	return fmt.Errorf("ERR unknown command '%s'", cmd)
}

func ErrInvalidNArg(cmd string) error {
	return fmt.Errorf("ERR invalid number of arguments for command '%s'", cmd)
}

var ErrNotInt = errors.New("ERR value is not an integer or out of range")
var ErrUnbalancedQuotes = errors.New("ERR unbalanced quotes")
var ErrEmpty = errors.New("ERR empty command")

type CommandType = byte

const (
	// Server commands
	CmdVersion CommandType = iota
	CmdPing
	CmdKeys
	CmdFlushAll
	// Lifecycle
	CmdNew
	CmdFree
	// Edge operations
	CmdInsertHead
	CmdInsertTail
	CmdRemoveHead
	CmdRemoveTail
	CmdSize
	// Transforms
	CmdDeleteMid
	CmdDeleteDup
	CmdSwap
	CmdReverse
	CmdSort
	CmdShow
)

type Command struct {
	Kind   CommandType
	Name   string
	Key    string
	Values []string

	BufSize int // rh, rt
}

// Mutates reports whether the command changes the state of a queue.
func (c *Command) Mutates() bool {
	switch c.Kind {
	case CmdVersion, CmdPing, CmdKeys, CmdSize, CmdShow:
		return false
	}
	return true
}

func ParseCommand(message string) (*Command, error) {
	split, err := Sanitize(message)
	if err != nil {
		return nil, err
	}
	return Parse(split)
}

// Parse builds a command out of an already split request.
func Parse(split []string) (*Command, error) {
	argc := len(split)
	if argc == 0 {
		return nil, ErrEmpty
	}

	cmd := strings.ToLower(split[0])
	switch cmd {
	case "version":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdVersion, Name: cmd}, nil
	case "ping":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdPing, Name: cmd}, nil
	case "keys":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdKeys, Name: cmd}, nil
	case "flushall":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdFlushAll, Name: cmd}, nil
	case "new":
		return keyOnly(CmdNew, cmd, split)
	case "free":
		return keyOnly(CmdFree, cmd, split)
	case "ih", "it":
		if argc < 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		kind := CmdInsertHead
		if cmd == "it" {
			kind = CmdInsertTail
		}
		return &Command{Kind: kind, Name: cmd, Key: split[1], Values: split[2:]}, nil
	case "rh", "rt":
		if argc < 2 || argc > 3 {
			return nil, ErrInvalidNArg(cmd)
		}
		kind := CmdRemoveHead
		if cmd == "rt" {
			kind = CmdRemoveTail
		}
		remove := &Command{Kind: kind, Name: cmd, Key: split[1]}
		if argc == 3 {
			size, err := strconv.Atoi(split[2])
			if err != nil || size < 0 {
				return nil, ErrNotInt
			}
			remove.BufSize = size
		}
		return remove, nil
	case "size":
		return keyOnly(CmdSize, cmd, split)
	case "dm":
		return keyOnly(CmdDeleteMid, cmd, split)
	case "dedup":
		return keyOnly(CmdDeleteDup, cmd, split)
	case "swap":
		return keyOnly(CmdSwap, cmd, split)
	case "reverse":
		return keyOnly(CmdReverse, cmd, split)
	case "sort":
		return keyOnly(CmdSort, cmd, split)
	case "show":
		return keyOnly(CmdShow, cmd, split)
	}

	return nil, ErrUnknownCmd(cmd)
}

func keyOnly(kind CommandType, cmd string, split []string) (*Command, error) {
	if len(split) != 2 {
		return nil, ErrInvalidNArg(cmd)
	}
	return &Command{Kind: kind, Name: cmd, Key: split[1]}, nil
}

func isWhitespace(b byte) bool {
	return unicode.IsSpace(rune(b))
}

// Sanitize splits a message into words. Single or double quotes group
// words containing whitespace.
func Sanitize(message string) ([]string, error) {
	out := []string{}
	i := 0

	for i < len(message) {
		c := message[i]
		if isWhitespace(c) {
			i++
			continue
		}

		if c == '"' || c == '\'' {
			term := c
			i++
			start := i
			for i < len(message) && message[i] != term {
				i++
			}
			if i == len(message) {
				return nil, ErrUnbalancedQuotes
			}

			out = append(out, message[start:i])
			i++
			continue
		}

		start := i
		for i < len(message) && !isWhitespace(message[i]) {
			i++
		}
		out = append(out, message[start:i])
	}

	return out, nil
}
