package resp

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Resp protocol's data types
const (
	RespStatus = '+' // +<string>\r\n
	RespError  = '-' // -<string>\r\n
	RespString = '$' // $<length>\r\n<bytes>\r\n
	RespInt    = ':' // :<number>\r\n
	RespNil    = '_' // _\r\n
	RespBool   = '#' // true: #t\r\n false: #f\r\n
	RespArray  = '*' // *<len>\r\n...
)

// Limits on declared lengths, the same ones redis enforces.
const (
	MaxBulkLen  = 512 * 1024 * 1024
	MaxArrayLen = 1024 * 1024
)

var ErrProtocol = errors.New("ERR protocol error")

// Inline is a request line that was not RESP encoded, like the ones typed
// into a telnet session.
type Inline string

// Read reads one value. Lines that do not start with a RESP type are
// returned as Inline.
func Read(r *bufio.Reader) (any, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return Inline(""), nil
	}

	switch line[0] {
	case RespNil:
		return nil, nil
	case RespBool:
		return len(line) > 1 && line[1] == 't', nil
	case RespInt:
		n, err := strconv.Atoi(line[1:])
		if err != nil {
			return nil, errors.Wrap(ErrProtocol, "invalid integer")
		}
		return n, nil
	case RespStatus:
		return SimpleString(line[1:]), nil
	case RespError:
		return errors.New(line[1:]), nil
	case RespString:
		return readString(r, line)
	case RespArray:
		return readSlice(r, line)
	}

	return Inline(line), nil
}

// ReadRequest reads one command sent by a client, either as an array of
// bulk strings or as an inline line. Inline lines are returned unsplit in
// the second result. Only '*' starts a RESP request, any other line is
// inline.
func ReadRequest(r *bufio.Reader) ([]string, Inline, error) {
	b, err := r.Peek(1)
	if err != nil {
		return nil, "", err
	}
	if b[0] != RespArray {
		line, err := readLine(r)
		if err != nil {
			return nil, "", err
		}
		return nil, Inline(line), nil
	}

	v, err := Read(r)
	if err != nil {
		return nil, "", err
	}

	switch v := v.(type) {
	case Inline:
		return nil, v, nil
	case []any:
		args := make([]string, len(v))
		for i, el := range v {
			s, ok := el.(string)
			if !ok {
				return nil, "", errors.Wrap(ErrProtocol, "expected bulk string arguments")
			}
			args[i] = s
		}
		return args, "", nil
	}

	return nil, "", errors.Wrap(ErrProtocol, "expected an array of bulk strings")
}

// readLine reads up to the next line break, which is stripped. A last line
// without a line break is returned as is.
func readLine(r *bufio.Reader) (string, error) {
	l, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || l == "") {
		return "", err
	}
	return strings.TrimRight(l, "\r\n"), nil
}

func readString(r *bufio.Reader, line string) (any, error) {
	n, err := replyLen(line, MaxBulkLen)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}

	b := make([]byte, n+2)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	if b[n] != '\r' || b[n+1] != '\n' {
		return nil, errors.Wrap(ErrProtocol, "bulk string not terminated")
	}

	return string(b[:n]), nil
}

func readSlice(r *bufio.Reader, line string) (any, error) {
	n, err := replyLen(line, MaxArrayLen)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}

	arr := make([]any, n)
	for i := 0; i < len(arr); i++ {
		v, err := Read(r)
		if err != nil {
			return arr, err
		}

		arr[i] = v
	}

	return arr, nil
}

// replyLen parses the declared length of a string or array. -1 stands for
// nil, anything else outside [0, limit] is rejected.
func replyLen(line string, limit int) (int, error) {
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < -1 || n > limit {
		return 0, errors.Wrapf(ErrProtocol, "invalid length '%s'", line[1:])
	}

	return n, nil
}
