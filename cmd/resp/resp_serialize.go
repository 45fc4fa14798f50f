// Serialization of replies following the REdis Serialization Protocol,
// see: https://redis.io/docs/reference/protocol-spec/#resp-protocol-description
package resp

import (
	"fmt"
	"strconv"
	"strings"
)

type SimpleString string

var OK = SimpleString("OK")

// Serialize encodes a reply. Only the RESP2 types are produced so that
// clients which fell back from RESP3 can read every reply.
func Serialize(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return SerializeNil(), nil
	case SimpleString:
		return SerializeSimpleStr(string(v)), nil
	case string:
		return SerializeStr(v), nil
	case int:
		return SerializeInt(v), nil
	case bool:
		if v {
			return SerializeInt(1), nil
		}
		return SerializeInt(0), nil
	case error:
		return SerializeError(v), nil
	case []string:
		var b strings.Builder
		b.WriteString("*" + strconv.Itoa(len(v)) + "\r\n")
		for _, s := range v {
			b.WriteString(SerializeStr(s))
		}
		return b.String(), nil
	case []any:
		var b strings.Builder
		b.WriteString("*" + strconv.Itoa(len(v)) + "\r\n")
		for _, el := range v {
			r, err := Serialize(el)
			if err != nil {
				return "", err
			}
			b.WriteString(r)
		}
		return b.String(), nil
	}

	return "", fmt.Errorf("value of type %T cannot be serialized", v)
}

func SerializeNil() string {
	return "$-1\r\n"
}

func SerializeSimpleStr(str string) string {
	return "+" + str + "\r\n"
}

func SerializeStr(str string) string {
	return "$" + strconv.Itoa(len(str)) + "\r\n" + str + "\r\n"
}

// SerializeError writes err on a single line, replacing line breaks.
func SerializeError(err error) string {
	msg := strings.NewReplacer("\r", " ", "\n", " ").Replace(err.Error())
	return "-" + msg + "\r\n"
}

func SerializeInt(n int) string {
	return ":" + strconv.Itoa(n) + "\r\n"
}

// SerializeCommand encodes a request as an array of bulk strings, the form
// clients send commands in.
func SerializeCommand(args []string) string {
	s, _ := Serialize(args)
	return s
}
