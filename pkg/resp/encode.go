package resp

import (
	"io"
	"strconv"
)

// Encode returns the wire form of m.
func Encode(m Message) []byte {
	return AppendMessage(nil, m)
}

// EncodeAll concatenates the wire forms of ms.
func EncodeAll(ms ...Message) []byte {
	var out []byte
	for _, m := range ms {
		out = AppendMessage(out, m)
	}
	return out
}

// WriteMessage writes the wire form of m to w.
func WriteMessage(w io.Writer, m Message) error {
	_, err := w.Write(Encode(m))
	return err
}

// AppendMessage appends the wire form of m to dst. A nil message encodes as
// a null bulk string.
func AppendMessage(dst []byte, m Message) []byte {
	switch v := m.(type) {
	case SimpleString:
		dst = append(dst, '+')
		dst = append(dst, v...)
		return append(dst, '\r', '\n')
	case Error:
		dst = append(dst, '-')
		dst = append(dst, v...)
		return append(dst, '\r', '\n')
	case BulkString:
		dst = appendHeader(dst, '$', len(v))
		dst = append(dst, v...)
		return append(dst, '\r', '\n')
	case Array:
		dst = appendHeader(dst, '*', len(v))
		for _, e := range v {
			dst = AppendMessage(dst, e)
		}
		return dst
	case BinaryPayload:
		dst = appendHeader(dst, '$', len(v))
		return append(dst, v...)
	default:
		return append(dst, "$-1\r\n"...)
	}
}

func appendHeader(dst []byte, tag byte, n int) []byte {
	dst = append(dst, tag)
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, '\r', '\n')
}
