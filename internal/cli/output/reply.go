package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yndnr/replikv/pkg/resp"
)

// FormatReply renders a reply the way redis-cli does in a terminal:
// quoted bulk strings, bare status replies, "(nil)", "(error) ..." and
// numbered array elements.
func FormatReply(m resp.Message) string {
	var b strings.Builder
	writeReply(&b, m, "")
	return b.String()
}

func writeReply(b *strings.Builder, m resp.Message, indent string) {
	switch v := m.(type) {
	case resp.SimpleString:
		b.WriteString(string(v))
	case resp.Error:
		b.WriteString("(error) ")
		b.WriteString(string(v))
	case resp.BulkString:
		b.WriteString(strconv.Quote(string(v)))
	case resp.NullBulkString:
		b.WriteString("(nil)")
	case resp.BinaryPayload:
		fmt.Fprintf(b, "(payload) %d bytes", len(v))
	case resp.Array:
		if len(v) == 0 {
			b.WriteString("(empty array)")
			return
		}
		width := len(strconv.Itoa(len(v)))
		for i, elem := range v {
			if i > 0 {
				b.WriteString("\n")
				b.WriteString(indent)
			}
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			b.WriteString(prefix)
			writeReply(b, elem, indent+strings.Repeat(" ", len(prefix)))
		}
	default:
		fmt.Fprintf(b, "(unknown %T)", m)
	}
}

// ReplyValue converts a reply into plain Go values for JSON and YAML:
// strings, nil, []any, and {"error": msg} for error replies.
func ReplyValue(m resp.Message) any {
	switch v := m.(type) {
	case resp.SimpleString:
		return string(v)
	case resp.BulkString:
		return string(v)
	case resp.Error:
		return map[string]string{"error": string(v)}
	case resp.NullBulkString:
		return nil
	case resp.BinaryPayload:
		return map[string]int{"payload_bytes": len(v)}
	case resp.Array:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = ReplyValue(elem)
		}
		return out
	default:
		return nil
	}
}

// normalize converts RESP replies so encoders see plain values.
func normalize(data any) any {
	if m, ok := data.(resp.Message); ok {
		return ReplyValue(m)
	}
	return data
}
