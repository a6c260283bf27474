package resp

// Message is a single RESP frame. The concrete types below are the only
// implementations; a Message is never mutated after construction.
type Message interface {
	isMessage()
}

// SimpleString is a "+" frame. The text must not contain CR or LF.
type SimpleString string

// Error is a "-" frame carrying an error reply such as "ERR syntax error".
type Error string

// BulkString is a length-prefixed "$" frame.
type BulkString string

// NullBulkString is the "$-1" frame used for absent values.
type NullBulkString struct{}

// Array is a "*" frame holding an ordered sequence of messages.
type Array []Message

// BinaryPayload is a length-prefixed blob written without a trailing CRLF.
// It frames opaque data (e.g. a snapshot) inline in a reply stream and is
// never produced by Decode.
type BinaryPayload []byte

func (SimpleString) isMessage()   {}
func (Error) isMessage()          {}
func (BulkString) isMessage()     {}
func (NullBulkString) isMessage() {}
func (Array) isMessage()          {}
func (BinaryPayload) isMessage()  {}

// Null is the shared null bulk string value.
var Null = NullBulkString{}

// Command builds a request array of bulk strings, the shape clients use to
// send commands.
func Command(args ...string) Array {
	out := make(Array, len(args))
	for i, a := range args {
		out[i] = BulkString(a)
	}
	return out
}

// Text returns the text of a simple or bulk string.
func Text(m Message) (string, bool) {
	switch v := m.(type) {
	case SimpleString:
		return string(v), true
	case BulkString:
		return string(v), true
	default:
		return "", false
	}
}

// TypeName returns a short human-readable name of the frame type.
func TypeName(m Message) string {
	switch m.(type) {
	case SimpleString:
		return "simple string"
	case Error:
		return "error"
	case BulkString:
		return "bulk string"
	case NullBulkString:
		return "null bulk string"
	case Array:
		return "array"
	case BinaryPayload:
		return "binary payload"
	case nil:
		return "nil"
	default:
		return "unknown"
	}
}
