package resp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Protocol limits to keep a hostile peer from forcing large allocations.
const (
	// MaxArrayLen limits the number of elements in a RESP array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (64MB).
	MaxBulkLen = 64 * 1024 * 1024

	// MaxLineLen limits simple strings, errors and frame headers.
	MaxLineLen = 64 * 1024

	// MaxDepth limits array nesting.
	MaxDepth = 32
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrTruncated     = fmt.Errorf("%w: truncated message", ErrProtocol)
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Decode decodes the first message in b. Bytes after the message are
// ignored. Input that ends before the message is complete fails with
// ErrTruncated.
func Decode(b []byte) (Message, error) {
	m, _, err := DecodePrefix(b)
	return m, err
}

// DecodePrefix decodes the first message in b and reports how many bytes it
// occupied.
func DecodePrefix(b []byte) (Message, int, error) {
	src := bytes.NewReader(b)
	r := bufio.NewReaderSize(src, 4096)

	m, err := ReadMessage(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrTruncated
		}
		return nil, 0, err
	}

	consumed := len(b) - src.Len() - r.Buffered()
	return m, consumed, nil
}

// ReadMessage reads one message from r. It returns io.EOF only when the
// stream ends cleanly before the first byte of a message; a stream that ends
// mid-message yields ErrTruncated.
func ReadMessage(r *bufio.Reader) (Message, error) {
	if _, err := r.Peek(1); err != nil {
		return nil, err
	}
	m, err := readMessage(r, 0)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, ErrTruncated
	}
	return m, err
}

// ReadBinaryPayload reads a "$<len>\r\n<raw>" frame written for a
// BinaryPayload.
func ReadBinaryPayload(r *bufio.Reader) (BinaryPayload, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, truncated(err)
	}
	if len(line) == 0 || line[0] != '$' {
		return nil, fmt.Errorf("%w: expected binary payload", ErrProtocol)
	}
	n, err := parseLength(line[1:], MaxBulkLen)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: invalid payload length", ErrProtocol)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncated(err)
	}
	return BinaryPayload(buf), nil
}

func readMessage(r *bufio.Reader, depth int) (Message, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrProtocol)
	}

	switch line[0] {
	case '+':
		return SimpleString(line[1:]), nil
	case '-':
		return Error(line[1:]), nil
	case '$':
		return readBulk(r, line[1:])
	case '*':
		return readArray(r, line[1:], depth)
	default:
		return nil, fmt.Errorf("%w: unknown type tag %q", ErrProtocol, line[0])
	}
}

func readBulk(r *bufio.Reader, header []byte) (Message, error) {
	n, err := parseLength(header, MaxBulkLen)
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return Null, nil
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return nil, fmt.Errorf("%w: bulk length %d does not match payload", ErrProtocol, n)
	}
	return BulkString(buf[:n]), nil
}

func readArray(r *bufio.Reader, header []byte, depth int) (Message, error) {
	if depth >= MaxDepth {
		return nil, fmt.Errorf("%w: array nesting exceeds %d", ErrLimitExceeded, MaxDepth)
	}
	n, err := parseLength(header, MaxArrayLen)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: null array not supported", ErrProtocol)
	}

	out := make(Array, 0, n)
	for i := 0; i < n; i++ {
		m, err := readMessage(r, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// readLine reads a CRLF-terminated line and returns it without the CRLF.
func readLine(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		if err == nil {
			buf = append(buf, frag...)
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, frag...)
			if len(buf) > MaxLineLen {
				return nil, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, MaxLineLen)
			}
			continue
		}
		return nil, err
	}

	if len(buf) > MaxLineLen {
		return nil, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, MaxLineLen)
	}
	if len(buf) < 2 || buf[len(buf)-2] != '\r' {
		return nil, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return buf[:len(buf)-2], nil
}

// parseLength parses a frame length. Only plain decimal digits and the
// literal -1 are accepted.
func parseLength(b []byte, limit int) (int, error) {
	if string(b) == "-1" {
		return -1, nil
	}
	if len(b) == 0 || len(b) > 10 {
		return 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, b)
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, b)
		}
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, b)
	}
	if n > limit {
		return 0, fmt.Errorf("%w: length %d exceeds limit %d", ErrLimitExceeded, n, limit)
	}
	return n, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
