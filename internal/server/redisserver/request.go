package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/replikv/pkg/resp"
)

// MaxInlineLen limits the length of an inline command line.
const MaxInlineLen = 64 * 1024

// readRequest reads one request. RESP frames are decoded as-is; any other
// leading byte starts an inline command, which is split on whitespace into
// a request array. A blank inline line yields a nil message.
func readRequest(r *bufio.Reader) (resp.Message, error) {
	b, err := r.Peek(1)
	if err != nil {
		return nil, err
	}

	switch b[0] {
	case '*', '$', '+', '-':
		return resp.ReadMessage(r)
	default:
		line, err := readInlineLine(r, MaxInlineLen)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, nil
		}
		return resp.Command(fields...), nil
	}
}

func readInlineLine(r *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		if err == nil {
			buf = append(buf, frag...)
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, frag...)
			if len(buf) > maxLen {
				return "", fmt.Errorf("%w: inline command exceeds %d bytes", resp.ErrLimitExceeded, maxLen)
			}
			continue
		}
		if len(buf)+len(frag) > 0 {
			return "", resp.ErrTruncated
		}
		return "", err
	}

	if len(buf) > maxLen {
		return "", fmt.Errorf("%w: inline command exceeds %d bytes", resp.ErrLimitExceeded, maxLen)
	}
	// Bare LF is accepted, as telnet-style clients send it.
	buf = bytes.TrimSuffix(buf, []byte("\n"))
	buf = bytes.TrimSuffix(buf, []byte("\r"))
	return string(buf), nil
}
