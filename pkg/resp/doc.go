// Package resp implements the RESP2 wire codec used by replikv.
//
// Supported frames:
//
//   - Simple string:   +<text>\r\n
//   - Error:           -<text>\r\n
//   - Bulk string:     $<len>\r\n<bytes>\r\n
//   - Null bulk:       $-1\r\n
//   - Array:           *<count>\r\n<elements...>
//   - Binary payload:  $<len>\r\n<raw bytes>   (no trailing CRLF, reply-only)
//
// Decode and DecodePrefix work on a complete buffer and fail with
// ErrTruncated instead of blocking; ReadMessage is the streaming form for
// connection loops.
//
// Usage:
//
//	b := resp.Encode(resp.Command("SET", "k", "v"))
//	msg, err := resp.Decode(b)
package resp
