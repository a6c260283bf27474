// Package redisserver serves the replikv command set over TCP using RESP2.
//
// Each accepted connection gets its own goroutine, which reads one request,
// runs it through the command executor, and writes the replies before
// reading the next. Requests are RESP arrays or inline commands
// ("PING\r\n").
//
// Command errors are answered with "-ERR ..." and the connection stays
// open. Malformed input is answered the same way, after which the
// connection is closed because the stream position is unknown.
package redisserver
