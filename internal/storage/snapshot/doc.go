// Package snapshot provides the payload a primary sends to a replica after
// a FULLRESYNC reply.
//
// The payload is an RDB file. This server keeps no durable state, so the
// default source serves the canonical empty RDB file:
//
//	[magic:5 "REDIS"][version:4 "0011"]
//	[aux fields ...]
//	[EOF opcode:1 0xFF][checksum:8]
//
// Sources validate the magic and version header at construction so a
// replica never receives bytes it cannot identify.
package snapshot
