// Package buildinfo exposes the version of the replikv binaries.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/replikv/internal/infra/buildinfo.Version=v0.1.0"
//
// When Commit is not injected it falls back to the VCS revision recorded
// by the Go toolchain, if any.
package buildinfo
