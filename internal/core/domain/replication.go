package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

// ReplIDLength is the length of a replication ID in hex characters.
const ReplIDLength = 40

// Role is the replication role of a node.
type Role int

const (
	// RolePrimary accepts direct writes and serves replicas.
	RolePrimary Role = iota
	// RoleReplica synchronizes from a primary.
	RoleReplica
)

// String returns the role name used in INFO output.
func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "master"
	case RoleReplica:
		return "slave"
	default:
		return "unknown"
	}
}

// ReplicationState is the process-wide replication identity of a node.
//
// The role is fixed at construction. All reads go through Info, which
// returns role, ID and offset from a single critical section.
type ReplicationState struct {
	mu          sync.RWMutex
	role        Role
	primaryHost string
	primaryPort int
	replID      string
	replOffset  int64
}

// ReplicationInfo is a consistent copy of a ReplicationState.
type ReplicationInfo struct {
	Role        Role
	PrimaryHost string
	PrimaryPort int
	ReplID      string
	ReplOffset  int64
}

// NewPrimaryState creates the state of a primary with a random replication ID.
func NewPrimaryState() (*ReplicationState, error) {
	id, err := GenerateReplID()
	if err != nil {
		return nil, err
	}
	return NewPrimaryStateWithID(id), nil
}

// NewPrimaryStateWithID creates the state of a primary with a fixed ID.
func NewPrimaryStateWithID(replID string) *ReplicationState {
	return &ReplicationState{
		role:   RolePrimary,
		replID: replID,
	}
}

// NewReplicaState creates the state of a replica of host:port.
func NewReplicaState(host string, port int) (*ReplicationState, error) {
	id, err := GenerateReplID()
	if err != nil {
		return nil, err
	}
	return &ReplicationState{
		role:        RoleReplica,
		primaryHost: host,
		primaryPort: port,
		replID:      id,
	}, nil
}

// Info returns a consistent copy of the state.
func (s *ReplicationState) Info() ReplicationInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ReplicationInfo{
		Role:        s.role,
		PrimaryHost: s.primaryHost,
		PrimaryPort: s.primaryPort,
		ReplID:      s.replID,
		ReplOffset:  s.replOffset,
	}
}

// Role returns the node role.
func (s *ReplicationState) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// PrimaryAddr returns the primary address for a replica, or "" for a primary.
func (s *ReplicationState) PrimaryAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.role != RoleReplica {
		return ""
	}
	return net.JoinHostPort(s.primaryHost, strconv.Itoa(s.primaryPort))
}

// InfoLines renders the replication section of INFO.
func (i ReplicationInfo) InfoLines() []string {
	if i.Role == RoleReplica {
		return []string{"role:" + i.Role.String()}
	}
	return []string{
		"role:" + i.Role.String(),
		"master_replid:" + i.ReplID,
		"master_repl_offset:" + strconv.FormatInt(i.ReplOffset, 10),
	}
}

// ParseReplicaOf parses a primary address given as "host port" (the Redis
// replicaof form) or "host:port".
func ParseReplicaOf(s string) (string, int, error) {
	s = strings.TrimSpace(s)

	var host, portStr string
	if fields := strings.Fields(s); len(fields) == 2 {
		host, portStr = fields[0], fields[1]
	} else {
		h, p, err := net.SplitHostPort(s)
		if err != nil {
			return "", 0, ErrReplicaOf.WithDetailsf("%q", s).WithCause(err)
		}
		host, portStr = h, p
	}

	if host == "" {
		return "", 0, ErrReplicaOf.WithDetailsf("%q: empty host", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, ErrReplicaOf.WithDetailsf("%q: invalid port", s)
	}
	return host, port, nil
}

// GenerateReplID returns a random 40-character hex replication ID.
func GenerateReplID() (string, error) {
	buf := make([]byte, ReplIDLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
