package config

import (
	"fmt"

	"github.com/yndnr/replikv/internal/core/domain"
)

// ToReplicationState builds the startup replication state: a primary with a
// fresh replication ID, or a replica of replication.replicaof.
func ToReplicationState(cfg *ServerConfig) (*domain.ReplicationState, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config is nil")
	}

	if cfg.Replication.ReplicaOf == "" {
		state, err := domain.NewPrimaryState()
		if err != nil {
			return nil, fmt.Errorf("create primary state: %w", err)
		}
		return state, nil
	}

	host, port, err := domain.ParseReplicaOf(cfg.Replication.ReplicaOf)
	if err != nil {
		return nil, err
	}
	state, err := domain.NewReplicaState(host, port)
	if err != nil {
		return nil, fmt.Errorf("create replica state: %w", err)
	}
	return state, nil
}
