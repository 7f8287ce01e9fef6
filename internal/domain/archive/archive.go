// Package archive defines the archival collaborator for soft-deleted ledger records.
//
// On any soft delete the core hands the pre-delete snapshot, actor and reason
// to an external sink inside the same transaction. The archive's query/browse
// surface is out of scope.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dukkan/internal/core/id"
)

// Snapshot is the pre-delete state of a ledger record.
type Snapshot struct {
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	State      json.RawMessage `db:"state" json:"state"`
	Actor      string          `db:"actor" json:"actor"`
	Reason     string          `db:"reason" json:"reason"`
	DeletedAt  time.Time       `db:"deleted_at" json:"deletedAt"`
}

// Sink receives snapshots of soft-deleted records.
// Implementations must participate in the ambient transaction so the snapshot
// and the deletion mark commit or roll back together.
type Sink interface {
	Archive(ctx context.Context, snapshot Snapshot) error
}

// Take serializes a record into a Snapshot.
func Take(entityType string, entityID id.ID, state any, actor, reason string) (Snapshot, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal %s snapshot: %w", entityType, err)
	}
	return Snapshot{
		EntityType: entityType,
		EntityID:   entityID,
		State:      raw,
		Actor:      actor,
		Reason:     reason,
		DeletedAt:  time.Now().UTC(),
	}, nil
}
