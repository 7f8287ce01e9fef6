package postgres

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"dukkan/internal/core/id"
	"dukkan/internal/domain/archive"
)

// CompressionAlgo specifies the compression algorithm used for stored state.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Compile-time check that ArchiveSink implements archive.Sink.
var _ archive.Sink = (*ArchiveSink)(nil)

// ArchiveSink stores pre-delete snapshots of ledger records.
// It writes through the ambient transaction querier so the snapshot commits
// or rolls back together with the deletion mark.
type ArchiveSink struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder

	// compressThreshold in bytes; larger snapshots are stored compressed.
	compressThreshold int
}

// NewArchiveSink creates an archive sink.
func NewArchiveSink(txManager *TxManager) (*ArchiveSink, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &ArchiveSink{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// Archive implements archive.Sink.
func (s *ArchiveSink) Archive(ctx context.Context, snapshot archive.Snapshot) error {
	state := []byte(snapshot.State)
	var stateCompressed []byte
	algo := CompressionNone

	if len(state) > s.compressThreshold {
		stateCompressed = s.encoder.EncodeAll(state, nil)
		state = nil
		algo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_archive (
			id, entity_type, entity_id, state, state_compressed,
			compression_algo, actor, reason, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		id.New(), snapshot.EntityType, snapshot.EntityID,
		state, stateCompressed, algo,
		snapshot.Actor, snapshot.Reason, snapshot.DeletedAt,
	)
	if err != nil {
		return MapError(fmt.Errorf("insert archive snapshot: %w", err))
	}
	return nil
}

// History retrieves archived snapshots for an entity, newest first.
func (s *ArchiveSink) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]archive.Snapshot, error) {
	sql := `
		SELECT entity_type, entity_id, state, state_compressed,
			   compression_algo, actor, reason, deleted_at
		FROM sys_archive
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY deleted_at DESC
		LIMIT $3
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
	if err != nil {
		return nil, MapError(fmt.Errorf("query archive history: %w", err))
	}
	defer rows.Close()

	var snapshots []archive.Snapshot
	for rows.Next() {
		var (
			snap       archive.Snapshot
			state      []byte
			compressed []byte
			algo       CompressionAlgo
		)
		err := rows.Scan(
			&snap.EntityType, &snap.EntityID, &state, &compressed,
			&algo, &snap.Actor, &snap.Reason, &snap.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		if algo == CompressionZstd && len(compressed) > 0 {
			state, err = s.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress snapshot: %w", err)
			}
		}
		snap.State = state

		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}
