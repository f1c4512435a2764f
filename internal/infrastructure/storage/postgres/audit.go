package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"tokopos/internal/core/id"
	"tokopos/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for a stored
// change payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Compile-time check that AuditRepo implements audit.Recorder.
var _ audit.Recorder = (*AuditRepo)(nil)

// AuditRepo persists audit entries to the audit_log table. Large change
// payloads are stored zstd-compressed.
type AuditRepo struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder

	// compressThreshold in bytes, default 10KB
	compressThreshold int
}

// NewAuditRepo creates the audit repository.
func NewAuditRepo(txManager *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditRepo{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record inserts one audit entry.
func (r *AuditRepo) Record(ctx context.Context, entry audit.Entry) error {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	changes := entry.Changes
	var compressed []byte
	algo := CompressionNone
	if len(changes) > r.compressThreshold {
		compressed = r.encoder.EncodeAll(changes, nil)
		changes = nil
		algo = CompressionZstd
	}

	sql := `
		INSERT INTO audit_log (
			id, entity_type, entity_id, action, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action, entry.UserID,
		changes, compressed, algo, entry.CreatedAt,
	)
	return err
}

// GetEntityHistory retrieves audit history for an entity, newest first.
func (r *AuditRepo) GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	sql := `
		SELECT id, entity_type, entity_id, action, user_id,
			   changes, changes_compressed, compression_algo, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			compressed []byte
			algo       CompressionAlgo
		)
		err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.UserID,
			&e.Changes, &compressed, &algo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if algo == CompressionZstd && len(compressed) > 0 {
			decompressed, err := r.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress changes: %w", err)
			}
			e.Changes = decompressed
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
