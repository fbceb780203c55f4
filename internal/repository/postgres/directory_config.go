package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/jackc/pgx/v5"
)

// DirectoryConfigRepository handles directory sync configuration storage
type DirectoryConfigRepository struct {
	db *DB
}

// NewDirectoryConfigRepository creates a new directory config repository
func NewDirectoryConfigRepository(db *DB) *DirectoryConfigRepository {
	return &DirectoryConfigRepository{db: db}
}

// Get retrieves the directory configuration, or nil when none is saved
func (r *DirectoryConfigRepository) Get(ctx context.Context) (*domain.DirectoryConfig, error) {
	query := `
		SELECT id, tenant_id, client_id, client_secret_enc, scopes, sync_interval_minutes,
		       mapping_prefix, mapping_regex, last_test_at, last_sync_at, last_sync_status
		FROM directory_configs
		ORDER BY created_at ASC
		LIMIT 1
	`

	var cfg domain.DirectoryConfig
	var tenantID, clientID, secretEnc, scopes, prefix, regex, status *string

	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&cfg.ID,
		&tenantID,
		&clientID,
		&secretEnc,
		&scopes,
		&cfg.SyncIntervalMinutes,
		&prefix,
		&regex,
		&cfg.LastTestAt,
		&cfg.LastSyncAt,
		&status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get directory config: %w", err)
	}

	cfg.TenantID = deref(tenantID)
	cfg.ClientID = deref(clientID)
	cfg.ClientSecretEnc = deref(secretEnc)
	cfg.Scopes = deref(scopes)
	cfg.MappingPrefix = deref(prefix)
	cfg.MappingRegex = deref(regex)
	cfg.LastSyncStatus = deref(status)

	return &cfg, nil
}

// Upsert saves the directory configuration, creating the single row on
// first save
func (r *DirectoryConfigRepository) Upsert(ctx context.Context, cfg *domain.DirectoryConfig) error {
	query := `
		INSERT INTO directory_configs (id, tenant_id, client_id, client_secret_enc, scopes,
			sync_interval_minutes, mapping_prefix, mapping_regex, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = $2,
			client_id = $3,
			client_secret_enc = $4,
			scopes = $5,
			sync_interval_minutes = $6,
			mapping_prefix = $7,
			mapping_regex = $8,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query,
		cfg.ID,
		cfg.TenantID,
		cfg.ClientID,
		cfg.ClientSecretEnc,
		cfg.Scopes,
		cfg.SyncIntervalMinutes,
		cfg.MappingPrefix,
		cfg.MappingRegex,
	)
	if err != nil {
		return fmt.Errorf("failed to save directory config: %w", err)
	}
	return nil
}

// RecordSyncStatus persists the outcome of a sync attempt for operator
// visibility. Used both on success and failure.
func (r *DirectoryConfigRepository) RecordSyncStatus(ctx context.Context, tx pgx.Tx, at time.Time, status string) error {
	query := `UPDATE directory_configs SET last_sync_at = $1, last_sync_status = $2`

	var err error
	if tx != nil {
		_, err = tx.Exec(ctx, query, at, status)
	} else {
		_, err = r.db.Pool.Exec(ctx, query, at, status)
	}
	if err != nil {
		return fmt.Errorf("failed to record sync status: %w", err)
	}
	return nil
}

// RecordTestStatus persists the timestamp of a connectivity test, with a
// status string when the test failed
func (r *DirectoryConfigRepository) RecordTestStatus(ctx context.Context, at time.Time, failedStatus string) error {
	var err error
	if failedStatus != "" {
		_, err = r.db.Pool.Exec(ctx,
			`UPDATE directory_configs SET last_test_at = $1, last_sync_status = $2`, at, failedStatus)
	} else {
		_, err = r.db.Pool.Exec(ctx, `UPDATE directory_configs SET last_test_at = $1`, at)
	}
	if err != nil {
		return fmt.Errorf("failed to record test status: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
