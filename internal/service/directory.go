package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/Rrens/deskmap/internal/mapping"
	"github.com/Rrens/deskmap/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrConfigIncomplete means sync cannot run because tenant credentials
// are missing. Surfaced to the admin before any network call.
var ErrConfigIncomplete = errors.New("directory config is incomplete")

// ErrMapNotInitialized means there is no map to assign occupants on.
var ErrMapNotInitialized = errors.New("map not initialized")

const defaultSyncIntervalMinutes = 15

// DirectoryClient is the remote directory API boundary.
type DirectoryClient interface {
	FetchAllUsers(ctx context.Context, settings domain.DirectorySettings, limit int) ([]domain.DirectoryUser, error)
}

// DirectoryConfigRepository is the persisted sync configuration boundary.
type DirectoryConfigRepository interface {
	Get(ctx context.Context) (*domain.DirectoryConfig, error)
	Upsert(ctx context.Context, cfg *domain.DirectoryConfig) error
	RecordSyncStatus(ctx context.Context, tx pgx.Tx, at time.Time, status string) error
	RecordTestStatus(ctx context.Context, at time.Time, failedStatus string) error
}

// UserCacheRepository stores the per-sync directory snapshot.
type UserCacheRepository interface {
	ReplaceAll(ctx context.Context, tx pgx.Tx, users []domain.DirectoryUser, syncedAt time.Time) error
	List(ctx context.Context) ([]domain.DirectoryUser, error)
}

// DirectoryService runs directory syncs and manages their configuration
type DirectoryService struct {
	tx            TxRunner
	client        DirectoryClient
	configRepo    DirectoryConfigRepository
	userCacheRepo UserCacheRepository
	deskRepo      DeskRepository
	mapRepo       MapRepository
	encryptor     *security.Encryptor
	cache         LayoutCache
	broadcaster   Broadcaster
	logger        zerolog.Logger
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(
	tx TxRunner,
	client DirectoryClient,
	configRepo DirectoryConfigRepository,
	userCacheRepo UserCacheRepository,
	deskRepo DeskRepository,
	mapRepo MapRepository,
	encryptor *security.Encryptor,
	cache LayoutCache,
	broadcaster Broadcaster,
	logger zerolog.Logger,
) *DirectoryService {
	return &DirectoryService{
		tx:            tx,
		client:        client,
		configRepo:    configRepo,
		userCacheRepo: userCacheRepo,
		deskRepo:      deskRepo,
		mapRepo:       mapRepo,
		encryptor:     encryptor,
		cache:         cache,
		broadcaster:   broadcaster,
		logger:        logger,
	}
}

// Settings loads and decrypts the directory settings, failing fast when
// the stored config cannot support a sync.
func (s *DirectoryService) Settings(ctx context.Context) (domain.DirectorySettings, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return domain.DirectorySettings{}, fmt.Errorf("failed to load directory config: %w", err)
	}
	if cfg == nil || cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecretEnc == "" {
		return domain.DirectorySettings{}, ErrConfigIncomplete
	}

	secret, err := s.encryptor.DecryptString(cfg.ClientSecretEnc)
	if err != nil {
		return domain.DirectorySettings{}, fmt.Errorf("failed to decrypt client secret: %w", err)
	}

	scopes := cfg.Scopes
	if scopes == "" {
		scopes = domain.DefaultGraphScopes
	}
	prefix := cfg.MappingPrefix
	if prefix == "" {
		prefix = mapping.DefaultPrefix
	}

	return domain.DirectorySettings{
		TenantID:      cfg.TenantID,
		ClientID:      cfg.ClientID,
		ClientSecret:  secret,
		Scopes:        scopes,
		MappingPrefix: prefix,
		MappingRegex:  cfg.MappingRegex,
	}, nil
}

// Sync fetches the full directory, reconciles users onto desks, and
// replaces the occupant state of the whole map in one transaction. The
// user snapshot and the sync status are written in the same transaction.
func (s *DirectoryService) Sync(ctx context.Context) (*domain.SyncResult, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.client.FetchAllUsers(ctx, settings, 0)
	if err != nil {
		s.recordSyncFailure(ctx)
		return nil, fmt.Errorf("failed to fetch directory users: %w", err)
	}

	m, err := s.mapRepo.GetFirst(ctx)
	if err != nil {
		s.recordSyncFailure(ctx)
		return nil, err
	}
	if m == nil {
		return nil, ErrMapNotInitialized
	}

	desks, err := s.deskRepo.ListByMap(ctx, m.ID)
	if err != nil {
		s.recordSyncFailure(ctx)
		return nil, err
	}

	rule := mapping.Rule{Prefix: settings.MappingPrefix, Regex: settings.MappingRegex}
	result := mapping.Reconcile(users, desks, rule)

	now := time.Now()
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.userCacheRepo.ReplaceAll(ctx, tx, users, now); err != nil {
			return err
		}
		if err := s.deskRepo.ClearOccupants(ctx, tx, m.ID); err != nil {
			return err
		}
		for _, a := range result.Assignments {
			if err := s.deskRepo.UpdateOccupant(ctx, tx, a.DeskID, a.FirstName, a.LastName); err != nil {
				return err
			}
		}
		return s.configRepo.RecordSyncStatus(ctx, tx, now, fmt.Sprintf("Synced %d users", len(users)))
	})
	if err != nil {
		s.recordSyncFailure(ctx)
		return nil, fmt.Errorf("failed to apply sync: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, m.ID)
	}
	s.broadcaster.Publish("layout", map[string]string{
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})

	s.logger.Info().
		Int("users", len(users)).
		Int("desks_updated", len(result.Assignments)).
		Int("unmatched_users", result.UnmatchedUsers).
		Msg("Directory sync completed")

	return &domain.SyncResult{
		Users:        len(users),
		DesksUpdated: len(result.Assignments),
	}, nil
}

// TestConnection verifies credentials by fetching a single user
func (s *DirectoryService) TestConnection(ctx context.Context) error {
	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	if _, err := s.client.FetchAllUsers(ctx, settings, 1); err != nil {
		if recordErr := s.configRepo.RecordTestStatus(ctx, now, "Test failed"); recordErr != nil {
			s.logger.Warn().Err(recordErr).Msg("Failed to record test status")
		}
		return fmt.Errorf("connection test failed: %w", err)
	}

	if err := s.configRepo.RecordTestStatus(ctx, now, ""); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record test status")
	}
	return nil
}

// CachedUsers returns the directory snapshot taken on the last sync
func (s *DirectoryService) CachedUsers(ctx context.Context) ([]domain.DirectoryUser, error) {
	return s.userCacheRepo.List(ctx)
}

// GetConfig returns the stored configuration for the admin UI. The
// client secret is never included.
func (s *DirectoryService) GetConfig(ctx context.Context) (*domain.DirectoryConfig, error) {
	return s.configRepo.Get(ctx)
}

// SaveConfig persists the configuration, encrypting the client secret.
// An empty secret in the request keeps the previously stored one.
func (s *DirectoryService) SaveConfig(ctx context.Context, update domain.DirectoryConfigUpdate) (*domain.DirectoryConfig, error) {
	existing, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load directory config: %w", err)
	}

	cfg := &domain.DirectoryConfig{
		TenantID:            update.TenantID,
		ClientID:            update.ClientID,
		Scopes:              update.Scopes,
		SyncIntervalMinutes: update.SyncIntervalMinutes,
		MappingPrefix:       update.MappingPrefix,
		MappingRegex:        update.MappingRegex,
	}
	if cfg.SyncIntervalMinutes <= 0 {
		cfg.SyncIntervalMinutes = defaultSyncIntervalMinutes
	}

	if existing != nil {
		cfg.ID = existing.ID
		cfg.ClientSecretEnc = existing.ClientSecretEnc
	} else {
		cfg.ID = uuid.New()
	}

	if update.ClientSecret != nil && *update.ClientSecret != "" {
		enc, err := s.encryptor.EncryptString(*update.ClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt client secret: %w", err)
		}
		cfg.ClientSecretEnc = enc
	}

	if err := s.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}

	return s.configRepo.Get(ctx)
}

// RunScheduler triggers a sync every configured interval until the
// context is cancelled. Incomplete configuration skips the attempt; a
// failed sync waits for the next tick rather than retrying.
func (s *DirectoryService) RunScheduler(ctx context.Context) {
	for {
		interval := time.Duration(defaultSyncIntervalMinutes) * time.Minute
		if cfg, err := s.configRepo.Get(ctx); err == nil && cfg != nil && cfg.SyncIntervalMinutes > 0 {
			interval = time.Duration(cfg.SyncIntervalMinutes) * time.Minute
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		result, err := s.Sync(ctx)
		switch {
		case errors.Is(err, ErrConfigIncomplete):
			s.logger.Debug().Msg("Scheduled sync skipped: directory config is incomplete")
		case err != nil:
			s.logger.Warn().Err(err).Msg("Scheduled sync failed")
		default:
			s.logger.Info().
				Int("users", result.Users).
				Int("desks_updated", result.DesksUpdated).
				Msg("Scheduled sync completed")
		}
	}
}

func (s *DirectoryService) recordSyncFailure(ctx context.Context) {
	if err := s.configRepo.RecordSyncStatus(ctx, nil, time.Now(), "Sync failed"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record sync status")
	}
}
