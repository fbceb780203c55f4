package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/deskmap/internal/config"
	"github.com/Rrens/deskmap/internal/domain"
	"github.com/Rrens/deskmap/internal/security"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testEncryptor(t *testing.T) *security.Encryptor {
	t.Helper()
	enc, err := security.NewEncryptor([]byte("12345678901234567890123456789012")) // 32 bytes
	require.NoError(t, err)
	return enc
}

func storedConfig(t *testing.T, enc *security.Encryptor) *domain.DirectoryConfig {
	t.Helper()
	secretEnc, err := enc.EncryptString("s3cret")
	require.NoError(t, err)
	return &domain.DirectoryConfig{
		TenantID:            "tenant-1",
		ClientID:            "client-1",
		ClientSecretEnc:     secretEnc,
		SyncIntervalMinutes: 15,
	}
}

func TestDirectoryService_Settings(t *testing.T) {
	ctx := context.Background()
	enc := testEncryptor(t)

	t.Run("incomplete config", func(t *testing.T) {
		mockConfigRepo := new(MockDirectoryConfigRepository)
		mockConfigRepo.On("Get", ctx).Return(&domain.DirectoryConfig{TenantID: "tenant-1"}, nil)

		svc := NewDirectoryService(nil, nil, mockConfigRepo, nil, nil, nil, enc, nil, nil, zerolog.Nop())

		_, err := svc.Settings(ctx)
		assert.ErrorIs(t, err, ErrConfigIncomplete)
	})

	t.Run("no config row", func(t *testing.T) {
		mockConfigRepo := new(MockDirectoryConfigRepository)
		mockConfigRepo.On("Get", ctx).Return(nil, nil)

		svc := NewDirectoryService(nil, nil, mockConfigRepo, nil, nil, nil, enc, nil, nil, zerolog.Nop())

		_, err := svc.Settings(ctx)
		assert.ErrorIs(t, err, ErrConfigIncomplete)
	})

	t.Run("decrypts secret and applies defaults", func(t *testing.T) {
		mockConfigRepo := new(MockDirectoryConfigRepository)
		mockConfigRepo.On("Get", ctx).Return(storedConfig(t, enc), nil)

		svc := NewDirectoryService(nil, nil, mockConfigRepo, nil, nil, nil, enc, nil, nil, zerolog.Nop())

		settings, err := svc.Settings(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "s3cret", settings.ClientSecret)
		assert.Equal(t, domain.DefaultGraphScopes, settings.Scopes)
		assert.Equal(t, "Desk-", settings.MappingPrefix)
	})
}

func TestDirectoryService_Sync(t *testing.T) {
	ctx := context.Background()
	enc := testEncryptor(t)

	t.Run("assigns matched users and records status", func(t *testing.T) {
		tx := &fakeTxRunner{}
		mockClient := new(MockDirectoryClient)
		mockConfigRepo := new(MockDirectoryConfigRepository)
		mockUserCache := new(MockUserCacheRepository)
		mockDeskRepo := new(MockDeskRepository)
		mockMapRepo := new(MockMapRepository)
		mockCache := new(MockLayoutCache)
		mockBroadcaster := new(MockBroadcaster)

		m := testMap()
		desks := []domain.Desk{
			{ID: "d-1", Number: 1},
			{ID: "d-2", Number: 2},
		}
		users := []domain.DirectoryUser{
			{ID: "u-1", GivenName: "Dana", Surname: "Reyes", OfficeLocation: "Desk-2"},
		}

		mockConfigRepo.On("Get", ctx).Return(storedConfig(t, enc), nil)
		mockClient.On("FetchAllUsers", ctx, mock.Anything, 0).Return(users, nil)
		mockMapRepo.On("GetFirst", ctx).Return(m, nil)
		mockDeskRepo.On("ListByMap", ctx, m.ID).Return(desks, nil)
		mockUserCache.On("ReplaceAll", ctx, nil, users, mock.AnythingOfType("time.Time")).Return(nil)
		mockDeskRepo.On("ClearOccupants", ctx, nil, m.ID).Return(nil)
		mockDeskRepo.On("UpdateOccupant", ctx, nil, "d-2", "Dana", "Reyes").Return(nil)
		mockConfigRepo.On("RecordSyncStatus", ctx, nil, mock.AnythingOfType("time.Time"), "Synced 1 users").Return(nil)
		mockCache.On("Invalidate", ctx, m.ID).Return(nil)
		mockBroadcaster.On("Publish", "layout", mock.Anything).Return()

		svc := NewDirectoryService(tx, mockClient, mockConfigRepo, mockUserCache, mockDeskRepo, mockMapRepo, enc, mockCache, mockBroadcaster, zerolog.Nop())

		result, err := svc.Sync(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Users)
		assert.Equal(t, 1, result.DesksUpdated)
		mockDeskRepo.AssertNotCalled(t, "UpdateOccupant", ctx, nil, "d-1", mock.Anything, mock.Anything)
		mockConfigRepo.AssertExpectations(t)
		mockUserCache.AssertExpectations(t)
	})

	t.Run("fetch failure records failed status", func(t *testing.T) {
		tx := &fakeTxRunner{}
		mockClient := new(MockDirectoryClient)
		mockConfigRepo := new(MockDirectoryConfigRepository)

		mockConfigRepo.On("Get", ctx).Return(storedConfig(t, enc), nil)
		mockClient.On("FetchAllUsers", ctx, mock.Anything, 0).Return(nil, errors.New("401 unauthorized"))
		mockConfigRepo.On("RecordSyncStatus", ctx, nil, mock.AnythingOfType("time.Time"), "Sync failed").Return(nil)

		svc := NewDirectoryService(tx, mockClient, mockConfigRepo, nil, nil, nil, enc, nil, nil, zerolog.Nop())

		_, err := svc.Sync(ctx)
		assert.Error(t, err)
		assert.Equal(t, 0, tx.calls)
		mockConfigRepo.AssertExpectations(t)
	})

	t.Run("no map initialized", func(t *testing.T) {
		tx := &fakeTxRunner{}
		mockClient := new(MockDirectoryClient)
		mockConfigRepo := new(MockDirectoryConfigRepository)
		mockMapRepo := new(MockMapRepository)

		mockConfigRepo.On("Get", ctx).Return(storedConfig(t, enc), nil)
		mockClient.On("FetchAllUsers", ctx, mock.Anything, 0).Return([]domain.DirectoryUser{}, nil)
		mockMapRepo.On("GetFirst", ctx).Return(nil, nil)

		svc := NewDirectoryService(tx, mockClient, mockConfigRepo, nil, nil, mockMapRepo, enc, nil, nil, zerolog.Nop())

		_, err := svc.Sync(ctx)
		assert.ErrorIs(t, err, ErrMapNotInitialized)
	})
}

func TestDirectoryService_TestConnection(t *testing.T) {
	ctx := context.Background()
	enc := testEncryptor(t)

	t.Run("success records timestamp", func(t *testing.T) {
		mockClient := new(MockDirectoryClient)
		mockConfigRepo := new(MockDirectoryConfigRepository)

		mockConfigRepo.On("Get", ctx).Return(storedConfig(t, enc), nil)
		mockClient.On("FetchAllUsers", ctx, mock.Anything, 1).Return([]domain.DirectoryUser{{ID: "u-1"}}, nil)
		mockConfigRepo.On("RecordTestStatus", ctx, mock.AnythingOfType("time.Time"), "").Return(nil)

		svc := NewDirectoryService(nil, mockClient, mockConfigRepo, nil, nil, nil, enc, nil, nil, zerolog.Nop())

		assert.NoError(t, svc.TestConnection(ctx))
		mockConfigRepo.AssertExpectations(t)
	})

	t.Run("failure records failed status", func(t *testing.T) {
		mockClient := new(MockDirectoryClient)
		mockConfigRepo := new(MockDirectoryConfigRepository)

		mockConfigRepo.On("Get", ctx).Return(storedConfig(t, enc), nil)
		mockClient.On("FetchAllUsers", ctx, mock.Anything, 1).Return(nil, errors.New("403 forbidden"))
		mockConfigRepo.On("RecordTestStatus", ctx, mock.AnythingOfType("time.Time"), "Test failed").Return(nil)

		svc := NewDirectoryService(nil, mockClient, mockConfigRepo, nil, nil, nil, enc, nil, nil, zerolog.Nop())

		assert.Error(t, svc.TestConnection(ctx))
		mockConfigRepo.AssertExpectations(t)
	})
}

func TestDirectoryService_SaveConfig(t *testing.T) {
	ctx := context.Background()
	enc := testEncryptor(t)

	t.Run("new config encrypts secret and defaults interval", func(t *testing.T) {
		mockConfigRepo := new(MockDirectoryConfigRepository)
		secret := "new-secret"

		mockConfigRepo.On("Get", ctx).Return(nil, nil).Once()
		mockConfigRepo.On("Upsert", ctx, mock.MatchedBy(func(cfg *domain.DirectoryConfig) bool {
			if cfg.SyncIntervalMinutes != 15 || cfg.ClientSecretEnc == "" {
				return false
			}
			plain, err := enc.DecryptString(cfg.ClientSecretEnc)
			return err == nil && plain == secret
		})).Return(nil)
		mockConfigRepo.On("Get", ctx).Return(storedConfig(t, enc), nil)

		svc := NewDirectoryService(nil, nil, mockConfigRepo, nil, nil, nil, enc, nil, nil, zerolog.Nop())

		_, err := svc.SaveConfig(ctx, domain.DirectoryConfigUpdate{
			TenantID:     "tenant-1",
			ClientID:     "client-1",
			ClientSecret: &secret,
		})
		assert.NoError(t, err)
		mockConfigRepo.AssertExpectations(t)
	})

	t.Run("empty secret keeps stored one", func(t *testing.T) {
		mockConfigRepo := new(MockDirectoryConfigRepository)
		existing := storedConfig(t, enc)

		mockConfigRepo.On("Get", ctx).Return(existing, nil)
		mockConfigRepo.On("Upsert", ctx, mock.MatchedBy(func(cfg *domain.DirectoryConfig) bool {
			return cfg.ClientSecretEnc == existing.ClientSecretEnc && cfg.ID == existing.ID
		})).Return(nil)

		svc := NewDirectoryService(nil, nil, mockConfigRepo, nil, nil, nil, enc, nil, nil, zerolog.Nop())

		empty := ""
		_, err := svc.SaveConfig(ctx, domain.DirectoryConfigUpdate{
			TenantID:     "tenant-1",
			ClientID:     "client-1",
			ClientSecret: &empty,
		})
		assert.NoError(t, err)
		mockConfigRepo.AssertExpectations(t)
	})
}

func authCfg(user, hash string) config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		AdminUser:         user,
		AdminPasswordHash: hash,
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	jwtManager := security.NewJWTManager("test-secret", time.Hour)
	hashBytes, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashBytes)

	t.Run("valid credentials return a token", func(t *testing.T) {
		svc := NewAuthService(authCfg("admin", hash), jwtManager)
		token, err := svc.Login(ctx, "admin", "correct horse")
		assert.NoError(t, err)

		claims, err := jwtManager.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAuthService(authCfg("admin", hash), jwtManager)
		_, err := svc.Login(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong username", func(t *testing.T) {
		svc := NewAuthService(authCfg("admin", hash), jwtManager)
		_, err := svc.Login(ctx, "root", "anything")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unconfigured login always fails", func(t *testing.T) {
		svc := NewAuthService(authCfg("admin", ""), jwtManager)
		_, err := svc.Login(ctx, "admin", "anything")
		assert.Error(t, err)
	})
}
