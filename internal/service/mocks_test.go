package service

import (
	"context"
	"time"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// fakeTxRunner runs the callback directly; the tests assert the work
// done inside the transaction, not the transaction plumbing itself.
type fakeTxRunner struct {
	calls int
	err   error
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx, nil)
}

// MockDeskRepository mocks the DeskRepository interface
type MockDeskRepository struct {
	mock.Mock
}

func (m *MockDeskRepository) ListByMap(ctx context.Context, mapID uuid.UUID) ([]domain.Desk, error) {
	args := m.Called(ctx, mapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Desk), args.Error(1)
}

func (m *MockDeskRepository) ReplaceAll(ctx context.Context, tx pgx.Tx, mapID uuid.UUID, desks []domain.Desk) error {
	args := m.Called(ctx, tx, mapID, desks)
	return args.Error(0)
}

func (m *MockDeskRepository) Insert(ctx context.Context, tx pgx.Tx, mapID uuid.UUID, desk domain.Desk) error {
	args := m.Called(ctx, tx, mapID, desk)
	return args.Error(0)
}

func (m *MockDeskRepository) ClearOccupants(ctx context.Context, tx pgx.Tx, mapID uuid.UUID) error {
	args := m.Called(ctx, tx, mapID)
	return args.Error(0)
}

func (m *MockDeskRepository) UpdateOccupant(ctx context.Context, tx pgx.Tx, deskID, firstName, lastName string) error {
	args := m.Called(ctx, tx, deskID, firstName, lastName)
	return args.Error(0)
}

// MockMapRepository mocks the MapRepository interface
type MockMapRepository struct {
	mock.Mock
}

func (m *MockMapRepository) GetFirst(ctx context.Context) (*domain.MapConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MapConfig), args.Error(1)
}

func (m *MockMapRepository) GetFirstTx(ctx context.Context, tx pgx.Tx) (*domain.MapConfig, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MapConfig), args.Error(1)
}

func (m *MockMapRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MapConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MapConfig), args.Error(1)
}

func (m *MockMapRepository) Create(ctx context.Context, tx pgx.Tx, mapConfig *domain.MapConfig) error {
	args := m.Called(ctx, tx, mapConfig)
	return args.Error(0)
}

func (m *MockMapRepository) UpdateStyle(ctx context.Context, tx pgx.Tx, id uuid.UUID, style *domain.MapStyleUpdate) error {
	args := m.Called(ctx, tx, id, style)
	return args.Error(0)
}

func (m *MockMapRepository) Touch(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockLayoutCache mocks the LayoutCache interface
type MockLayoutCache struct {
	mock.Mock
}

func (m *MockLayoutCache) Get(ctx context.Context, mapID uuid.UUID) (*domain.Layout, error) {
	args := m.Called(ctx, mapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Layout), args.Error(1)
}

func (m *MockLayoutCache) Set(ctx context.Context, mapID uuid.UUID, layout *domain.Layout) error {
	args := m.Called(ctx, mapID, layout)
	return args.Error(0)
}

func (m *MockLayoutCache) Invalidate(ctx context.Context, mapID uuid.UUID) error {
	args := m.Called(ctx, mapID)
	return args.Error(0)
}

// MockBroadcaster mocks the Broadcaster interface
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Publish(kind string, data any) {
	m.Called(kind, data)
}

// MockDirectoryClient mocks the DirectoryClient interface
type MockDirectoryClient struct {
	mock.Mock
}

func (m *MockDirectoryClient) FetchAllUsers(ctx context.Context, settings domain.DirectorySettings, limit int) ([]domain.DirectoryUser, error) {
	args := m.Called(ctx, settings, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DirectoryUser), args.Error(1)
}

// MockDirectoryConfigRepository mocks the DirectoryConfigRepository interface
type MockDirectoryConfigRepository struct {
	mock.Mock
}

func (m *MockDirectoryConfigRepository) Get(ctx context.Context) (*domain.DirectoryConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DirectoryConfig), args.Error(1)
}

func (m *MockDirectoryConfigRepository) Upsert(ctx context.Context, cfg *domain.DirectoryConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockDirectoryConfigRepository) RecordSyncStatus(ctx context.Context, tx pgx.Tx, at time.Time, status string) error {
	args := m.Called(ctx, tx, at, status)
	return args.Error(0)
}

func (m *MockDirectoryConfigRepository) RecordTestStatus(ctx context.Context, at time.Time, failedStatus string) error {
	args := m.Called(ctx, at, failedStatus)
	return args.Error(0)
}

// MockUserCacheRepository mocks the UserCacheRepository interface
type MockUserCacheRepository struct {
	mock.Mock
}

func (m *MockUserCacheRepository) ReplaceAll(ctx context.Context, tx pgx.Tx, users []domain.DirectoryUser, syncedAt time.Time) error {
	args := m.Called(ctx, tx, users, syncedAt)
	return args.Error(0)
}

func (m *MockUserCacheRepository) List(ctx context.Context) ([]domain.DirectoryUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DirectoryUser), args.Error(1)
}
