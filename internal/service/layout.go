package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// DeskRepository is the desk persistence boundary.
type DeskRepository interface {
	ListByMap(ctx context.Context, mapID uuid.UUID) ([]domain.Desk, error)
	ReplaceAll(ctx context.Context, tx pgx.Tx, mapID uuid.UUID, desks []domain.Desk) error
	Insert(ctx context.Context, tx pgx.Tx, mapID uuid.UUID, desk domain.Desk) error
	ClearOccupants(ctx context.Context, tx pgx.Tx, mapID uuid.UUID) error
	UpdateOccupant(ctx context.Context, tx pgx.Tx, deskID, firstName, lastName string) error
}

// MapRepository is the map config persistence boundary.
type MapRepository interface {
	GetFirst(ctx context.Context) (*domain.MapConfig, error)
	GetFirstTx(ctx context.Context, tx pgx.Tx) (*domain.MapConfig, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MapConfig, error)
	Create(ctx context.Context, tx pgx.Tx, m *domain.MapConfig) error
	UpdateStyle(ctx context.Context, tx pgx.Tx, id uuid.UUID, style *domain.MapStyleUpdate) error
	Touch(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// LayoutCache is an optional read-through cache for the rendered layout.
type LayoutCache interface {
	Get(ctx context.Context, mapID uuid.UUID) (*domain.Layout, error)
	Set(ctx context.Context, mapID uuid.UUID, layout *domain.Layout) error
	Invalidate(ctx context.Context, mapID uuid.UUID) error
}

// Broadcaster publishes change events to live viewer connections.
type Broadcaster interface {
	Publish(kind string, data any)
}

// LayoutService handles floor-map layout operations
type LayoutService struct {
	tx          TxRunner
	deskRepo    DeskRepository
	mapRepo     MapRepository
	cache       LayoutCache
	broadcaster Broadcaster
}

// NewLayoutService creates a new layout service
func NewLayoutService(tx TxRunner, deskRepo DeskRepository, mapRepo MapRepository, cache LayoutCache, broadcaster Broadcaster) *LayoutService {
	return &LayoutService{
		tx:          tx,
		deskRepo:    deskRepo,
		mapRepo:     mapRepo,
		cache:       cache,
		broadcaster: broadcaster,
	}
}

// EnsureMap returns the active map config, seeding a default map with
// demo desks on first use
func (s *LayoutService) EnsureMap(ctx context.Context) (*domain.MapConfig, error) {
	existing, err := s.mapRepo.GetFirst(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	var m *domain.MapConfig
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Re-check inside the transaction; a concurrent first request
		// may have seeded already.
		seeded, err := s.mapRepo.GetFirstTx(ctx, tx)
		if err != nil {
			return err
		}
		if seeded != nil {
			m = seeded
			return nil
		}

		m = defaultMapConfig()
		if err := s.mapRepo.Create(ctx, tx, m); err != nil {
			return err
		}
		for _, desk := range demoDesks() {
			if err := s.deskRepo.Insert(ctx, tx, m.ID, desk); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed map: %w", err)
	}

	return m, nil
}

// GetLayout returns the full layout a viewer renders
func (s *LayoutService) GetLayout(ctx context.Context) (*domain.Layout, error) {
	m, err := s.EnsureMap(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, m.ID); err == nil && cached != nil {
			return cached, nil
		}
	}

	desks, err := s.deskRepo.ListByMap(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	layout := &domain.Layout{Map: m, Desks: desks}
	if s.cache != nil {
		_ = s.cache.Set(ctx, m.ID, layout)
	}

	return layout, nil
}

// SaveLayout replaces the full desk set, optionally applying a partial
// map style update. A batch with duplicate desk numbers is rejected
// before anything is persisted. On success a layout change event is
// broadcast and the refreshed layout returned.
func (s *LayoutService) SaveLayout(ctx context.Context, input domain.LayoutSave) (*domain.Layout, error) {
	numbers := make(map[int]struct{}, len(input.Desks))
	for _, desk := range input.Desks {
		if _, dup := numbers[desk.Number]; dup {
			return nil, domain.ErrDuplicateDeskNumber
		}
		numbers[desk.Number] = struct{}{}
	}

	m, err := s.EnsureMap(ctx)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if input.MapStyle != nil {
			if err := s.mapRepo.UpdateStyle(ctx, tx, m.ID, input.MapStyle); err != nil {
				return err
			}
		} else if err := s.mapRepo.Touch(ctx, tx, m.ID); err != nil {
			return err
		}
		return s.deskRepo.ReplaceAll(ctx, tx, m.ID, input.Desks)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save layout: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, m.ID)
	}
	s.broadcaster.Publish("layout", map[string]string{
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})

	updatedMap, err := s.mapRepo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if updatedMap == nil {
		updatedMap = m
	}
	desks, err := s.deskRepo.ListByMap(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Layout{Map: updatedMap, Desks: desks}, nil
}

func defaultMapConfig() *domain.MapConfig {
	now := time.Now()
	return &domain.MapConfig{
		ID:            uuid.New(),
		Name:          "HQ Floor 1",
		Width:         1200,
		Height:        700,
		DeskColor:     "#8764B8",
		DeskShape:     "rounded",
		DeskIcon:      "none",
		LabelPosition: "top-center",
		ShowName:      true,
		ShowNumber:    true,
		DeskTextSize:  14,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func demoDesks() []domain.Desk {
	lastNames := []string{"Miller", "Nguyen", "Lopez", "Baker", "Patel", "Hughes", "Diaz", "Rossi", "Khan", "Brooks"}

	desks := make([]domain.Desk, 0, len(lastNames))
	for i, lastName := range lastNames {
		number := i + 1
		firstName := "Jordan"
		if number%2 == 0 {
			firstName = "Alex"
		}
		desks = append(desks, domain.Desk{
			ID:                fmt.Sprintf("demo-%d", number),
			Number:            number,
			X:                 float64(80 + (i%5)*180),
			Y:                 float64(80 + (i/5)*180),
			Width:             10,
			Height:            10,
			OccupantFirstName: &firstName,
			OccupantLastName:  &lastName,
		})
	}
	return desks
}
