package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MapRepository handles map configuration data access
type MapRepository struct {
	db *DB
}

// NewMapRepository creates a new map repository
func NewMapRepository(db *DB) *MapRepository {
	return &MapRepository{db: db}
}

const mapColumns = `id, name, width, height, background_url, desk_color, desk_shape, desk_icon,
		label_position, show_name, show_number, desk_text_size, desk_visible_when_searching,
		created_at, updated_at`

// GetFirst retrieves the oldest map config, or nil when none exists
func (r *MapRepository) GetFirst(ctx context.Context) (*domain.MapConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM map_configs ORDER BY created_at ASC LIMIT 1`, mapColumns)
	return r.scanOne(r.db.Pool.QueryRow(ctx, query))
}

// GetFirstTx is GetFirst inside the caller's transaction
func (r *MapRepository) GetFirstTx(ctx context.Context, tx pgx.Tx) (*domain.MapConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM map_configs ORDER BY created_at ASC LIMIT 1`, mapColumns)
	return r.scanOne(tx.QueryRow(ctx, query))
}

// GetByID retrieves a map config by id
func (r *MapRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MapConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM map_configs WHERE id = $1`, mapColumns)
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

// Create inserts a new map config inside the caller's transaction
func (r *MapRepository) Create(ctx context.Context, tx pgx.Tx, m *domain.MapConfig) error {
	query := `
		INSERT INTO map_configs (id, name, width, height, background_url, desk_color, desk_shape,
			desk_icon, label_position, show_name, show_number, desk_text_size,
			desk_visible_when_searching, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, query,
		m.ID,
		m.Name,
		m.Width,
		m.Height,
		m.BackgroundURL,
		m.DeskColor,
		m.DeskShape,
		m.DeskIcon,
		m.LabelPosition,
		m.ShowName,
		m.ShowNumber,
		m.DeskTextSize,
		m.DeskVisibleWhenSearching,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create map config: %w", err)
	}
	return nil
}

// UpdateStyle applies a partial style update and bumps updated_at.
// Nil fields keep their stored values.
func (r *MapRepository) UpdateStyle(ctx context.Context, tx pgx.Tx, id uuid.UUID, style *domain.MapStyleUpdate) error {
	query := `
		UPDATE map_configs
		SET width = COALESCE($2, width),
		    height = COALESCE($3, height),
		    desk_color = COALESCE($4, desk_color),
		    desk_shape = COALESCE($5, desk_shape),
		    label_position = COALESCE($6, label_position),
		    show_name = COALESCE($7, show_name),
		    show_number = COALESCE($8, show_number),
		    desk_text_size = COALESCE($9, desk_text_size),
		    desk_visible_when_searching = COALESCE($10, desk_visible_when_searching),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, id,
		style.Width,
		style.Height,
		style.DeskColor,
		style.DeskShape,
		style.LabelPosition,
		style.ShowName,
		style.ShowNumber,
		style.DeskTextSize,
		style.DeskVisibleWhenSearching,
	)
	if err != nil {
		return fmt.Errorf("failed to update map style: %w", err)
	}
	return nil
}

// Touch bumps updated_at inside the caller's transaction
func (r *MapRepository) Touch(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE map_configs SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to touch map config: %w", err)
	}
	return nil
}

func (r *MapRepository) scanOne(row pgx.Row) (*domain.MapConfig, error) {
	var m domain.MapConfig
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Width,
		&m.Height,
		&m.BackgroundURL,
		&m.DeskColor,
		&m.DeskShape,
		&m.DeskIcon,
		&m.LabelPosition,
		&m.ShowName,
		&m.ShowNumber,
		&m.DeskTextSize,
		&m.DeskVisibleWhenSearching,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get map config: %w", err)
	}

	return &m, nil
}
