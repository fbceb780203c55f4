package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DeskRepository handles desk data access
type DeskRepository struct {
	db *DB
}

// NewDeskRepository creates a new desk repository
func NewDeskRepository(db *DB) *DeskRepository {
	return &DeskRepository{db: db}
}

const deskColumns = `id, number, x, y, width, height, label, occupant_first_name, occupant_last_name`

// ListByMap retrieves all desks for a map, ordered by desk number
func (r *DeskRepository) ListByMap(ctx context.Context, mapID uuid.UUID) ([]domain.Desk, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM desks
		WHERE map_id = $1
		ORDER BY number ASC
	`, deskColumns)

	rows, err := r.db.Pool.Query(ctx, query, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list desks: %w", err)
	}
	defer rows.Close()

	return scanDesks(rows)
}

// ReplaceAll deletes every desk on the map and inserts the given set.
// Runs inside the caller's transaction so readers never observe a
// half-replaced layout.
func (r *DeskRepository) ReplaceAll(ctx context.Context, tx pgx.Tx, mapID uuid.UUID, desks []domain.Desk) error {
	if _, err := tx.Exec(ctx, `DELETE FROM desks WHERE map_id = $1`, mapID); err != nil {
		return fmt.Errorf("failed to delete desks: %w", err)
	}

	for _, desk := range desks {
		if err := r.insert(ctx, tx, mapID, desk); err != nil {
			return err
		}
	}
	return nil
}

// Insert adds a single desk inside the caller's transaction
func (r *DeskRepository) Insert(ctx context.Context, tx pgx.Tx, mapID uuid.UUID, desk domain.Desk) error {
	return r.insert(ctx, tx, mapID, desk)
}

func (r *DeskRepository) insert(ctx context.Context, tx pgx.Tx, mapID uuid.UUID, desk domain.Desk) error {
	query := `
		INSERT INTO desks (id, map_id, number, x, y, width, height, label, occupant_first_name, occupant_last_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		desk.ID,
		mapID,
		desk.Number,
		desk.X,
		desk.Y,
		desk.Width,
		desk.Height,
		desk.Label,
		desk.OccupantFirstName,
		desk.OccupantLastName,
	)
	if err != nil {
		return fmt.Errorf("failed to insert desk %d: %w", desk.Number, err)
	}
	return nil
}

// ClearOccupants vacates every desk on the map. Part of the same
// transaction as the subsequent occupant updates during a sync.
func (r *DeskRepository) ClearOccupants(ctx context.Context, tx pgx.Tx, mapID uuid.UUID) error {
	query := `
		UPDATE desks
		SET occupant_first_name = NULL, occupant_last_name = NULL
		WHERE map_id = $1
	`

	if _, err := tx.Exec(ctx, query, mapID); err != nil {
		return fmt.Errorf("failed to clear occupants: %w", err)
	}
	return nil
}

// UpdateOccupant writes the occupant name pair onto one desk
func (r *DeskRepository) UpdateOccupant(ctx context.Context, tx pgx.Tx, deskID, firstName, lastName string) error {
	query := `
		UPDATE desks
		SET occupant_first_name = $2, occupant_last_name = $3
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, deskID, firstName, lastName); err != nil {
		return fmt.Errorf("failed to update desk occupant: %w", err)
	}
	return nil
}

func scanDesks(rows pgx.Rows) ([]domain.Desk, error) {
	var desks []domain.Desk
	for rows.Next() {
		var desk domain.Desk
		if err := rows.Scan(
			&desk.ID,
			&desk.Number,
			&desk.X,
			&desk.Y,
			&desk.Width,
			&desk.Height,
			&desk.Label,
			&desk.OccupantFirstName,
			&desk.OccupantLastName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan desk: %w", err)
		}
		desks = append(desks, desk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read desks: %w", err)
	}

	return desks, nil
}
