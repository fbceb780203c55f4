package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/jackc/pgx/v5"
)

// UserCacheRepository stores the directory user snapshot taken on each
// sync. The snapshot is replaced wholesale, never merged.
type UserCacheRepository struct {
	db *DB
}

// NewUserCacheRepository creates a new user cache repository
func NewUserCacheRepository(db *DB) *UserCacheRepository {
	return &UserCacheRepository{db: db}
}

// ReplaceAll deletes the previous snapshot and inserts the new one inside
// the caller's transaction
func (r *UserCacheRepository) ReplaceAll(ctx context.Context, tx pgx.Tx, users []domain.DirectoryUser, syncedAt time.Time) error {
	if _, err := tx.Exec(ctx, `DELETE FROM directory_users`); err != nil {
		return fmt.Errorf("failed to clear user cache: %w", err)
	}

	if len(users) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{
			u.ID, u.GivenName, u.Surname, u.DisplayName, u.OfficeLocation, u.UserPrincipalName, syncedAt,
		})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"directory_users"},
		[]string{"id", "given_name", "surname", "display_name", "office_location", "user_principal_name", "last_sync"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user cache: %w", err)
	}
	return nil
}

// List returns the snapshot from the most recent sync
func (r *UserCacheRepository) List(ctx context.Context) ([]domain.DirectoryUser, error) {
	query := `
		SELECT id, given_name, surname, display_name, office_location, user_principal_name
		FROM directory_users
		ORDER BY display_name ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached users: %w", err)
	}
	defer rows.Close()

	var users []domain.DirectoryUser
	for rows.Next() {
		var u domain.DirectoryUser
		var givenName, surname, displayName, officeLocation, upn *string
		if err := rows.Scan(&u.ID, &givenName, &surname, &displayName, &officeLocation, &upn); err != nil {
			return nil, fmt.Errorf("failed to scan cached user: %w", err)
		}
		u.GivenName = deref(givenName)
		u.Surname = deref(surname)
		u.DisplayName = deref(displayName)
		u.OfficeLocation = deref(officeLocation)
		u.UserPrincipalName = deref(upn)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cached users: %w", err)
	}

	return users, nil
}
