package perms

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"royalmint.dev/discord-bot/internal/common"
)

// Repository owns the drawing_host_roles table.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the host-roles repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Add marks a role as host-eligible. Re-adding is a no-op.
func (r *Repository) Add(ctx context.Context, guildID, roleID, addedBy int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO drawing_host_roles (guild_id, role_id, added_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, role_id) DO NOTHING
	`, guildID, roleID, addedBy)
	if err != nil {
		return fmt.Errorf("add host role: %w", err)
	}
	return nil
}

// Remove revokes a role's host eligibility.
func (r *Repository) Remove(ctx context.Context, guildID, roleID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM drawing_host_roles WHERE guild_id = $1 AND role_id = $2`,
		guildID, roleID)
	if err != nil {
		return fmt.Errorf("remove host role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrItemNotFound
	}
	return nil
}

// List returns the guild's host-eligible role IDs.
func (r *Repository) List(ctx context.Context, guildID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT role_id FROM drawing_host_roles WHERE guild_id = $1 ORDER BY created_at`,
		guildID)
	if err != nil {
		return nil, fmt.Errorf("list host roles: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
