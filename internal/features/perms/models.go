// Package perms manages the per-guild set of roles allowed to host prize
// drawings. Reads go through an in-memory guild cache; writes go to the
// database first and refresh the cache after.
package perms

import "time"

// HostRole marks one guild role as drawing-host eligible.
type HostRole struct {
	GuildID   int64     `db:"guild_id"`
	RoleID    int64     `db:"role_id"`
	AddedBy   int64     `db:"added_by"`
	CreatedAt time.Time `db:"created_at"`
}
