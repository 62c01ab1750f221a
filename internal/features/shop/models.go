// Package shop implements the role shop: a per-guild catalog of purchasable
// entitlements, each optionally bound to a Discord role grant.
package shop

import "time"

// UnlimitedStock marks an item that never sells out.
const UnlimitedStock = -1

// Item is one catalog entry. Stock counts down on purchase;
// UnlimitedStock disables the countdown. Items are removed only by an
// administrative action.
type Item struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Price       int64     `db:"price"`
	RoleID      *int64    `db:"role_id"` // Discord role granted on purchase, if any
	Stock       int       `db:"stock"`
	CreatedBy   int64     `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

// InventoryEntry records one purchase. Entries are never mutated or deleted,
// so repeat purchases keep their full history.
type InventoryEntry struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	GuildID     int64     `db:"guild_id"`
	ItemID      int64     `db:"item_id"`
	ItemName    string    `db:"item_name"` // Joined from the catalog for display
	Price       int64     `db:"price"`
	PurchasedAt time.Time `db:"purchased_at"`
}

// PurchaseResult reports a completed purchase; RoleGranted is false when the
// item has no role or the grant failed (a logged partial success — the
// deduction stands either way).
type PurchaseResult struct {
	Item        *Item
	NewBalance  int64
	RoleGranted bool
}
