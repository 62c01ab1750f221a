// Package shop — repository.go works the shop_items and inventory_entries
// tables. A purchase is one transaction: item lock, stock check, deduction,
// stock decrement and inventory insert either all commit or none do.
package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/features/economy"
)

// Repository owns the shop tables.
type Repository struct {
	db     *pgxpool.Pool
	ledger *economy.Repository
}

// NewRepository creates the shop repository.
func NewRepository(db *pgxpool.Pool, ledger *economy.Repository) *Repository {
	return &Repository{db: db, ledger: ledger}
}

const itemColumns = `id, guild_id, name, description, price, role_id, stock, created_by, created_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.GuildID, &it.Name, &it.Description, &it.Price,
		&it.RoleID, &it.Stock, &it.CreatedBy, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// AddItem inserts a new catalog entry.
func (r *Repository) AddItem(ctx context.Context, item *Item) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO shop_items (guild_id, name, description, price, role_id, stock, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, item.GuildID, item.Name, item.Description, item.Price, item.RoleID,
		item.Stock, item.CreatedBy).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	return nil
}

// Items lists the guild's catalog, priciest wares last.
func (r *Repository) Items(ctx context.Context, guildID int64) ([]*Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+` FROM shop_items WHERE guild_id = $1 ORDER BY price ASC, name ASC`,
		guildID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ItemByName finds a catalog entry by case-insensitive name.
func (r *Repository) ItemByName(ctx context.Context, guildID int64, name string) (*Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM shop_items WHERE guild_id = $1 AND LOWER(name) = LOWER($2)`,
		guildID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	return it, nil
}

// RemoveItemByName deletes a catalog entry (administrative action).
// Inventory entries referencing it survive as purchase history.
func (r *Repository) RemoveItemByName(ctx context.Context, guildID int64, name string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM shop_items WHERE guild_id = $1 AND LOWER(name) = LOWER($2)`,
		guildID, name)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrItemNotFound
	}
	return nil
}

// Purchase buys one unit of the item for the user. The item row locks first,
// then the account row, the same order for every purchase.
func (r *Repository) Purchase(ctx context.Context, userID, guildID, itemID int64) (*Item, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	item, err := scanItem(tx.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM shop_items WHERE id = $1 AND guild_id = $2 FOR UPDATE`,
		itemID, guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, common.ErrItemNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("lock item: %w", err)
	}
	if item.Stock == 0 {
		return nil, 0, common.ErrSoldOut
	}

	acct, err := r.ledger.LockTx(ctx, tx, userID, guildID)
	if err != nil {
		return nil, 0, err
	}
	if acct.Gold < item.Price {
		return nil, 0, common.ErrInsufficientBalance
	}

	newGold, _, err := r.ledger.AdjustTx(ctx, tx, userID, guildID, -item.Price,
		fmt.Sprintf("Purchased %s from royal shop", item.Name))
	if err != nil {
		return nil, 0, err
	}

	if item.Stock > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE shop_items SET stock = stock - 1 WHERE id = $1`, item.ID); err != nil {
			return nil, 0, fmt.Errorf("decrement stock: %w", err)
		}
		item.Stock--
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_entries (user_id, guild_id, item_id)
		VALUES ($1, $2, $3)
	`, userID, guildID, item.ID); err != nil {
		return nil, 0, fmt.Errorf("record purchase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}
	return item, newGold, nil
}

// Inventory lists the user's purchases, newest first. Entries outlive their
// catalog item, so the join is outer and removed wares keep a placeholder name.
func (r *Repository) Inventory(ctx context.Context, userID, guildID int64) ([]*InventoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ie.id, ie.user_id, ie.guild_id, ie.item_id,
			COALESCE(si.name, 'a ware lost to history'), COALESCE(si.price, 0),
			ie.purchased_at
		FROM inventory_entries ie
		LEFT JOIN shop_items si ON si.id = ie.item_id
		WHERE ie.user_id = $1 AND ie.guild_id = $2
		ORDER BY ie.purchased_at DESC
	`, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var entries []*InventoryEntry
	for rows.Next() {
		var e InventoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.GuildID, &e.ItemID, &e.ItemName, &e.Price, &e.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
