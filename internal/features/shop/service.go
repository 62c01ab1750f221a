// Package shop — service.go validates catalog changes and orchestrates
// purchases, including the post-commit role grant.
package shop

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/common"
)

// Store is the persistence surface; *Repository implements it.
type Store interface {
	AddItem(ctx context.Context, item *Item) error
	Items(ctx context.Context, guildID int64) ([]*Item, error)
	ItemByName(ctx context.Context, guildID int64, name string) (*Item, error)
	RemoveItemByName(ctx context.Context, guildID int64, name string) error
	Purchase(ctx context.Context, userID, guildID, itemID int64) (*Item, int64, error)
	Inventory(ctx context.Context, userID, guildID int64) ([]*InventoryEntry, error)
}

// RoleGranter grants a guild role to a user on the chat platform.
type RoleGranter interface {
	GrantRole(ctx context.Context, guildID, userID, roleID int64) error
}

// Service runs the shop.
type Service struct {
	store   Store
	granter RoleGranter
}

// NewService creates the shop service.
func NewService(store Store, granter RoleGranter) *Service {
	return &Service{store: store, granter: granter}
}

// AddItem validates and inserts a new ware.
func (s *Service) AddItem(ctx context.Context, item *Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return common.ErrBlankItemName
	}
	if item.Price <= 0 {
		return common.ErrInvalidAmount
	}
	if item.Stock < UnlimitedStock {
		item.Stock = UnlimitedStock
	}
	return s.store.AddItem(ctx, item)
}

// Items lists the guild's catalog.
func (s *Service) Items(ctx context.Context, guildID int64) ([]*Item, error) {
	return s.store.Items(ctx, guildID)
}

// RemoveItem deletes a ware by name (administrative action).
func (s *Service) RemoveItem(ctx context.Context, guildID int64, name string) error {
	return s.store.RemoveItemByName(ctx, guildID, name)
}

// Inventory lists the user's purchase history.
func (s *Service) Inventory(ctx context.Context, userID, guildID int64) ([]*InventoryEntry, error) {
	return s.store.Inventory(ctx, userID, guildID)
}

// PurchaseByName buys a ware looked up by its name.
func (s *Service) PurchaseByName(ctx context.Context, userID, guildID int64, name string) (*PurchaseResult, error) {
	item, err := s.store.ItemByName(ctx, guildID, name)
	if err != nil {
		return nil, err
	}
	return s.Purchase(ctx, userID, guildID, item.ID)
}

// Purchase buys one unit of the item. The deduction, stock decrement and
// inventory entry commit first; the role grant follows and may fail without
// unwinding the purchase — the platform owed the role, not the ledger.
func (s *Service) Purchase(ctx context.Context, userID, guildID, itemID int64) (*PurchaseResult, error) {
	item, newGold, err := s.store.Purchase(ctx, userID, guildID, itemID)
	if err != nil {
		return nil, err
	}

	res := &PurchaseResult{Item: item, NewBalance: newGold}
	if item.RoleID != nil {
		if err := s.granter.GrantRole(ctx, guildID, userID, *item.RoleID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user":  userID,
				"guild": guildID,
				"role":  *item.RoleID,
				"item":  item.Name,
			}).Warn("role grant failed after purchase")
		} else {
			res.RoleGranted = true
		}
	}

	log.WithFields(log.Fields{
		"user":  userID,
		"guild": guildID,
		"item":  item.Name,
		"price": item.Price,
	}).Info("purchase completed")
	return res, nil
}
