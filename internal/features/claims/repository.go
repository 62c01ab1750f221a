// Package claims — repository.go persists claims. The cooldown check, the
// credit and the timestamp update commit as one row-locked transaction, so
// two concurrent claims of the same kind cannot both succeed.
package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/features/economy"
)

// Repository runs claim transactions against the accounts table.
type Repository struct {
	db     *pgxpool.Pool
	ledger *economy.Repository
}

// NewRepository creates the claims repository.
func NewRepository(db *pgxpool.Pool, ledger *economy.Repository) *Repository {
	return &Repository{db: db, ledger: ledger}
}

func stampColumn(kind Kind) string {
	switch kind {
	case KindLabour:
		return "labour_claimed_at"
	case KindAdminBonus:
		return "bonus_claimed_at"
	default:
		return "daily_claimed_at"
	}
}

func stampFor(acct *economy.Account, kind Kind) *time.Time {
	switch kind {
	case KindLabour:
		return acct.LabourClaimedAt
	case KindAdminBonus:
		return acct.BonusClaimedAt
	default:
		return acct.DailyClaimedAt
	}
}

// Claim atomically checks the cooldown, credits the amount and stamps the
// claim time. requirePrivileged gates the admin bounty on the account flag,
// read under the same lock.
func (r *Repository) Claim(ctx context.Context, userID, guildID int64, kind Kind, amount int64, reason string, now time.Time, requirePrivileged bool) (*Result, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	acct, err := r.ledger.LockTx(ctx, tx, userID, guildID)
	if err != nil {
		return nil, err
	}
	if requirePrivileged && !acct.Privileged {
		return nil, common.ErrNotPrivileged
	}

	allowed, _ := CanClaimAt(stampFor(acct, kind), now, kind.Cooldown())
	if !allowed {
		return nil, common.ErrOnCooldown
	}

	// Same transaction, same row: the second FOR UPDATE inside AdjustTx is a
	// no-op re-lock.
	newGold, capped, err := r.ledger.AdjustTx(ctx, tx, userID, guildID, amount, reason)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE accounts SET `+stampColumn(kind)+` = $3, updated_at = NOW()
		 WHERE user_id = $1 AND guild_id = $2`,
		userID, guildID, now)
	if err != nil {
		return nil, fmt.Errorf("stamp claim: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &Result{Amount: amount, NewBalance: newGold, Capped: capped}, nil
}
