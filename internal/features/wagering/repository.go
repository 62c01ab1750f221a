// Package wagering — repository.go persists gambling records and routes the
// net outcome through the ledger in one transaction.
package wagering

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/features/economy"
)

// Repository owns the gambling_records table.
type Repository struct {
	db     *pgxpool.Pool
	ledger *economy.Repository
}

// NewRepository creates the wagering repository.
func NewRepository(db *pgxpool.Pool, ledger *economy.Repository) *Repository {
	return &Repository{db: db, ledger: ledger}
}

// CountSince counts this account's gambling records at or after since.
func (r *Repository) CountSince(ctx context.Context, userID, guildID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM gambling_records
		WHERE user_id = $1 AND guild_id = $2 AND created_at >= $3
	`, userID, guildID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// RecordPlay commits one resolved wager: the net balance adjustment, the
// gambling record and the win/loss counter, atomically. The record is written
// win or lose, so the weekly quota counts every attempt.
//
// The quota is recounted here with the account row locked; concurrent plays on
// the same account serialize on that lock, so two plays at one try left cannot
// both record. The returned credited amount is what the win actually added to
// the balance, computed from the pre-adjustment gold read under the same lock
// (a win clamped at the ceiling credits less than the nominal payout).
func (r *Repository) RecordPlay(ctx context.Context, userID, guildID int64, variant Variant, wager, payout int64, won bool, reason string, since time.Time, limit int) (int64, int64, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	acct, err := r.ledger.LockTx(ctx, tx, userID, guildID)
	if err != nil {
		return 0, 0, false, err
	}

	var used int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM gambling_records
		WHERE user_id = $1 AND guild_id = $2 AND created_at >= $3
	`, userID, guildID, since).Scan(&used)
	if err != nil {
		return 0, 0, false, fmt.Errorf("count records: %w", err)
	}
	if used >= limit {
		return 0, 0, false, common.ErrQuotaExhausted
	}

	prior := acct.Gold
	newGold, capped, err := r.ledger.AdjustTx(ctx, tx, userID, guildID, payout-wager, reason)
	if err != nil {
		return 0, 0, false, err
	}
	credited := newGold - prior + wager

	outcome := "loss"
	if won {
		outcome = "win"
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO gambling_records (user_id, guild_id, game, bet_amount, win_amount, outcome)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, guildID, string(variant), wager, payout, outcome)
	if err != nil {
		return 0, 0, false, fmt.Errorf("record play: %w", err)
	}

	if err := r.ledger.IncrementGambleTx(ctx, tx, userID, guildID, won); err != nil {
		return 0, 0, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, false, fmt.Errorf("commit: %w", err)
	}
	return newGold, credited, capped, nil
}
