// Package economy — repository.go performs all reads and writes against the
// accounts and transactions tables. Every mutation runs inside a database
// transaction with the account row locked, so concurrent actions on the same
// account serialize instead of losing updates.
package economy

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/config"
)

// Repository owns the accounts and transactions tables.
type Repository struct {
	db  *pgxpool.Pool
	cfg *config.Config
}

// NewRepository creates the ledger repository.
func NewRepository(db *pgxpool.Pool, cfg *config.Config) *Repository {
	return &Repository{db: db, cfg: cfg}
}

const accountColumns = `user_id, guild_id, gold, gamble_wins, gamble_losses,
	total_earned, total_spent, privileged,
	daily_claimed_at, labour_claimed_at, bonus_claimed_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.UserID, &a.GuildID, &a.Gold, &a.GambleWins, &a.GambleLosses,
		&a.TotalEarned, &a.TotalSpent, &a.Privileged,
		&a.DailyClaimedAt, &a.LabourClaimedAt, &a.BonusClaimedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ensureRow lazily creates the account with the starting balance. The starting
// balance also seeds total_earned, matching the ledger's attempted-flow rule.
func (r *Repository) ensureRow(ctx context.Context, q execer, userID, guildID int64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (user_id, guild_id, gold, total_earned)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`, userID, guildID, r.cfg.EconomyStartingBalance)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetOrCreate returns the account, creating it with the starting balance on
// first contact.
func (r *Repository) GetOrCreate(ctx context.Context, userID, guildID int64) (*Account, error) {
	if err := r.ensureRow(ctx, r.db, userID, guildID); err != nil {
		return nil, err
	}
	acct, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND guild_id = $2`,
		userID, guildID))
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

// LockTx reads the account under FOR UPDATE inside the caller's transaction,
// creating it first if needed. Cross-feature repositories use this to compose
// claim/wager/purchase flows with the ledger in one atomic unit.
func (r *Repository) LockTx(ctx context.Context, tx pgx.Tx, userID, guildID int64) (*Account, error) {
	if err := r.ensureRow(ctx, tx, userID, guildID); err != nil {
		return nil, err
	}
	acct, err := scanAccount(tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND guild_id = $2 FOR UPDATE`,
		userID, guildID))
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	return acct, nil
}

// AdjustTx applies a signed delta to a locked account inside the caller's
// transaction: clamp to [0, ceiling], bump the lifetime counters by the
// attempted flow, write the new balance and append the audit row.
// It never fails on insufficient funds — callers pre-check negative deltas.
func (r *Repository) AdjustTx(ctx context.Context, tx pgx.Tx, userID, guildID, delta int64, reason string) (int64, bool, error) {
	acct, err := r.LockTx(ctx, tx, userID, guildID)
	if err != nil {
		return 0, false, err
	}
	return r.adjustLocked(ctx, tx, acct, delta, reason)
}

// adjustLocked is AdjustTx for an account the caller already holds locked.
func (r *Repository) adjustLocked(ctx context.Context, tx pgx.Tx, acct *Account, delta int64, reason string) (int64, bool, error) {
	ceiling := acct.Ceiling(r.cfg.GoldCapNormal, r.cfg.GoldCapPrivileged)
	newGold, capped := applyDelta(acct.Gold, delta, ceiling)

	// Lifetime counters track attempted flow, not clamped flow.
	earned, spent := acct.TotalEarned, acct.TotalSpent
	if delta > 0 {
		earned += delta
	} else {
		spent += -delta
	}

	_, err := tx.Exec(ctx, `
		UPDATE accounts
		SET gold = $3, total_earned = $4, total_spent = $5, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
	`, acct.UserID, acct.GuildID, newGold, earned, spent)
	if err != nil {
		return 0, false, fmt.Errorf("update balance: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, guild_id, amount, reason, balance_after)
		VALUES ($1, $2, $3, $4, $5)
	`, acct.UserID, acct.GuildID, delta, reason, newGold)
	if err != nil {
		return 0, false, fmt.Errorf("record transaction: %w", err)
	}

	acct.Gold = newGold
	acct.TotalEarned, acct.TotalSpent = earned, spent
	return newGold, capped, nil
}

// Adjust applies a signed delta as its own transaction.
func (r *Repository) Adjust(ctx context.Context, userID, guildID, delta int64, reason string) (int64, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	newGold, capped, err := r.AdjustTx(ctx, tx, userID, guildID, delta, reason)
	if err != nil {
		return 0, false, err
	}
	return newGold, capped, tx.Commit(ctx)
}

// Transfer moves gold between two accounts of one guild atomically. The rows
// lock in user-id order so two opposing transfers cannot deadlock. Refuses,
// rather than clamps, a transfer that would push the recipient past its
// ceiling.
func (r *Repository) Transfer(ctx context.Context, fromID, toID, guildID, amount int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	locked := map[int64]*Account{}
	for _, id := range []int64{first, second} {
		acct, err := r.LockTx(ctx, tx, id, guildID)
		if err != nil {
			return err
		}
		locked[id] = acct
	}
	sender, receiver := locked[fromID], locked[toID]

	if sender.Gold < amount {
		return common.ErrInsufficientBalance
	}
	receiverCeiling := receiver.Ceiling(r.cfg.GoldCapNormal, r.cfg.GoldCapPrivileged)
	if receiver.Gold+amount > receiverCeiling {
		return common.ErrRecipientAtCeiling
	}

	if _, _, err := r.adjustLocked(ctx, tx, sender, -amount,
		fmt.Sprintf("Paid %d gold to subject %d", amount, toID)); err != nil {
		return err
	}
	if _, _, err := r.adjustLocked(ctx, tx, receiver, amount,
		fmt.Sprintf("Received %d gold from subject %d", amount, fromID)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// IncrementGambleTx bumps the win or loss counter inside the caller's
// transaction.
func (r *Repository) IncrementGambleTx(ctx context.Context, tx pgx.Tx, userID, guildID int64, won bool) error {
	column := "gamble_losses"
	if won {
		column = "gamble_wins"
	}
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET `+column+` = `+column+` + 1, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
	`, userID, guildID)
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	return nil
}

// SetPrivileged flips the privileged-tier flag.
func (r *Repository) SetPrivileged(ctx context.Context, userID, guildID int64, privileged bool) error {
	if err := r.ensureRow(ctx, r.db, userID, guildID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET privileged = $3, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
	`, userID, guildID, privileged)
	if err != nil {
		return fmt.Errorf("set privileged: %w", err)
	}
	return nil
}

// Leaderboard returns the guild's richest accounts.
func (r *Repository) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE guild_id = $1 ORDER BY gold DESC LIMIT $2`,
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

// History returns the most recent audit entries for an account.
// Export/display only — balances are never rebuilt from the log.
func (r *Repository) History(ctx context.Context, userID, guildID int64, limit int) ([]*Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, guild_id, amount, reason, balance_after, created_at
		FROM transactions
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.GuildID, &t.Amount, &t.Reason, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}
