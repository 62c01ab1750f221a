// Package drawings — repository.go persists drawings and entries. The end
// transition is a conditional UPDATE, so concurrent triggers resolve to
// exactly one winner-paying path.
package drawings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/features/economy"
)

// Repository owns the drawings and drawing_entries tables.
type Repository struct {
	db     *pgxpool.Pool
	ledger *economy.Repository
}

// NewRepository creates the drawings repository.
func NewRepository(db *pgxpool.Pool, ledger *economy.Repository) *Repository {
	return &Repository{db: db, ledger: ledger}
}

const drawingColumns = `id, guild_id, channel_id, message_id, host_id,
	prize_name, prize_amount, end_time, winner_count, status, created_at`

func scanDrawing(row pgx.Row) (*Drawing, error) {
	var d Drawing
	err := row.Scan(&d.ID, &d.GuildID, &d.ChannelID, &d.MessageID, &d.HostID,
		&d.PrizeName, &d.PrizeAmount, &d.EndTime, &d.WinnerCount, &d.Status, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persists a drawing and escrows the prize pool by deducting it from
// the host, in one transaction. The host keeps no claim on the escrow: a
// zero-entrant drawing does not refund.
func (r *Repository) Create(ctx context.Context, d *Drawing, escrow int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	host, err := r.ledger.LockTx(ctx, tx, d.HostID, d.GuildID)
	if err != nil {
		return err
	}
	if host.Gold < escrow {
		return common.ErrInsufficientBalance
	}

	if _, _, err := r.ledger.AdjustTx(ctx, tx, d.HostID, d.GuildID, -escrow,
		fmt.Sprintf("Funded tournament: %s", d.PrizeName)); err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO drawings (guild_id, channel_id, message_id, host_id,
			prize_name, prize_amount, end_time, winner_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, d.GuildID, d.ChannelID, d.MessageID, d.HostID,
		d.PrizeName, d.PrizeAmount, d.EndTime, d.WinnerCount, string(StatusActive),
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create drawing: %w", err)
	}
	d.Status = StatusActive

	return tx.Commit(ctx)
}

// Enter registers an entrant once. A duplicate is reported, not inserted.
func (r *Repository) Enter(ctx context.Context, drawingID, userID int64) error {
	var status Status
	err := r.db.QueryRow(ctx,
		`SELECT status FROM drawings WHERE id = $1`, drawingID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && status != StatusActive) {
		return common.ErrDrawingNotFound
	}
	if err != nil {
		return fmt.Errorf("check drawing: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO drawing_entries (drawing_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (drawing_id, user_id) DO NOTHING
	`, drawingID, userID)
	if err != nil {
		return fmt.Errorf("enter drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAlreadyEntered
	}
	return nil
}

// MarkEnded atomically flips an active drawing to ended and returns it.
// A concurrent or repeated trigger finds no matching row and gets
// ErrDrawingNotFound, which callers treat as "someone else already ended it".
func (r *Repository) MarkEnded(ctx context.Context, drawingID int64) (*Drawing, error) {
	d, err := scanDrawing(r.db.QueryRow(ctx, `
		UPDATE drawings SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING `+drawingColumns,
		drawingID, string(StatusEnded), string(StatusActive)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrDrawingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("end drawing: %w", err)
	}
	return d, nil
}

// Entries returns the entrant user IDs of a drawing.
func (r *Repository) Entries(ctx context.Context, drawingID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM drawing_entries WHERE drawing_id = $1 ORDER BY entered_at`,
		drawingID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Active lists a guild's running drawings, soonest-ending first.
func (r *Repository) Active(ctx context.Context, guildID int64) ([]*Drawing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+drawingColumns+` FROM drawings
		 WHERE guild_id = $1 AND status = $2 ORDER BY end_time ASC`,
		guildID, string(StatusActive))
	if err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}
	defer rows.Close()

	var ds []*Drawing
	for rows.Next() {
		d, err := scanDrawing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drawing: %w", err)
		}
		ds = append(ds, d)
	}
	return ds, rows.Err()
}

// DueIDs returns active drawings whose end time has passed. The sweep derives
// end triggers from this persisted deadline, so a restart loses nothing.
func (r *Repository) DueIDs(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM drawings WHERE status = $1 AND end_time <= $2`,
		string(StatusActive), now)
	if err != nil {
		return nil, fmt.Errorf("list due: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
