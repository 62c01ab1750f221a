// Package app assembles the application: database pool, migrations, the
// Discord collaborator, repositories, services and the scheduler. Order
// matters because components depend on each other.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/config"
	"royalmint.dev/discord-bot/internal/db/postgres"
	"royalmint.dev/discord-bot/internal/features/admin"
	"royalmint.dev/discord-bot/internal/features/claims"
	"royalmint.dev/discord-bot/internal/features/drawings"
	"royalmint.dev/discord-bot/internal/features/economy"
	"royalmint.dev/discord-bot/internal/features/perms"
	"royalmint.dev/discord-bot/internal/features/shop"
	"royalmint.dev/discord-bot/internal/features/wagering"
	"royalmint.dev/discord-bot/internal/jobs"
	"royalmint.dev/discord-bot/internal/platform/discord"
)

// App holds every component of the running bot.
type App struct {
	DB        *pgxpool.Pool
	Discord   *discord.Client
	Scheduler *jobs.Scheduler

	Economy  *economy.Service
	Claims   *claims.Service
	Wagering *wagering.Service
	Shop     *shop.Service
	Drawings *drawings.Service
	Perms    *perms.Service
	Admin    *admin.Service
}

// New creates and initializes the application.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	// === 2. Discord ===
	client, err := discord.NewClient(cfg.DiscordBotToken)
	if err != nil {
		return nil, err
	}

	// === 3. Repositories ===
	economyRepo := economy.NewRepository(pool, cfg)
	claimsRepo := claims.NewRepository(pool, economyRepo)
	wageringRepo := wagering.NewRepository(pool, economyRepo)
	shopRepo := shop.NewRepository(pool, economyRepo)
	drawingsRepo := drawings.NewRepository(pool, economyRepo)
	permsRepo := perms.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 4. Services ===
	economySvc := economy.NewService(economyRepo)
	claimsSvc := claims.NewService(claimsRepo, economySvc, cfg)
	wageringSvc := wagering.NewService(wageringRepo, economySvc, cfg)
	shopSvc := shop.NewService(shopRepo, client)
	permsSvc := perms.NewService(permsRepo)
	drawingsSvc := drawings.NewService(drawingsRepo, economySvc, permsSvc, client, cfg)
	adminSvc := admin.NewService(adminRepo, economySvc, shopSvc, cfg)

	// === 5. Scheduler ===
	scheduler := jobs.NewScheduler(drawingsSvc, adminSvc, cfg)

	log.Info("application assembled")
	return &App{
		DB:        pool,
		Discord:   client,
		Scheduler: scheduler,
		Economy:   economySvc,
		Claims:    claimsSvc,
		Wagering:  wageringSvc,
		Shop:      shopSvc,
		Drawings:  drawingsSvc,
		Perms:     permsSvc,
		Admin:     adminSvc,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	a.Scheduler.Stop()
	if err := a.Discord.Close(); err != nil {
		log.WithError(err).Warn("discord session close failed")
	}
	a.DB.Close()
}

// runMigrations applies all SQL migrations in order.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Accounts},
		{2, migration002Transactions},
		{3, migration003Gambling},
		{4, migration004Shop},
		{5, migration005Drawings},
		{6, migration006HostRoles},
		{7, migration007Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

// SQL migrations are embedded in code to keep deployment a single binary.

var migration001Accounts = `
CREATE TABLE IF NOT EXISTS accounts (
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    gold BIGINT NOT NULL DEFAULT 0,
    gamble_wins INTEGER NOT NULL DEFAULT 0,
    gamble_losses INTEGER NOT NULL DEFAULT 0,
    total_earned BIGINT NOT NULL DEFAULT 0,
    total_spent BIGINT NOT NULL DEFAULT 0,
    privileged BOOLEAN NOT NULL DEFAULT FALSE,
    daily_claimed_at TIMESTAMPTZ,
    labour_claimed_at TIMESTAMPTZ,
    bonus_claimed_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, guild_id)
);
CREATE INDEX IF NOT EXISTS idx_accounts_guild_gold ON accounts(guild_id, gold DESC);
`

var migration002Transactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    amount BIGINT NOT NULL,
    reason TEXT NOT NULL,
    balance_after BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(user_id, guild_id, created_at DESC);
`

var migration003Gambling = `
CREATE TABLE IF NOT EXISTS gambling_records (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    game VARCHAR(20) NOT NULL,
    bet_amount BIGINT NOT NULL,
    win_amount BIGINT NOT NULL DEFAULT 0,
    outcome VARCHAR(10) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_gambling_account_time ON gambling_records(user_id, guild_id, created_at);
`

var migration004Shop = `
CREATE TABLE IF NOT EXISTS shop_items (
    id BIGSERIAL PRIMARY KEY,
    guild_id BIGINT NOT NULL,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price BIGINT NOT NULL,
    role_id BIGINT,
    stock INTEGER NOT NULL DEFAULT -1,
    created_by BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_shop_items_guild_name ON shop_items(guild_id, LOWER(name));
CREATE TABLE IF NOT EXISTS inventory_entries (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    item_id BIGINT NOT NULL,
    purchased_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_inventory_account ON inventory_entries(user_id, guild_id, purchased_at DESC);
`

var migration005Drawings = `
CREATE TABLE IF NOT EXISTS drawings (
    id BIGSERIAL PRIMARY KEY,
    guild_id BIGINT NOT NULL,
    channel_id BIGINT NOT NULL,
    message_id BIGINT NOT NULL DEFAULT 0,
    host_id BIGINT NOT NULL,
    prize_name VARCHAR(200) NOT NULL,
    prize_amount BIGINT NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    winner_count INTEGER NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'active',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_drawings_due ON drawings(status, end_time);
CREATE TABLE IF NOT EXISTS drawing_entries (
    id BIGSERIAL PRIMARY KEY,
    drawing_id BIGINT NOT NULL REFERENCES drawings(id),
    user_id BIGINT NOT NULL,
    entered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (drawing_id, user_id)
);
`

var migration006HostRoles = `
CREATE TABLE IF NOT EXISTS drawing_host_roles (
    guild_id BIGINT NOT NULL,
    role_id BIGINT NOT NULL,
    added_by BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (guild_id, role_id)
);
`

var migration007Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE NOT NULL,
    authenticated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    attempt_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_attempts_user_time ON admin_login_attempts(user_id, attempt_time);
`
