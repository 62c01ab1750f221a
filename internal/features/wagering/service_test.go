package wagering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/config"
	"royalmint.dev/discord-bot/internal/features/economy"
)

// fakeStore keeps records in memory and applies the ledger's clamp on payout.
// advisoryCount, when set, makes CountSince report a stale number while
// RecordPlay keeps counting the recorded truth, the divergence a concurrent
// play produces.
type fakeStore struct {
	ceiling       int64
	acct          *economy.Account
	records       []time.Time
	now           time.Time
	advisoryCount *int
	// Applied at the top of RecordPlay, standing in for a concurrent
	// adjustment committed after the service's account read.
	adjustBeforeRecord int64
}

func newFakeStore(gold int64) *fakeStore {
	return &fakeStore{
		ceiling: 1000,
		acct:    &economy.Account{UserID: 1, GuildID: 10, Gold: gold},
		now:     time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) countSince(since time.Time) int {
	count := 0
	for _, at := range f.records {
		if !at.Before(since) {
			count++
		}
	}
	return count
}

func (f *fakeStore) CountSince(_ context.Context, _, _ int64, since time.Time) (int, error) {
	if f.advisoryCount != nil {
		return *f.advisoryCount, nil
	}
	return f.countSince(since), nil
}

func (f *fakeStore) RecordPlay(_ context.Context, _, _ int64, _ Variant, wager, payout int64, won bool, _ string, since time.Time, limit int) (int64, int64, bool, error) {
	if f.countSince(since) >= limit {
		return 0, 0, false, common.ErrQuotaExhausted
	}
	f.acct.Gold += f.adjustBeforeRecord
	f.adjustBeforeRecord = 0
	prior := f.acct.Gold
	raw := prior + payout - wager
	capped := false
	if raw > f.ceiling {
		raw = f.ceiling
		capped = true
	}
	f.acct.Gold = raw
	f.records = append(f.records, f.now)
	if won {
		f.acct.GambleWins++
	} else {
		f.acct.GambleLosses++
	}
	return f.acct.Gold, raw - prior + wager, capped, nil
}

func (f *fakeStore) Account(_ context.Context, _, _ int64) (*economy.Account, error) {
	snapshot := *f.acct
	return &snapshot, nil
}

func testConfig() *config.Config {
	return &config.Config{
		WeeklyWagerTries:  30,
		GoldCapNormal:     1000,
		GoldCapPrivileged: 2000,
	}
}

func newTestService(store *fakeStore) *Service {
	svc := NewService(store, store, testConfig())
	svc.now = func() time.Time { return store.now }
	return svc
}

func TestPlayWin(t *testing.T) {
	store := newFakeStore(100)
	svc := newTestService(store)
	svc.sample = func() float64 { return 0.1 } // dice win

	res, err := svc.Play(context.Background(), 1, 10, 50, VariantDice)
	require.NoError(t, err)
	require.True(t, res.Won)
	require.Equal(t, int64(100), res.Payout)
	require.Equal(t, int64(50), res.Net)
	require.Equal(t, int64(150), res.NewBalance)
	require.Equal(t, 29, res.RemainingTries)
	require.Equal(t, 1, store.acct.GambleWins)
}

func TestPlayLoss(t *testing.T) {
	store := newFakeStore(100)
	svc := newTestService(store)
	svc.sample = func() float64 { return 0.9 } // dice loss

	res, err := svc.Play(context.Background(), 1, 10, 50, VariantDice)
	require.NoError(t, err)
	require.False(t, res.Won)
	require.Equal(t, int64(0), res.Payout)
	require.Equal(t, int64(-50), res.Net)
	require.Equal(t, int64(50), res.NewBalance)
	require.Equal(t, 1, store.acct.GambleLosses)
}

func TestPlayRefusals(t *testing.T) {
	ctx := context.Background()

	t.Run("non-positive wager", func(t *testing.T) {
		svc := newTestService(newFakeStore(100))
		_, err := svc.Play(ctx, 1, 10, 0, VariantDice)
		require.ErrorIs(t, err, common.ErrInvalidAmount)
		_, err = svc.Play(ctx, 1, 10, -5, VariantDice)
		require.ErrorIs(t, err, common.ErrInvalidAmount)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		svc := newTestService(newFakeStore(100))
		_, err := svc.Play(ctx, 1, 10, 101, VariantDice)
		require.ErrorIs(t, err, common.ErrInsufficientBalance)
	})

	t.Run("account at ceiling", func(t *testing.T) {
		svc := newTestService(newFakeStore(1000))
		_, err := svc.Play(ctx, 1, 10, 50, VariantDice)
		require.ErrorIs(t, err, common.ErrAtCeiling)
	})

	t.Run("unknown game", func(t *testing.T) {
		svc := newTestService(newFakeStore(100))
		_, err := svc.Play(ctx, 1, 10, 50, Variant("roulette"))
		require.ErrorIs(t, err, common.ErrUnknownGame)
	})
}

func TestPlayQuota(t *testing.T) {
	store := newFakeStore(500)
	svc := newTestService(store)
	svc.sample = func() float64 { return 0.9 } // always lose, keep funds simple
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		store.acct.Gold = 500 // keep funded through the loop
		res, err := svc.Play(ctx, 1, 10, 1, VariantDice)
		require.NoError(t, err)
		require.Equal(t, 29-i, res.RemainingTries)
	}

	// Try 31 refused, even before wager validation.
	_, err := svc.Play(ctx, 1, 10, -1, VariantDice)
	require.ErrorIs(t, err, common.ErrQuotaExhausted)

	// A fresh week resets the quota.
	nextMonday := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	store.now = nextMonday
	svc.now = func() time.Time { return nextMonday }
	store.acct.Gold = 500
	_, err = svc.Play(ctx, 1, 10, 1, VariantDice)
	require.NoError(t, err)
}

func TestPlayQuotaRecountedAtRecordTime(t *testing.T) {
	// A concurrent play can land between the advisory count and the recording
	// transaction. The store recounts before recording, so the play that would
	// exceed the weekly limit is refused even when the advisory count saw room.
	store := newFakeStore(500)
	svc := newTestService(store)
	svc.sample = func() float64 { return 0.9 }

	for i := 0; i < 30; i++ {
		store.records = append(store.records, store.now)
	}
	advisory := 29
	store.advisoryCount = &advisory

	_, err := svc.Play(context.Background(), 1, 10, 1, VariantDice)
	require.ErrorIs(t, err, common.ErrQuotaExhausted)
	require.Len(t, store.records, 30)
	require.Equal(t, int64(500), store.acct.Gold)
}

func TestPlayCappedWinReportsCreditedPayout(t *testing.T) {
	store := newFakeStore(990)
	svc := newTestService(store)
	svc.sample = func() float64 { return 0.01 } // slots 10x

	res, err := svc.Play(context.Background(), 1, 10, 50, VariantSlots)
	require.NoError(t, err)
	require.True(t, res.Won)
	require.True(t, res.Capped)
	require.Equal(t, int64(1000), res.NewBalance)
	// Nominal payout would be 500; the ceiling left room for only 60.
	require.Equal(t, int64(60), res.Payout)
}

func TestPlayCreditedIgnoresStaleAccountRead(t *testing.T) {
	// A concurrent spend lands after the precondition read but before the
	// recording transaction. The credited amount comes from the balance read
	// inside that transaction, not from the stale snapshot.
	store := newFakeStore(900)
	store.adjustBeforeRecord = -100
	svc := newTestService(store)
	svc.sample = func() float64 { return 0.01 } // slots 10x

	res, err := svc.Play(context.Background(), 1, 10, 50, VariantSlots)
	require.NoError(t, err)
	require.True(t, res.Won)
	require.True(t, res.Capped)
	require.Equal(t, int64(1000), res.NewBalance)
	// The ceiling left room for 200 on top of the returned stake; a report
	// based on the 900 snapshot would have claimed 150.
	require.Equal(t, int64(250), res.Payout)
}

func TestRemainingTries(t *testing.T) {
	store := newFakeStore(100)
	svc := newTestService(store)

	remaining, err := svc.RemainingTries(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 30, remaining)

	// Records from before the week start do not count.
	store.records = append(store.records, time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC))
	remaining, err = svc.RemainingTries(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 30, remaining)

	store.records = append(store.records, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	remaining, err = svc.RemainingTries(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 29, remaining)
}
