package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
)

func seedDraw(t *testing.T, repo *DrawRepository, status entities.DrawStatus, drawAt time.Time) *entities.Draw {
	t.Helper()
	d := &entities.Draw{
		ID:        uuid.New(),
		Title:     "Genesis Draw",
		Symbol:    "ASTRA",
		PrizePool: decimal.NewFromInt(50000),
		DrawAt:    drawAt,
		Status:    status,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}

func TestDrawRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	createDrawTables(t, db)
	repo := NewDrawRepository(db)
	ctx := context.Background()

	d := seedDraw(t, repo, entities.DrawStatusActive, time.Now().Add(time.Hour))

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.Equal(t, d.ID, active.ID)

	winnerWallet := uuid.New()
	active.Status = entities.DrawStatusEnded
	active.StarKeys = []int{1, 2, 3, 4, 5, 6}
	active.RevealSeed = null.StringFrom("seed")
	active.WinnerWalletID = &winnerWallet
	active.WinningTicketSerial = null.StringFrom("AK0001")
	active.TotalPrizeDistributed = decimal.NewFromInt(35000)
	require.NoError(t, repo.Update(ctx, active))

	ended, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, entities.DrawStatusEnded, ended.Status)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, ended.StarKeys)
	require.Equal(t, winnerWallet, *ended.WinnerWalletID)
	require.True(t, ended.TotalPrizeDistributed.Equal(decimal.NewFromInt(35000)))

	_, err = repo.GetActive(ctx)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDrawRepository_DueAndUpcoming(t *testing.T) {
	db := newTestDB(t)
	createDrawTables(t, db)
	repo := NewDrawRepository(db)
	ctx := context.Background()

	past := seedDraw(t, repo, entities.DrawStatusActive, time.Now().Add(-time.Minute))
	seedDraw(t, repo, entities.DrawStatusActive, time.Now().Add(time.Hour))
	next := seedDraw(t, repo, entities.DrawStatusUpcoming, time.Now().Add(2*time.Hour))
	seedDraw(t, repo, entities.DrawStatusUpcoming, time.Now().Add(3*time.Hour))

	due, err := repo.ListDue(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, past.ID, due[0].ID)

	upcoming, err := repo.NextUpcoming(ctx)
	require.NoError(t, err)
	require.Equal(t, next.ID, upcoming.ID)
}

func TestDrawRepository_ListRecentWinners(t *testing.T) {
	db := newTestDB(t)
	createDrawTables(t, db)
	repo := NewDrawRepository(db)
	ctx := context.Background()

	older := seedDraw(t, repo, entities.DrawStatusEnded, time.Now().Add(-48*time.Hour))
	newer := seedDraw(t, repo, entities.DrawStatusEnded, time.Now().Add(-24*time.Hour))
	noWinner := seedDraw(t, repo, entities.DrawStatusEnded, time.Now().Add(-12*time.Hour))
	seedDraw(t, repo, entities.DrawStatusActive, time.Now().Add(time.Hour))

	for _, d := range []*entities.Draw{older, newer} {
		wallet := uuid.New()
		d.WinnerWalletID = &wallet
		d.WinningTicketSerial = null.StringFrom("AK0001")
		d.TotalPrizeDistributed = decimal.NewFromInt(35000)
		require.NoError(t, repo.Update(ctx, d))
	}

	winners, err := repo.ListRecentWinners(ctx, 10)
	require.NoError(t, err)
	require.Len(t, winners, 2)
	require.Equal(t, newer.ID, winners[0].ID)
	require.Equal(t, older.ID, winners[1].ID)
	for _, w := range winners {
		require.NotEqual(t, noWinner.ID, w.ID)
	}

	winners, err = repo.ListRecentWinners(ctx, 1)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	require.Equal(t, newer.ID, winners[0].ID)
}

func TestForgedKeyRepository_OneEntryPerWallet(t *testing.T) {
	db := newTestDB(t)
	createDrawTables(t, db)
	repo := NewForgedKeyRepository(db)
	ctx := context.Background()

	walletID := uuid.New()
	drawID := uuid.New()

	key := &entities.ForgedKey{
		ID:           uuid.New(),
		WalletID:     walletID,
		DrawID:       drawID,
		SerialNumber: entities.ForgedKeySerial(drawID, walletID, 1),
		StarKeys:     []int{0, 9, 4, 2, 7, 1},
		NFTSerial:    1,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(ctx, key))

	dup := &entities.ForgedKey{
		ID:           uuid.New(),
		WalletID:     walletID,
		DrawID:       drawID,
		SerialNumber: entities.ForgedKeySerial(drawID, walletID, 2),
		StarKeys:     []int{1, 1, 1, 1, 1, 1},
		NFTSerial:    2,
		CreatedAt:    time.Now(),
	}
	require.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrKeysAlreadyForged)

	got, err := repo.GetByWalletAndDraw(ctx, walletID, drawID)
	require.NoError(t, err)
	require.Equal(t, []int{0, 9, 4, 2, 7, 1}, got.StarKeys)

	count, err := repo.CountByDrawID(ctx, drawID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestForgedKeyRepository_OrderingAndDelete(t *testing.T) {
	db := newTestDB(t)
	createDrawTables(t, db)
	repo := NewForgedKeyRepository(db)
	ctx := context.Background()

	drawID := uuid.New()
	base := time.Now().Add(-time.Hour)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		walletID := uuid.New()
		key := &entities.ForgedKey{
			ID:           uuid.New(),
			WalletID:     walletID,
			DrawID:       drawID,
			SerialNumber: entities.ForgedKeySerial(drawID, walletID, int64(i+1)),
			StarKeys:     []int{i, i, i, i, i, i},
			NFTSerial:    int64(i + 1),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, key))
		ids = append(ids, key.ID)
	}

	keys, err := repo.GetByDrawID(ctx, drawID)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	require.Equal(t, ids[0], keys[0].ID)
	require.Equal(t, ids[2], keys[2].ID)

	require.NoError(t, repo.Delete(ctx, ids[1]))
	keys, err = repo.GetByDrawID(ctx, drawID)
	require.NoError(t, err)
	require.Len(t, keys, 2)

	require.ErrorIs(t, repo.Delete(ctx, ids[1]), domainerrors.ErrNotFound)
}
