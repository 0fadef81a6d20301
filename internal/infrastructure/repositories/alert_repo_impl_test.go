package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
)

func TestAlertRepository_ReadFlow(t *testing.T) {
	db := newTestDB(t)
	createAlertTable(t, db)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		alert := &entities.Alert{
			ID:        uuid.New(),
			UserID:    userID,
			Category:  entities.AlertDraw,
			Title:     "Draw ending soon",
			Message:   "Forge your keys before the cutoff",
			CreatedAt: time.Now(),
		}
		require.NoError(t, repo.Create(ctx, alert))
	}

	unread, total, err := repo.GetByUserID(ctx, userID, true, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, unread, 3)

	require.NoError(t, repo.MarkRead(ctx, unread[0].ID, userID))

	_, total, err = repo.GetByUserID(ctx, userID, true, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	// marking someone else's alert is a not-found, not a silent success
	require.ErrorIs(t, repo.MarkRead(ctx, unread[1].ID, uuid.New()), domainerrors.ErrNotFound)

	require.NoError(t, repo.MarkAllRead(ctx, userID))
	_, total, err = repo.GetByUserID(ctx, userID, true, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)

	_, total, err = repo.GetByUserID(ctx, userID, false, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
}
