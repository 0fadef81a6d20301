package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"astraldraw.backend/internal/domain/entities"
	infraRepos "astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/pkg/utils"
)

func newAlertRouter(env *handlerEnv, userID uuid.UUID) *gin.Engine {
	h := NewAlertHandler(env.alert)
	r := gin.New()
	auth := withUser(userID)
	r.GET("/alerts", auth, h.List)
	r.POST("/alerts/read-all", auth, h.MarkAllRead)
	r.POST("/alerts/:id/read", auth, h.MarkRead)
	return r
}

func TestAlertHandler_ReadFlow(t *testing.T) {
	env := newHandlerEnv(t)
	userID, _ := env.register(t, "alerts@astraldraw.io")
	r := newAlertRouter(env, userID)

	alertRepo := infraRepos.NewAlertRepository(env.db)
	first := &entities.Alert{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		Category:  entities.AlertSystem,
		Title:     "Welcome",
		Message:   "Your account is ready",
		CreatedAt: time.Now(),
	}
	require.NoError(t, alertRepo.Create(context.Background(), first))
	require.NoError(t, alertRepo.Create(context.Background(), &entities.Alert{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		Category:  entities.AlertDraw,
		Title:     "Draw open",
		Message:   "A new draw is accepting entries",
		CreatedAt: time.Now(),
	}))

	w := doJSON(t, r, http.MethodGet, "/alerts?unread=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total":2`)

	w = doJSON(t, r, http.MethodPost, "/alerts/"+first.ID.String()+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/alerts?unread=true", nil)
	require.Contains(t, w.Body.String(), `"total":1`)

	w = doJSON(t, r, http.MethodPost, "/alerts/read-all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/alerts?unread=true", nil)
	require.Contains(t, w.Body.String(), `"total":0`)
}

func TestStatsHandler_PlatformStats(t *testing.T) {
	env := newHandlerEnv(t)
	env.register(t, "stats@astraldraw.io")

	h := NewStatsHandler(env.stats)
	r := gin.New()
	r.GET("/stats", h.GetPlatformStats)

	w := doJSON(t, r, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"totalUsers":1`)
}
