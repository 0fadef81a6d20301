package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	domainerrors "astraldraw.backend/internal/domain/errors"
)

func record(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, err)
	return w
}

func TestError_AppErrorKeepsItsStatus(t *testing.T) {
	w := record(domainerrors.NotFound("draw not found"))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "draw not found")
}

func TestError_MapsBareSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domainerrors.ErrNotFound, http.StatusNotFound},
		{domainerrors.ErrAlreadyExists, http.StatusConflict},
		{domainerrors.ErrAlreadyVoted, http.StatusConflict},
		{domainerrors.ErrInsufficientBalance, http.StatusPaymentRequired},
		{domainerrors.ErrRateLimited, http.StatusTooManyRequests},
		{domainerrors.ErrUnauthorized, http.StatusUnauthorized},
		{domainerrors.ErrLedgerFailure, http.StatusBadGateway},
	}
	for _, tc := range cases {
		w := record(tc.err)
		require.Equal(t, tc.status, w.Code, "sentinel %v", tc.err)
	}

	// wrapped sentinels map the same way
	w := record(fmt.Errorf("loading venture: %w", domainerrors.ErrNotFound))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestError_UnknownErrorIs500(t *testing.T) {
	w := record(errors.New("disk on fire"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "disk on fire", "internals stay hidden")
}
