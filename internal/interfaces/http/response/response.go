package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "astraldraw.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// sentinelStatus maps bare domain errors to HTTP statuses so that
// repositories and usecases can return sentinels without wrapping
var sentinelStatus = []struct {
	err    error
	status int
}{
	{domainerrors.ErrNotFound, http.StatusNotFound},
	{domainerrors.ErrAlreadyExists, http.StatusConflict},
	{domainerrors.ErrAlreadyOwnsTicket, http.StatusConflict},
	{domainerrors.ErrKeysAlreadyForged, http.StatusConflict},
	{domainerrors.ErrTicketsSoldOut, http.StatusConflict},
	{domainerrors.ErrTierSoldOut, http.StatusConflict},
	{domainerrors.ErrAlreadyVoted, http.StatusConflict},
	{domainerrors.ErrVotingClosed, http.StatusConflict},
	{domainerrors.ErrDrawNotActive, http.StatusConflict},
	{domainerrors.ErrInvalidInput, http.StatusBadRequest},
	{domainerrors.ErrBadRequest, http.StatusBadRequest},
	{domainerrors.ErrUnauthorized, http.StatusUnauthorized},
	{domainerrors.ErrInvalidCredentials, http.StatusUnauthorized},
	{domainerrors.ErrTokenExpired, http.StatusUnauthorized},
	{domainerrors.ErrForbidden, http.StatusForbidden},
	{domainerrors.ErrNFTRequired, http.StatusForbidden},
	{domainerrors.ErrRateLimited, http.StatusTooManyRequests},
	{domainerrors.ErrInsufficientBalance, http.StatusPaymentRequired},
	{domainerrors.ErrLedgerFailure, http.StatusBadGateway},
}

// Error sends an error response
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = domainerrors.InternalError(err)
		for _, m := range sentinelStatus {
			if errors.Is(err, m.err) {
				appErr = domainerrors.NewAppError(m.status, m.err.Error(), err)
				break
			}
		}
	}

	body := gin.H{"message": appErr.Message, "error": appErr.Message}
	if appErr.ErrCode != "" {
		body["code"] = appErr.ErrCode
	}
	c.JSON(appErr.Code, body)
}
