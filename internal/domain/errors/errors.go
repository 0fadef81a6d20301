package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenExpired        = errors.New("token expired")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLedgerFailure       = errors.New("ledger operation failed")
	ErrTicketsSoldOut      = errors.New("no tickets available")
	ErrAlreadyOwnsTicket   = errors.New("ticket already owned")
	ErrDrawNotActive       = errors.New("draw not active")
	ErrKeysAlreadyForged   = errors.New("keys already submitted for this draw")
	ErrVotingClosed        = errors.New("voting is not open")
	ErrAlreadyVoted        = errors.New("already voted on this proposal")
	ErrNFTRequired         = errors.New("governance NFT required")
	ErrTierSoldOut         = errors.New("no NFTs available for this tier")
)

// AppError represents application error with HTTP status
type AppError struct {
	Code    int    `json:"code"`
	ErrCode string `json:"errCode,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithErrCode attaches a machine-readable error code
func (e *AppError) WithErrCode(errCode string) *AppError {
	e.ErrCode = errCode
	return e
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func RateLimited(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message, ErrRateLimited).WithErrCode("ERR_RATE_LIMITED")
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}
