package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/domain/repositories"
	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/pkg/crypto"
	"astraldraw.backend/pkg/jwt"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/redis"
	"astraldraw.backend/pkg/utils"
)

// AuthResponse bundles user and tokens returned by login and register
type AuthResponse struct {
	User   *entities.User `json:"user"`
	Wallet *entities.Wallet `json:"wallet,omitempty"`
	Tokens *jwt.TokenPair `json:"tokens"`
}

// AuthUsecase handles registration, login and token refresh
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	walletRepo repositories.WalletRepository
	uow        repositories.UnitOfWork
	gateway    ledger.Gateway
	keyCipher  *crypto.KeyCipher
	jwtService *jwt.JWTService
	tokenID    string
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletRepository,
	uow repositories.UnitOfWork,
	gateway ledger.Gateway,
	keyCipher *crypto.KeyCipher,
	jwtService *jwt.JWTService,
	tokenID string,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		uow:        uow,
		gateway:    gateway,
		keyCipher:  keyCipher,
		jwtService: jwtService,
		tokenID:    tokenID,
	}
}

// Register creates a user plus a custodial wallet with a ledger account.
// The ledger account is provisioned before the DB transaction so a DB
// failure never leaves an unrecorded account holding user funds in the
// other direction.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*AuthResponse, error) {
	if input.Password != input.ConfirmPassword {
		return nil, domainerrors.BadRequest("passwords do not match")
	}

	_, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, domainerrors.NewAppError(409, "email already registered", domainerrors.ErrAlreadyExists)
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	keypair, err := ledger.GenerateKeypair()
	if err != nil {
		return nil, err
	}

	encKey, err := u.keyCipher.Encrypt(keypair.PrivateKey)
	if err != nil {
		return nil, err
	}

	account, err := u.gateway.CreateAccount(ctx, keypair.PublicKey)
	if err != nil {
		logger.Error(ctx, "ledger account provisioning failed", zap.Error(err))
		return nil, domainerrors.NewAppError(502, "could not provision ledger account", domainerrors.ErrLedgerFailure)
	}

	if _, err := u.gateway.AssociateToken(ctx, account.AccountID, encKey, u.tokenID); err != nil {
		logger.Error(ctx, "token association failed", zap.String("account", account.AccountID), zap.Error(err))
		return nil, domainerrors.NewAppError(502, "could not associate platform token", domainerrors.ErrLedgerFailure)
	}

	now := time.Now()
	user := &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: passwordHash,
		Role:         entities.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	wallet := &entities.Wallet{
		ID:            utils.GenerateUUIDv7(),
		UserID:        user.ID,
		FiatBalance:   decimal.Zero,
		PublicKey:     keypair.PublicKey,
		PrivateKeyEnc: encKey,
		AccountID:     account.AccountID,
		CreatedAt:     now,
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return u.walletRepo.Create(ctx, wallet)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.NewAppError(409, "email already registered", domainerrors.ErrAlreadyExists)
		}
		return nil, err
	}

	tokens, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("account_id", account.AccountID))

	return &AuthResponse{User: user, Wallet: wallet, Tokens: tokens}, nil
}

// Login authenticates a user. Failed attempts are throttled per email
// so credential stuffing burns out quickly.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*AuthResponse, error) {
	failKey := fmt.Sprintf("login_failures:%s", input.Email)
	if raw, err := redis.Get(ctx, failKey); err == nil {
		if failures, convErr := strconv.Atoi(raw); convErr == nil && failures >= LoginMaxFailures {
			return nil, domainerrors.RateLimited("too many failed login attempts, try again later")
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			u.recordLoginFailure(ctx, failKey)
			return nil, domainerrors.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		u.recordLoginFailure(ctx, failKey)
		return nil, domainerrors.Unauthorized("invalid credentials")
	}

	if err := redis.Del(ctx, failKey); err != nil {
		logger.Warn(ctx, "failed to reset login failure counter", zap.Error(err))
	}

	tokens, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	wallet, err := u.walletRepo.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	return &AuthResponse{User: user, Wallet: wallet, Tokens: tokens}, nil
}

func (u *AuthUsecase) recordLoginFailure(ctx context.Context, key string) {
	count, err := redis.Incr(ctx, key)
	if err != nil {
		logger.Warn(ctx, "failed to record login failure", zap.Error(err))
		return
	}
	if count == 1 {
		if err := redis.Expire(ctx, key, LoginFailureWindow); err != nil {
			logger.Warn(ctx, "failed to expire login failure counter", zap.Error(err))
		}
	}
}

// Refresh exchanges a valid refresh token for a new token pair
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Email, user.Role)
}

// Me returns the authenticated user's profile
func (u *AuthUsecase) Me(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}
