package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/pkg/crypto"
	"astraldraw.backend/pkg/jwt"
)

func newAuthEnv(t *testing.T, gw *fakeGateway) (*AuthUsecase, *repositories.UserRepository, *repositories.WalletRepository) {
	t.Helper()
	db := newTestDB(t)
	createUserTable(t, db)
	createWalletTable(t, db)
	newTestRedis(t)

	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	uow := repositories.NewUnitOfWork(db)

	cipher, err := crypto.NewKeyCipher("test-encryption-secret")
	require.NoError(t, err)
	jwtService := jwt.NewJWTService("test-jwt-secret", 15*time.Minute, 7*24*time.Hour)

	uc := NewAuthUsecase(userRepo, walletRepo, uow, gw, cipher, jwtService, "0.0.1111")
	return uc, userRepo, walletRepo
}

func registerInput(email string) *entities.RegisterInput {
	return &entities.RegisterInput{
		Email:           email,
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Password:        "sup3r-secret",
		ConfirmPassword: "sup3r-secret",
	}
}

func TestAuthUsecase_Register(t *testing.T) {
	gw := &fakeGateway{}
	uc, userRepo, walletRepo := newAuthEnv(t, gw)
	ctx := context.Background()

	resp, err := uc.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Tokens.AccessToken)
	require.NotEmpty(t, resp.Tokens.RefreshToken)
	require.Equal(t, entities.RoleUser, resp.User.Role)
	require.Equal(t, "0.0.1234", resp.Wallet.AccountID)
	require.True(t, crypto.IsEncrypted(resp.Wallet.PrivateKeyEnc), "private key must be stored encrypted")

	user, err := userRepo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	wallet, err := walletRepo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, resp.Wallet.ID, wallet.ID)
}

func TestAuthUsecase_Register_PasswordMismatch(t *testing.T) {
	uc, _, _ := newAuthEnv(t, &fakeGateway{})

	input := registerInput("ada@example.com")
	input.ConfirmPassword = "different"
	_, err := uc.Register(context.Background(), input)
	require.Error(t, err)
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	uc, _, _ := newAuthEnv(t, &fakeGateway{})
	ctx := context.Background()

	_, err := uc.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)

	_, err = uc.Register(ctx, registerInput("ada@example.com"))
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthUsecase_Register_LedgerFailure(t *testing.T) {
	gw := &fakeGateway{
		createAccountFn: func(ctx context.Context, publicKey string) (*ledger.AccountResult, error) {
			return nil, errors.New("bridge down")
		},
	}
	uc, userRepo, _ := newAuthEnv(t, gw)
	ctx := context.Background()

	_, err := uc.Register(ctx, registerInput("ada@example.com"))
	require.ErrorIs(t, err, domainerrors.ErrLedgerFailure)

	// no orphan user row
	_, err = userRepo.GetByEmail(ctx, "ada@example.com")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAuthUsecase_Login(t *testing.T) {
	uc, _, _ := newAuthEnv(t, &fakeGateway{})
	ctx := context.Background()

	_, err := uc.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)

	resp, err := uc.Login(ctx, &entities.LoginInput{Email: "ada@example.com", Password: "sup3r-secret"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Tokens.AccessToken)
	require.NotNil(t, resp.Wallet)

	_, err = uc.Login(ctx, &entities.LoginInput{Email: "ada@example.com", Password: "wrong"})
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthUsecase_Login_Throttled(t *testing.T) {
	uc, _, _ := newAuthEnv(t, &fakeGateway{})
	ctx := context.Background()

	_, err := uc.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)

	bad := &entities.LoginInput{Email: "ada@example.com", Password: "wrong"}
	for i := 0; i < LoginMaxFailures; i++ {
		_, err := uc.Login(ctx, bad)
		require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	}

	// even the correct password is rejected once the counter trips
	_, err = uc.Login(ctx, &entities.LoginInput{Email: "ada@example.com", Password: "sup3r-secret"})
	require.ErrorIs(t, err, domainerrors.ErrRateLimited)
}

func TestAuthUsecase_Refresh(t *testing.T) {
	uc, _, _ := newAuthEnv(t, &fakeGateway{})
	ctx := context.Background()

	resp, err := uc.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)

	pair, err := uc.Refresh(ctx, resp.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	_, err = uc.Refresh(ctx, "not-a-token")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	// an access token is not a refresh token
	_, err = uc.Refresh(ctx, resp.Tokens.AccessToken)
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
