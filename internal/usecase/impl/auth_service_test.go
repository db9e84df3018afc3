package impl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"vanguard/internal/domain/entity"
	domainerrors "vanguard/internal/domain/errors"
	"vanguard/internal/domain/repository"
	"vanguard/internal/domain/service"
	mockrepo "vanguard/internal/mocks/repository"
	mocksvc "vanguard/internal/mocks/service"
	"vanguard/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authServiceFixture struct {
	svc usecase.AuthUsecase

	txManager      *mockrepo.MockTransactionManager
	userRepo       *mockrepo.MockUserRepository
	verifRepo      *mockrepo.MockEmailVerificationRepository
	hasher         *mocksvc.MockPasswordHasher
	tokenCodec     *mocksvc.MockAccessTokenCodec
	refreshManager *mocksvc.MockRefreshTokenManager
	revocation     *mocksvc.MockRevocationRegistry
	publisher      *mocksvc.MockEventPublisher
	profileCache   *mocksvc.MockKeyValueCache
}

func newAuthServiceFixture() *authServiceFixture {
	f := &authServiceFixture{
		userRepo:       &mockrepo.MockUserRepository{},
		verifRepo:      &mockrepo.MockEmailVerificationRepository{},
		hasher:         &mocksvc.MockPasswordHasher{},
		tokenCodec:     &mocksvc.MockAccessTokenCodec{},
		refreshManager: &mocksvc.MockRefreshTokenManager{},
		revocation:     &mocksvc.MockRevocationRegistry{},
		publisher:      &mocksvc.MockEventPublisher{},
		profileCache:   &mocksvc.MockKeyValueCache{},
	}

	factory := &mockrepo.MockRepositoryFactory{}
	factory.On("UserRepo").Return(f.userRepo).Maybe()
	factory.On("EmailVerificationRepo").Return(f.verifRepo).Maybe()

	f.txManager = &mockrepo.MockTransactionManager{Factory: factory}

	f.svc = NewAuthService(AuthServiceParams{
		TxManager:      f.txManager,
		UserRepo:       f.userRepo,
		Hasher:         f.hasher,
		TokenCodec:     f.tokenCodec,
		RefreshManager: f.refreshManager,
		Revocation:     f.revocation,
		Publisher:      f.publisher,
		ProfileCache:   f.profileCache,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return f
}

func verifiedUser() *entity.User {
	return &entity.User{
		ID:            uuid.New(),
		Name:          "Test User",
		Email:         "test@example.com",
		PasswordHash:  "stored-hash",
		Role:          entity.RoleUser,
		EmailVerified: true,
	}
}

func TestAuthService_Register(t *testing.T) {
	input := usecase.RegisterInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "Password123",
	}

	t.Run("success publishes verification event after commit", func(t *testing.T) {
		f := newAuthServiceFixture()

		f.hasher.On("ValidateStrength", input.Password).Return(nil)
		f.hasher.On("Hash", input.Password).Return("hashed-password", nil)

		f.txManager.On("Execute", mock.Anything, mock.Anything).Return(nil)
		f.userRepo.On("FindByEmail", mock.Anything, input.Email).Return(nil, repository.ErrUserNotFound)

		userID := uuid.New()
		f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*entity.User).ID = userID
			}).
			Return(nil)

		var storedVerification *entity.EmailVerification
		f.verifRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.EmailVerification")).
			Run(func(args mock.Arguments) {
				storedVerification = args.Get(1).(*entity.EmailVerification)
			}).
			Return(nil)

		var published *service.EmailVerificationEvent
		f.publisher.On("PublishEmailVerification", mock.Anything, mock.AnythingOfType("*service.EmailVerificationEvent")).
			Run(func(args mock.Arguments) {
				published = args.Get(1).(*service.EmailVerificationEvent)
			}).
			Return(nil)

		output, err := f.svc.Register(context.Background(), input)
		require.NoError(t, err)
		require.NotNil(t, output)
		assert.Equal(t, userID, output.User.ID)
		assert.Equal(t, "hashed-password", output.User.PasswordHash)
		assert.False(t, output.User.EmailVerified)

		// The event carries the raw code whose hash was persisted.
		require.NotNil(t, published)
		require.NotNil(t, storedVerification)
		assert.Equal(t, userID.String(), published.ID)
		assert.Equal(t, hashVerificationCode(published.Token), storedVerification.TokenHash)
		assert.Equal(t, userID, storedVerification.UserID)
	})

	t.Run("email already in use", func(t *testing.T) {
		f := newAuthServiceFixture()

		f.hasher.On("ValidateStrength", input.Password).Return(nil)
		f.hasher.On("Hash", input.Password).Return("hashed-password", nil)

		f.txManager.On("Execute", mock.Anything, mock.Anything).Return(nil)
		f.userRepo.On("FindByEmail", mock.Anything, input.Email).Return(verifiedUser(), nil)

		_, err := f.svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyInUse)
		f.publisher.AssertNotCalled(t, "PublishEmailVerification", mock.Anything, mock.Anything)
	})

	t.Run("weak password is rejected before any work", func(t *testing.T) {
		f := newAuthServiceFixture()

		f.hasher.On("ValidateStrength", "weak").Return(domainerrors.ErrPasswordStrength)

		_, err := f.svc.Register(context.Background(), usecase.RegisterInput{
			Name:     input.Name,
			Email:    input.Email,
			Password: "weak",
		})
		assert.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
		f.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("publish failure surfaces to the caller", func(t *testing.T) {
		f := newAuthServiceFixture()

		f.hasher.On("ValidateStrength", input.Password).Return(nil)
		f.hasher.On("Hash", input.Password).Return("hashed-password", nil)

		f.txManager.On("Execute", mock.Anything, mock.Anything).Return(nil)
		f.userRepo.On("FindByEmail", mock.Anything, input.Email).Return(nil, repository.ErrUserNotFound)
		f.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.verifRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("PublishEmailVerification", mock.Anything, mock.Anything).
			Return(assert.AnError)

		// The account stays committed, but the request must not report
		// success when no mail will ever be attempted.
		_, err := f.svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success issues a token pair", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := verifiedUser()

		f.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		f.hasher.On("Check", "Password123", user.PasswordHash).Return(true)
		f.tokenCodec.On("Issue", user).Return("access-token", nil)
		f.refreshManager.On("IssueFor", mock.Anything, user).
			Return("refresh-token", &entity.RefreshToken{UserID: user.ID}, nil)

		output, err := f.svc.Login(context.Background(), usecase.LoginInput{
			Email:    user.Email,
			Password: "Password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "access-token", output.AccessToken)
		assert.Equal(t, "refresh-token", output.RefreshToken)
		assert.Same(t, user, output.User)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthServiceFixture()

		f.userRepo.On("FindByEmail", mock.Anything, "nobody@example.com").
			Return(nil, repository.ErrUserNotFound)

		_, err := f.svc.Login(context.Background(), usecase.LoginInput{
			Email:    "nobody@example.com",
			Password: "Password123",
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := verifiedUser()

		f.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		f.hasher.On("Check", "wrong", user.PasswordHash).Return(false)

		_, err := f.svc.Login(context.Background(), usecase.LoginInput{
			Email:    user.Email,
			Password: "wrong",
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("unverified email is gated after the password check", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := verifiedUser()
		user.EmailVerified = false

		f.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		f.hasher.On("Check", "Password123", user.PasswordHash).Return(true)

		_, err := f.svc.Login(context.Background(), usecase.LoginInput{
			Email:    user.Email,
			Password: "Password123",
		})
		assert.ErrorIs(t, err, domainerrors.ErrEmailNotVerified)
		f.tokenCodec.AssertNotCalled(t, "Issue", mock.Anything)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("success rotates the token pair", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := verifiedUser()
		stored := &entity.RefreshToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(time.Hour),
		}

		f.refreshManager.On("FindByToken", mock.Anything, "raw-refresh").Return(stored, nil)
		f.refreshManager.On("CheckNotExpired", mock.Anything, stored).Return(nil)
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		f.tokenCodec.On("Issue", user).Return("new-access", nil)
		f.refreshManager.On("RotateFrom", mock.Anything, stored, user).
			Return("new-refresh", &entity.RefreshToken{UserID: user.ID}, nil)

		output, err := f.svc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "raw-refresh"})
		require.NoError(t, err)
		assert.Equal(t, "new-access", output.AccessToken)
		assert.Equal(t, "new-refresh", output.RefreshToken)
		// Rotation consumes the presented row rather than sweeping the user.
		f.refreshManager.AssertNotCalled(t, "IssueFor", mock.Anything, mock.Anything)
	})

	t.Run("losing a rotation race fails the request", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := verifiedUser()
		stored := &entity.RefreshToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(time.Hour),
		}

		f.refreshManager.On("FindByToken", mock.Anything, "raw-refresh").Return(stored, nil)
		f.refreshManager.On("CheckNotExpired", mock.Anything, stored).Return(nil)
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		f.tokenCodec.On("Issue", user).Return("new-access", nil)
		// A concurrent refresh consumed the row between lookup and rotation.
		f.refreshManager.On("RotateFrom", mock.Anything, stored, user).
			Return("", nil, domainerrors.ErrRefreshTokenExpired)

		_, err := f.svc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "raw-refresh"})
		assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newAuthServiceFixture()

		f.refreshManager.On("FindByToken", mock.Anything, "unknown").
			Return(nil, domainerrors.ErrRefreshTokenExpired)

		_, err := f.svc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "unknown"})
		assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
	})

	t.Run("user deleted after issue", func(t *testing.T) {
		f := newAuthServiceFixture()
		stored := &entity.RefreshToken{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			ExpiresAt: time.Now().Add(time.Hour),
		}

		f.refreshManager.On("FindByToken", mock.Anything, "raw-refresh").Return(stored, nil)
		f.refreshManager.On("CheckNotExpired", mock.Anything, stored).Return(nil)
		f.userRepo.On("FindByID", mock.Anything, stored.UserID).
			Return(nil, repository.ErrUserNotFound)

		_, err := f.svc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "raw-refresh"})
		assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("denylists, revokes and evicts", func(t *testing.T) {
		f := newAuthServiceFixture()
		userID := uuid.New()

		f.revocation.On("Deny", mock.Anything, "access-token").Return(nil)
		f.refreshManager.On("RevokeFor", mock.Anything, userID).Return(nil)
		f.profileCache.On("Delete", mock.Anything, userID.String()).Return(nil)

		err := f.svc.Logout(context.Background(), usecase.LogoutInput{
			UserID:      userID,
			AccessToken: "access-token",
		})
		require.NoError(t, err)
		f.revocation.AssertExpectations(t)
		f.refreshManager.AssertExpectations(t)
	})

	t.Run("cache eviction failure is tolerated", func(t *testing.T) {
		f := newAuthServiceFixture()
		userID := uuid.New()

		f.revocation.On("Deny", mock.Anything, "access-token").Return(nil)
		f.refreshManager.On("RevokeFor", mock.Anything, userID).Return(nil)
		f.profileCache.On("Delete", mock.Anything, userID.String()).Return(assert.AnError)

		err := f.svc.Logout(context.Background(), usecase.LogoutInput{
			UserID:      userID,
			AccessToken: "access-token",
		})
		assert.NoError(t, err)
	})
}

func TestAuthService_GetProfile(t *testing.T) {
	t.Run("cache hit skips the database", func(t *testing.T) {
		f := newAuthServiceFixture()
		userID := uuid.New()

		cached, err := json.Marshal(&usecase.ProfileOutput{
			ID:            userID,
			Name:          "Cached User",
			Email:         "cached@example.com",
			Role:          entity.RoleUser,
			EmailVerified: true,
		})
		require.NoError(t, err)
		f.profileCache.On("Get", mock.Anything, userID.String()).Return(cached, nil)

		profile, err := f.svc.GetProfile(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, "Cached User", profile.Name)
		f.userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("cache miss reads the database and fills the cache", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := verifiedUser()

		f.profileCache.On("Get", mock.Anything, user.ID.String()).Return(nil, service.ErrCacheMiss)
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		f.profileCache.On("Set", mock.Anything, user.ID.String(), mock.Anything, profileCacheTTL).Return(nil)

		profile, err := f.svc.GetProfile(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, profile.Email)
		f.profileCache.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthServiceFixture()
		userID := uuid.New()

		f.profileCache.On("Get", mock.Anything, userID.String()).Return(nil, service.ErrCacheMiss)
		f.userRepo.On("FindByID", mock.Anything, userID).Return(nil, repository.ErrUserNotFound)

		_, err := f.svc.GetProfile(context.Background(), userID)
		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}
