// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	deliverycontext "vanguard/internal/delivery/context"
	"vanguard/internal/domain/entity"
	domainerrors "vanguard/internal/domain/errors"
	"vanguard/internal/domain/repository"
	"vanguard/internal/domain/service"
	"vanguard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const profileCacheTTL = time.Hour

// authService implements the AuthUsecase interface.
type authService struct {
	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	hasher         service.PasswordHasher
	tokenCodec     service.AccessTokenCodec
	refreshManager service.RefreshTokenManager
	revocation     service.RevocationRegistry
	publisher      service.EventPublisher
	profileCache   service.KeyValueCache
	logger         *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	UserRepo       repository.UserRepository
	Hasher         service.PasswordHasher
	TokenCodec     service.AccessTokenCodec
	RefreshManager service.RefreshTokenManager
	Revocation     service.RevocationRegistry
	Publisher      service.EventPublisher
	ProfileCache   service.KeyValueCache `name:"profileCache"`
	Logger         *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:      params.TxManager,
		userRepo:       params.UserRepo,
		hasher:         params.Hasher,
		tokenCodec:     params.TokenCodec,
		refreshManager: params.RefreshManager,
		revocation:     params.Revocation,
		publisher:      params.Publisher,
		profileCache:   params.ProfileCache,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an unverified account and kicks off email verification.
// User, password hash and verification code land in one transaction; the
// verification event is published only after the commit succeeds.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if err := srv.hasher.ValidateStrength(input.Password); err != nil {
		return nil, err
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	rawCode, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	var registeredUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if _, err := userRepo.FindByEmail(ctx, input.Email); err == nil {
			return domainerrors.ErrEmailAlreadyInUse
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "check email availability")
		}

		user := &entity.User{
			Name:          input.Name,
			Email:         input.Email,
			PasswordHash:  passwordHash,
			Role:          entity.RoleUser,
			EmailVerified: false,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}

		verification := &entity.EmailVerification{
			UserID:    user.ID,
			TokenHash: hashVerificationCode(rawCode),
		}
		if err := repoFactory.EmailVerificationRepo().Create(ctx, verification); err != nil {
			return err
		}

		registeredUser = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Publish after commit so the mail worker never sees a user that was
	// rolled back. A publish failure surfaces to the caller; the account
	// stays committed and a later resend can recover it.
	event := &service.EmailVerificationEvent{
		ID:    registeredUser.ID.String(),
		Email: registeredUser.Email,
		Name:  registeredUser.Name,
		Token: rawCode,
	}
	if err := srv.publisher.PublishEmailVerification(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to publish verification event",
			slog.String("user_id", registeredUser.ID.String()),
			slog.String("error", err.Error()),
		)

		return nil, errors.Wrap(err, "publish verification event")
	}

	srv.log(ctx).Info("Registration completed", slog.String("user_id", registeredUser.ID.String()))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

// Login authenticates the user and issues a fresh token pair. The password
// check runs before the verification gate so credential errors and
// verification errors stay distinguishable but never leak password validity.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.TokenPairOutput, error) {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "find user for login")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, domainerrors.ErrEmailNotVerified
	}

	return srv.issueTokenPair(ctx, user)
}

// Refresh rotates the presented refresh token and issues a new access token.
// The rotation consumes the presented row, so when two callers race on the
// same token exactly one of them wins.
func (srv *authService) Refresh(ctx context.Context, input usecase.RefreshInput) (*usecase.TokenPairOutput, error) {
	token, err := srv.refreshManager.FindByToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, err
	}

	if err := srv.refreshManager.CheckNotExpired(ctx, token); err != nil {
		return nil, err
	}

	user, err := srv.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Account deleted after the token was issued.
			return nil, domainerrors.ErrRefreshTokenExpired
		}

		return nil, errors.Wrap(err, "find user for refresh")
	}

	accessToken, err := srv.tokenCodec.Issue(user)
	if err != nil {
		return nil, err
	}

	rawRefresh, _, err := srv.refreshManager.RotateFrom(ctx, token, user)
	if err != nil {
		return nil, err
	}

	return &usecase.TokenPairOutput{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		User:         user,
	}, nil
}

// Logout denylists the access token, revokes the refresh token and evicts
// the cached profile.
func (srv *authService) Logout(ctx context.Context, input usecase.LogoutInput) error {
	if err := srv.revocation.Deny(ctx, input.AccessToken); err != nil {
		return err
	}

	if err := srv.refreshManager.RevokeFor(ctx, input.UserID); err != nil {
		return err
	}

	if err := srv.profileCache.Delete(ctx, input.UserID.String()); err != nil {
		srv.log(ctx).Warn("Failed to evict cached profile",
			slog.String("user_id", input.UserID.String()),
			slog.String("error", err.Error()),
		)
	}

	srv.log(ctx).Info("User logged out", slog.String("user_id", input.UserID.String()))

	return nil
}

// GetProfile returns the user's profile, read through the cache.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.ProfileOutput, error) {
	if cached, err := srv.profileCache.Get(ctx, userID.String()); err == nil {
		var profile usecase.ProfileOutput
		if err := json.Unmarshal(cached, &profile); err == nil {
			return &profile, nil
		}
		// A corrupt entry falls through to the database read.
	} else if !errors.Is(err, service.ErrCacheMiss) {
		srv.log(ctx).Warn("Profile cache read failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "find user for profile")
	}

	profile := &usecase.ProfileOutput{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}

	if data, err := json.Marshal(profile); err == nil {
		if err := srv.profileCache.Set(ctx, userID.String(), data, profileCacheTTL); err != nil {
			srv.log(ctx).Warn("Profile cache write failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return profile, nil
}

func (srv *authService) issueTokenPair(ctx context.Context, user *entity.User) (*usecase.TokenPairOutput, error) {
	accessToken, err := srv.tokenCodec.Issue(user)
	if err != nil {
		return nil, err
	}

	rawRefresh, _, err := srv.refreshManager.IssueFor(ctx, user)
	if err != nil {
		return nil, err
	}

	return &usecase.TokenPairOutput{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		User:         user,
	}, nil
}
