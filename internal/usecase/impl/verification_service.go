package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "vanguard/internal/delivery/context"
	"vanguard/internal/domain/entity"
	domainerrors "vanguard/internal/domain/errors"
	"vanguard/internal/domain/repository"
	"vanguard/internal/domain/service"
	"vanguard/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// verificationService implements the VerificationUsecase interface.
type verificationService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	publisher    service.EventPublisher
	profileCache service.KeyValueCache
	logger       *slog.Logger
	now          func() time.Time
}

// VerificationServiceParams holds dependencies for verificationService, injected by Fx.
type VerificationServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Publisher    service.EventPublisher
	ProfileCache service.KeyValueCache `name:"profileCache"`
	Logger       *slog.Logger
}

// NewVerificationService is the constructor for verificationService.
func NewVerificationService(params VerificationServiceParams) usecase.VerificationUsecase {
	return &verificationService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		publisher:    params.Publisher,
		profileCache: params.ProfileCache,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *verificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// VerifyEmail consumes a one-time verification code. A code that was already
// consumed is rejected; replays must not look like success.
func (srv *verificationService) VerifyEmail(ctx context.Context, input usecase.VerifyEmailInput) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		verificationRepo := repoFactory.EmailVerificationRepo()

		verification, err := verificationRepo.FindByTokenHashAndUserID(ctx, hashVerificationCode(input.Token), input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrEmailVerificationNotFound) {
				return domainerrors.ErrEmailVerificationTokenInvalid
			}

			return errors.Wrap(err, "find verification")
		}

		if verification.Consumed() {
			return domainerrors.ErrEmailAlreadyVerified
		}

		now := srv.now()
		verification.VerifiedAt = &now
		if err := verificationRepo.Update(ctx, verification); err != nil {
			return err
		}

		userRepo := repoFactory.UserRepo()
		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrEmailVerificationTokenInvalid
			}

			return errors.Wrap(err, "find user for verification")
		}

		user.EmailVerified = true

		return userRepo.Update(ctx, user)
	})
	if err != nil {
		return err
	}

	// The cached profile still says unverified; drop it.
	if err := srv.profileCache.Delete(ctx, input.UserID.String()); err != nil {
		srv.log(ctx).Warn("Failed to evict cached profile",
			slog.String("user_id", input.UserID.String()),
			slog.String("error", err.Error()),
		)
	}

	srv.log(ctx).Info("Email verified", slog.String("user_id", input.UserID.String()))

	return nil
}

// ResendVerification regenerates the user's code and publishes a resend
// event. The old code stops working the moment the new hash is stored, so a
// user always holds at most one valid code.
func (srv *verificationService) ResendVerification(ctx context.Context, input usecase.ResendVerificationInput) error {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrEmailNotFound
		}

		return errors.Wrap(err, "find user for resend")
	}

	if user.EmailVerified {
		return domainerrors.ErrEmailAlreadyVerified
	}

	rawCode, err := generateVerificationCode()
	if err != nil {
		return err
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		verificationRepo := repoFactory.EmailVerificationRepo()

		verification, err := verificationRepo.FindByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrEmailVerificationNotFound) {
				// Row missing (e.g. earlier partial cleanup); recreate it.
				return verificationRepo.Create(ctx, &entity.EmailVerification{
					UserID:    user.ID,
					TokenHash: hashVerificationCode(rawCode),
				})
			}

			return errors.Wrap(err, "find verification for resend")
		}

		verification.TokenHash = hashVerificationCode(rawCode)
		verification.VerifiedAt = nil

		return verificationRepo.Update(ctx, verification)
	})
	if err != nil {
		return err
	}

	event := &service.EmailVerificationEvent{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Token: rawCode,
	}
	if err := srv.publisher.PublishEmailVerificationResend(ctx, event); err != nil {
		return errors.Wrap(err, "publish resend event")
	}

	srv.log(ctx).Info("Verification resend requested", slog.String("user_id", user.ID.String()))

	return nil
}
