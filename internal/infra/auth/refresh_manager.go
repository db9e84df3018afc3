package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"vanguard/config"
	"vanguard/internal/domain/entity"
	domainerrors "vanguard/internal/domain/errors"
	"vanguard/internal/domain/repository"
	"vanguard/internal/domain/service"
)

const (
	defaultRefreshTTL = 7 * 24 * time.Hour
	rawTokenBytes     = 32
)

// refreshTokenManager issues opaque refresh tokens backed by the database.
// Raw tokens are 256 bits from crypto/rand; only their SHA-256 hex digest is
// stored, so a database leak never exposes usable tokens.
type refreshTokenManager struct {
	txManager  repository.TransactionManager
	tokenRepo  repository.RefreshTokenRepository
	refreshTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewRefreshTokenManager is the constructor for refreshTokenManager.
func NewRefreshTokenManager(
	cfg *config.Config,
	txManager repository.TransactionManager,
	tokenRepo repository.RefreshTokenRepository,
	logger *slog.Logger,
) service.RefreshTokenManager {
	ttl := defaultRefreshTTL
	if cfg.JWT != nil && cfg.JWT.RefreshTTL > 0 {
		ttl = cfg.JWT.RefreshTTL
	}

	return &refreshTokenManager{
		txManager:  txManager,
		tokenRepo:  tokenRepo,
		refreshTTL: ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// IssueFor rotates the user's refresh token inside a single transaction:
// delete the old row, insert the new one. The unique constraint on user_id
// guarantees at most one live token per user even under concurrent logins.
func (m *refreshTokenManager) IssueFor(ctx context.Context, user *entity.User) (string, *entity.RefreshToken, error) {
	raw, err := generateRawToken()
	if err != nil {
		return "", nil, err
	}

	token := &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: m.now().Add(m.refreshTTL),
		CreatedAt: m.now(),
	}

	err = m.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		repo := factory.RefreshTokenRepo()
		if err := repo.DeleteByUserID(ctx, user.ID); err != nil {
			return errors.Wrap(err, "rotate refresh token")
		}

		return errors.Wrap(repo.Create(ctx, token), "store refresh token")
	})
	if err != nil {
		return "", nil, err
	}

	return raw, token, nil
}

// RotateFrom consumes the presented token and inserts its replacement in one
// transaction. The delete keys on the presented row's ID; when a concurrent
// rotation already consumed it, zero rows are affected and this caller loses.
func (m *refreshTokenManager) RotateFrom(ctx context.Context, presented *entity.RefreshToken, user *entity.User) (string, *entity.RefreshToken, error) {
	raw, err := generateRawToken()
	if err != nil {
		return "", nil, err
	}

	token := &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: m.now().Add(m.refreshTTL),
		CreatedAt: m.now(),
	}

	err = m.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		repo := factory.RefreshTokenRepo()
		if err := repo.DeleteByID(ctx, presented.ID); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				m.logger.Warn("Refresh token already consumed, rotation lost",
					slog.String("user_id", user.ID.String()),
				)

				return domainerrors.ErrRefreshTokenExpired
			}

			return errors.Wrap(err, "consume refresh token")
		}

		return errors.Wrap(repo.Create(ctx, token), "store refresh token")
	})
	if err != nil {
		return "", nil, err
	}

	return raw, token, nil
}

// FindByToken resolves a raw refresh token to its stored record. An unknown
// token folds into ErrRefreshTokenExpired for the client, but the miss is
// logged as such so it stays distinguishable from a real expiry.
func (m *refreshTokenManager) FindByToken(ctx context.Context, rawToken string) (*entity.RefreshToken, error) {
	token, err := m.tokenRepo.FindByTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			m.logger.Warn("Refresh token not found")

			return nil, domainerrors.ErrRefreshTokenExpired
		}

		return nil, errors.Wrap(err, "find refresh token")
	}

	return token, nil
}

// CheckNotExpired enforces the expiry rule, deleting expired rows on sight.
func (m *refreshTokenManager) CheckNotExpired(ctx context.Context, token *entity.RefreshToken) error {
	if !token.Expired(m.now()) {
		return nil
	}

	m.logger.Warn("Refresh token expired",
		slog.String("user_id", token.UserID.String()),
		slog.Time("expired_at", token.ExpiresAt),
	)

	if err := m.tokenRepo.DeleteByID(ctx, token.ID); err != nil {
		return errors.Wrap(err, "delete expired refresh token")
	}

	return domainerrors.ErrRefreshTokenExpired
}

// RevokeFor removes the user's refresh token, if any.
func (m *refreshTokenManager) RevokeFor(ctx context.Context, userID uuid.UUID) error {
	return errors.Wrap(m.tokenRepo.DeleteByUserID(ctx, userID), "revoke refresh token")
}

func generateRawToken() (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate refresh token")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
