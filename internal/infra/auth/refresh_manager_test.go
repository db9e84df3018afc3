package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"vanguard/internal/domain/entity"
	domainerrors "vanguard/internal/domain/errors"
	"vanguard/internal/domain/repository"
	mockrepo "vanguard/internal/mocks/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRefreshManager(tokenRepo *mockrepo.MockRefreshTokenRepository) (*refreshTokenManager, *mockrepo.MockTransactionManager) {
	factory := &mockrepo.MockRepositoryFactory{}
	factory.On("RefreshTokenRepo").Return(tokenRepo).Maybe()

	txManager := &mockrepo.MockTransactionManager{Factory: factory}

	manager := &refreshTokenManager{
		txManager:  txManager,
		tokenRepo:  tokenRepo,
		refreshTTL: 7 * 24 * time.Hour,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}

	return manager, txManager
}

func TestRefreshTokenManager_IssueFor_RotatesInsideTransaction(t *testing.T) {
	tokenRepo := &mockrepo.MockRefreshTokenRepository{}
	manager, txManager := newTestRefreshManager(tokenRepo)

	user := &entity.User{ID: uuid.New()}

	txManager.On("Execute", mock.Anything, mock.Anything).Return(nil)
	tokenRepo.On("DeleteByUserID", mock.Anything, user.ID).Return(nil)

	var stored *entity.RefreshToken
	tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.RefreshToken")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*entity.RefreshToken)
		}).
		Return(nil)

	raw, token, err := manager.IssueFor(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotNil(t, token)

	// The stored record only carries the digest of the raw token.
	assert.Equal(t, hashToken(raw), token.TokenHash)
	assert.Same(t, token, stored)
	assert.Equal(t, user.ID, token.UserID)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	tokenRepo.AssertExpectations(t)
}

func TestRefreshTokenManager_RotateFrom_ConsumesPresentedToken(t *testing.T) {
	tokenRepo := &mockrepo.MockRefreshTokenRepository{}
	manager, txManager := newTestRefreshManager(tokenRepo)

	user := &entity.User{ID: uuid.New()}
	presented := &entity.RefreshToken{ID: uuid.New(), UserID: user.ID}

	txManager.On("Execute", mock.Anything, mock.Anything).Return(nil)
	tokenRepo.On("DeleteByID", mock.Anything, presented.ID).Return(nil)

	var stored *entity.RefreshToken
	tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.RefreshToken")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*entity.RefreshToken)
		}).
		Return(nil)

	raw, token, err := manager.RotateFrom(context.Background(), presented, user)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, hashToken(raw), token.TokenHash)
	assert.Same(t, token, stored)

	// The presented row, not the whole user, is what gets consumed.
	tokenRepo.AssertCalled(t, "DeleteByID", mock.Anything, presented.ID)
	tokenRepo.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

func TestRefreshTokenManager_RotateFrom_OnlyOneWinnerPerToken(t *testing.T) {
	tokenRepo := &mockrepo.MockRefreshTokenRepository{}
	manager, txManager := newTestRefreshManager(tokenRepo)

	user := &entity.User{ID: uuid.New()}
	presented := &entity.RefreshToken{ID: uuid.New(), UserID: user.ID}

	txManager.On("Execute", mock.Anything, mock.Anything).Return(nil)
	// First rotation consumes the row; the second finds it gone.
	tokenRepo.On("DeleteByID", mock.Anything, presented.ID).Return(nil).Once()
	tokenRepo.On("DeleteByID", mock.Anything, presented.ID).
		Return(repository.ErrRefreshTokenNotFound)
	tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, _, err := manager.RotateFrom(context.Background(), presented, user)
	require.NoError(t, err)

	_, _, err = manager.RotateFrom(context.Background(), presented, user)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
	tokenRepo.AssertExpectations(t)
}

func TestRefreshTokenManager_FindByToken_NotFoundMapsToExpired(t *testing.T) {
	tokenRepo := &mockrepo.MockRefreshTokenRepository{}
	manager, _ := newTestRefreshManager(tokenRepo)

	tokenRepo.On("FindByTokenHash", mock.Anything, hashToken("missing-token")).
		Return(nil, repository.ErrRefreshTokenNotFound)

	_, err := manager.FindByToken(context.Background(), "missing-token")
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
}

func TestRefreshTokenManager_FindByToken_ReturnsRecord(t *testing.T) {
	tokenRepo := &mockrepo.MockRefreshTokenRepository{}
	manager, _ := newTestRefreshManager(tokenRepo)

	want := &entity.RefreshToken{ID: uuid.New(), TokenHash: hashToken("raw-token")}
	tokenRepo.On("FindByTokenHash", mock.Anything, hashToken("raw-token")).Return(want, nil)

	got, err := manager.FindByToken(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestRefreshTokenManager_CheckNotExpired(t *testing.T) {
	t.Run("live token passes", func(t *testing.T) {
		tokenRepo := &mockrepo.MockRefreshTokenRepository{}
		manager, _ := newTestRefreshManager(tokenRepo)

		token := &entity.RefreshToken{ID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
		assert.NoError(t, manager.CheckNotExpired(context.Background(), token))
	})

	t.Run("expired token is deleted and rejected", func(t *testing.T) {
		tokenRepo := &mockrepo.MockRefreshTokenRepository{}
		manager, _ := newTestRefreshManager(tokenRepo)

		token := &entity.RefreshToken{ID: uuid.New(), ExpiresAt: time.Now().Add(-time.Hour)}
		tokenRepo.On("DeleteByID", mock.Anything, token.ID).Return(nil)

		err := manager.CheckNotExpired(context.Background(), token)
		assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("delete failure surfaces", func(t *testing.T) {
		tokenRepo := &mockrepo.MockRefreshTokenRepository{}
		manager, _ := newTestRefreshManager(tokenRepo)

		token := &entity.RefreshToken{ID: uuid.New(), ExpiresAt: time.Now().Add(-time.Hour)}
		tokenRepo.On("DeleteByID", mock.Anything, token.ID).Return(errors.New("db down"))

		err := manager.CheckNotExpired(context.Background(), token)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
	})
}

func TestRefreshTokenManager_RevokeFor(t *testing.T) {
	tokenRepo := &mockrepo.MockRefreshTokenRepository{}
	manager, _ := newTestRefreshManager(tokenRepo)

	userID := uuid.New()
	tokenRepo.On("DeleteByUserID", mock.Anything, userID).Return(nil)

	assert.NoError(t, manager.RevokeFor(context.Background(), userID))
	tokenRepo.AssertExpectations(t)
}
