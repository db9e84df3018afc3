// Package repository contains testify mocks for the domain repository interfaces.
package repository

import (
	"context"
	"time"

	"vanguard/internal/domain/entity"
	"vanguard/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) DeleteUnverifiedCreatedBefore(ctx context.Context, limit time.Time) (int64, error) {
	args := m.Called(ctx, limit)

	return args.Get(0).(int64), args.Error(1)
}

// MockRefreshTokenRepository mocks repository.RefreshTokenRepository.
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if token, ok := args.Get(0).(*entity.RefreshToken); ok {
		return token, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

// MockEmailVerificationRepository mocks repository.EmailVerificationRepository.
type MockEmailVerificationRepository struct {
	mock.Mock
}

func (m *MockEmailVerificationRepository) Create(ctx context.Context, verification *entity.EmailVerification) error {
	return m.Called(ctx, verification).Error(0)
}

func (m *MockEmailVerificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.EmailVerification, error) {
	args := m.Called(ctx, userID)
	if verification, ok := args.Get(0).(*entity.EmailVerification); ok {
		return verification, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockEmailVerificationRepository) FindByTokenHashAndUserID(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.EmailVerification, error) {
	args := m.Called(ctx, tokenHash, userID)
	if verification, ok := args.Get(0).(*entity.EmailVerification); ok {
		return verification, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockEmailVerificationRepository) Update(ctx context.Context, verification *entity.EmailVerification) error {
	return m.Called(ctx, verification).Error(0)
}

// MockRepositoryFactory mocks repository.RepositoryFactory.
type MockRepositoryFactory struct {
	mock.Mock
}

func (m *MockRepositoryFactory) UserRepo() repository.UserRepository {
	return m.Called().Get(0).(repository.UserRepository)
}

func (m *MockRepositoryFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return m.Called().Get(0).(repository.RefreshTokenRepository)
}

func (m *MockRepositoryFactory) EmailVerificationRepo() repository.EmailVerificationRepository {
	return m.Called().Get(0).(repository.EmailVerificationRepository)
}

// MockTransactionManager mocks repository.TransactionManager. The callback
// receives the configured factory so tests can intercept repository calls
// made inside the transaction.
type MockTransactionManager struct {
	mock.Mock

	Factory repository.RepositoryFactory
}

func (m *MockTransactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)
	if m.Factory != nil {
		if err := fn(m.Factory); err != nil {
			return err
		}
	}

	return args.Error(0)
}
