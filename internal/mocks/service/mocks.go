// Package service contains testify mocks for the domain service interfaces.
package service

import (
	"context"
	"time"

	"vanguard/internal/domain/entity"
	"vanguard/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPasswordHasher mocks service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

func (m *MockPasswordHasher) ValidateStrength(password string) error {
	return m.Called(password).Error(0)
}

// MockAccessTokenCodec mocks service.AccessTokenCodec.
type MockAccessTokenCodec struct {
	mock.Mock
}

func (m *MockAccessTokenCodec) Issue(user *entity.User) (string, error) {
	args := m.Called(user)

	return args.String(0), args.Error(1)
}

func (m *MockAccessTokenCodec) Verify(tokenString string) (*service.AccessClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*service.AccessClaims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockAccessTokenCodec) DecodeExpiry(tokenString string) (time.Time, error) {
	args := m.Called(tokenString)

	return args.Get(0).(time.Time), args.Error(1)
}

// MockRefreshTokenManager mocks service.RefreshTokenManager.
type MockRefreshTokenManager struct {
	mock.Mock
}

func (m *MockRefreshTokenManager) IssueFor(ctx context.Context, user *entity.User) (string, *entity.RefreshToken, error) {
	args := m.Called(ctx, user)
	var token *entity.RefreshToken
	if t, ok := args.Get(1).(*entity.RefreshToken); ok {
		token = t
	}

	return args.String(0), token, args.Error(2)
}

func (m *MockRefreshTokenManager) RotateFrom(ctx context.Context, presented *entity.RefreshToken, user *entity.User) (string, *entity.RefreshToken, error) {
	args := m.Called(ctx, presented, user)
	var token *entity.RefreshToken
	if t, ok := args.Get(1).(*entity.RefreshToken); ok {
		token = t
	}

	return args.String(0), token, args.Error(2)
}

func (m *MockRefreshTokenManager) FindByToken(ctx context.Context, rawToken string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, rawToken)
	if token, ok := args.Get(0).(*entity.RefreshToken); ok {
		return token, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockRefreshTokenManager) CheckNotExpired(ctx context.Context, token *entity.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenManager) RevokeFor(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockRevocationRegistry mocks service.RevocationRegistry.
type MockRevocationRegistry struct {
	mock.Mock
}

func (m *MockRevocationRegistry) Deny(ctx context.Context, tokenString string) error {
	return m.Called(ctx, tokenString).Error(0)
}

func (m *MockRevocationRegistry) IsDenied(ctx context.Context, tokenString string) (bool, error) {
	args := m.Called(ctx, tokenString)

	return args.Bool(0), args.Error(1)
}

// MockKeyValueCache mocks service.KeyValueCache.
type MockKeyValueCache struct {
	mock.Mock
}

func (m *MockKeyValueCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockKeyValueCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockKeyValueCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockEventPublisher mocks service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEmailVerification(ctx context.Context, event *service.EmailVerificationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) PublishEmailVerificationResend(ctx context.Context, event *service.EmailVerificationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}
