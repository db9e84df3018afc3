package postgres

import (
	"context"

	"vanguard/internal/domain/entity"
	domainerrors "vanguard/internal/domain/errors"
	"vanguard/internal/domain/repository"
	"vanguard/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// emailVerificationRepository implements the repository.EmailVerificationRepository interface.
type emailVerificationRepository struct {
	db *gorm.DB
}

// NewEmailVerificationRepository is the constructor for emailVerificationRepository.
func NewEmailVerificationRepository(db *gorm.DB) repository.EmailVerificationRepository {
	return &emailVerificationRepository{db: db}
}

// Create persists a new verification row for a user.
func (repo *emailVerificationRepository) Create(ctx context.Context, verification *entity.EmailVerification) error {
	verificationM := fromEmailVerificationDomain(verification)

	if err := repo.db.WithContext(ctx).Create(verificationM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "verification already exists for user")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create email verification")
	}

	// Update the entity with generated values
	verification.ID = verificationM.ID
	verification.CreatedAt = verificationM.CreatedAt

	return nil
}

// FindByUserID retrieves the verification row owned by a user.
func (repo *emailVerificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.EmailVerification, error) {
	var verificationM model.EmailVerificationModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&verificationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEmailVerificationNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toEmailVerificationDomain(&verificationM), nil
}

// FindByTokenHashAndUserID retrieves a verification row by the submitted code
// hash plus the user ID.
func (repo *emailVerificationRepository) FindByTokenHashAndUserID(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.EmailVerification, error) {
	var verificationM model.EmailVerificationModel
	if err := repo.db.WithContext(ctx).
		Where("token_hash = ? AND user_id = ?", tokenHash, userID).
		First(&verificationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEmailVerificationNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toEmailVerificationDomain(&verificationM), nil
}

// Update modifies an existing verification row.
func (repo *emailVerificationRepository) Update(ctx context.Context, verification *entity.EmailVerification) error {
	verificationM := fromEmailVerificationDomain(verification)

	result := repo.db.WithContext(ctx).
		Model(&model.EmailVerificationModel{}).
		Where("id = ?", verificationM.ID).
		Updates(map[string]any{
			"token_hash":  verificationM.TokenHash,
			"verified_at": verificationM.VerifiedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update email verification")
	}
	if result.RowsAffected == 0 {
		return repository.ErrEmailVerificationNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toEmailVerificationDomain converts a GORM EmailVerificationModel to a domain entity.
func toEmailVerificationDomain(data *model.EmailVerificationModel) *entity.EmailVerification {
	if data == nil {
		return nil
	}

	return &entity.EmailVerification{
		ID:         data.ID,
		UserID:     data.UserID,
		TokenHash:  data.TokenHash,
		VerifiedAt: data.VerifiedAt,
		CreatedAt:  data.CreatedAt,
	}
}

// fromEmailVerificationDomain converts a domain entity to a GORM EmailVerificationModel.
func fromEmailVerificationDomain(data *entity.EmailVerification) *model.EmailVerificationModel {
	if data == nil {
		return nil
	}

	return &model.EmailVerificationModel{
		ID:         data.ID,
		UserID:     data.UserID,
		TokenHash:  data.TokenHash,
		VerifiedAt: data.VerifiedAt,
		CreatedAt:  data.CreatedAt,
	}
}
