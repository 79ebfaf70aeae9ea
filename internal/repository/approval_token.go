package repository

import (
	"context"
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type ApprovalTokenRepository interface {
	Create(ctx context.Context, data *entity.ApprovalToken) error
	GetByToken(ctx context.Context, token string) (*entity.ApprovalToken, error)
	GetValidByExecutionID(ctx context.Context, executionID string) ([]entity.ApprovalToken, error)

	// Use flips the token from valid to used. Only one caller can use a token,
	// the others get gorm.ErrRecordNotFound.
	Use(ctx context.Context, token string, usedAt time.Time) error

	// InvalidateByExecutionID returns the number of tokens invalidated.
	InvalidateByExecutionID(ctx context.Context, executionID string) (int64, error)
}

type approvalTokenRepository struct{}

func NewApprovalTokenRepository() *approvalTokenRepository {
	return &approvalTokenRepository{}
}

func (r *approvalTokenRepository) Create(ctx context.Context, data *entity.ApprovalToken) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *approvalTokenRepository) GetByToken(ctx context.Context, token string) (*entity.ApprovalToken, error) {
	var result entity.ApprovalToken
	if err := xcontext.DB(ctx).Take(&result, "token=?", token).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *approvalTokenRepository) GetValidByExecutionID(
	ctx context.Context, executionID string,
) ([]entity.ApprovalToken, error) {
	var result []entity.ApprovalToken
	err := xcontext.DB(ctx).
		Where("execution_id=? AND is_valid=?", executionID, true).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *approvalTokenRepository) Use(ctx context.Context, token string, usedAt time.Time) error {
	tx := xcontext.DB(ctx).Model(&entity.ApprovalToken{}).
		Where("token=? AND is_valid=?", token, true).
		Updates(map[string]any{
			"is_valid": false,
			"used_at":  usedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *approvalTokenRepository) InvalidateByExecutionID(ctx context.Context, executionID string) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.ApprovalToken{}).
		Where("execution_id=? AND is_valid=?", executionID, true).
		Update("is_valid", false)
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}
