package repository

import (
	"context"
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RewardRepository interface {
	// CreateIfNotExists inserts the entry unless the execution is already
	// settled. It returns true if the entry is inserted.
	CreateIfNotExists(ctx context.Context, data *entity.RewardLedgerEntry) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.RewardLedgerEntry, error)
	GetByExecutionID(ctx context.Context, executionID string) (*entity.RewardLedgerEntry, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.RewardLedgerEntry, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
}

type rewardRepository struct{}

func NewRewardRepository() *rewardRepository {
	return &rewardRepository{}
}

func (r *rewardRepository) CreateIfNotExists(ctx context.Context, data *entity.RewardLedgerEntry) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "execution_id"}},
			DoNothing: true,
		}).
		Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *rewardRepository) GetByID(ctx context.Context, id string) (*entity.RewardLedgerEntry, error) {
	var result entity.RewardLedgerEntry
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardRepository) GetByExecutionID(
	ctx context.Context, executionID string,
) (*entity.RewardLedgerEntry, error) {
	var result entity.RewardLedgerEntry
	if err := xcontext.DB(ctx).Take(&result, "execution_id=?", executionID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.RewardLedgerEntry, error) {
	var result []entity.RewardLedgerEntry
	err := xcontext.DB(ctx).
		Preload("Quest").
		Where("user_id=?", userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	tx := xcontext.DB(ctx).Model(&entity.RewardLedgerEntry{}).
		Where("id=? AND status=?", id, entity.RewardUnpaid).
		Updates(map[string]any{
			"status":  entity.RewardPaid,
			"paid_at": paidAt,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
