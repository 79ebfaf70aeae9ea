package repository

import (
	"context"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/xcontext"
)

type NotificationRecordRepository interface {
	Create(ctx context.Context, data *entity.NotificationRecord) error
	GetLatestByExecutionID(ctx context.Context, executionID string) (*entity.NotificationRecord, error)
	GetListByExecutionID(ctx context.Context, executionID string) ([]entity.NotificationRecord, error)
}

type notificationRecordRepository struct{}

func NewNotificationRecordRepository() *notificationRecordRepository {
	return &notificationRecordRepository{}
}

func (r *notificationRecordRepository) Create(ctx context.Context, data *entity.NotificationRecord) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *notificationRecordRepository) GetLatestByExecutionID(
	ctx context.Context, executionID string,
) (*entity.NotificationRecord, error) {
	var result entity.NotificationRecord
	err := xcontext.DB(ctx).
		Where("execution_id=?", executionID).
		Order("created_at DESC, id DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *notificationRecordRepository) GetListByExecutionID(
	ctx context.Context, executionID string,
) ([]entity.NotificationRecord, error) {
	var result []entity.NotificationRecord
	err := xcontext.DB(ctx).
		Where("execution_id=?", executionID).
		Order("created_at ASC, id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
