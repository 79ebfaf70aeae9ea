package repository

import (
	"context"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type ExecutionRepository interface {
	Create(ctx context.Context, data *entity.Execution) error
	GetByID(ctx context.Context, id string) (*entity.Execution, error)
	GetByQuestID(ctx context.Context, questID string) (*entity.Execution, error)
	GetDetailByID(ctx context.Context, id string) (*entity.Execution, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.Execution, error)
	GetListByStatus(ctx context.Context, status entity.ExecutionStatus) ([]entity.Execution, error)

	// Transition updates the execution only if its status is still from. It
	// returns gorm.ErrRecordNotFound if no row is updated.
	Transition(ctx context.Context, id string, from entity.ExecutionStatus, updates map[string]any) error

	// UpdateReport updates the report fields only if the execution is assigned
	// to assignee and is in one of the given statuses.
	UpdateReport(
		ctx context.Context,
		id, assignee string,
		statuses []entity.ExecutionStatus,
		updates map[string]any,
	) error
}

type executionRepository struct{}

func NewExecutionRepository() *executionRepository {
	return &executionRepository{}
}

func (r *executionRepository) Create(ctx context.Context, data *entity.Execution) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *executionRepository) GetByID(ctx context.Context, id string) (*entity.Execution, error) {
	var result entity.Execution
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *executionRepository) GetByQuestID(ctx context.Context, questID string) (*entity.Execution, error) {
	var result entity.Execution
	if err := xcontext.DB(ctx).Take(&result, "quest_id=?", questID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *executionRepository) GetDetailByID(ctx context.Context, id string) (*entity.Execution, error) {
	var result entity.Execution
	err := xcontext.DB(ctx).
		Preload("Quest").
		Preload("Quest.Creator").
		Preload("Assignee").
		Take(&result, "id=?", id).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *executionRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.Execution, error) {
	var result []entity.Execution
	err := xcontext.DB(ctx).
		Joins("join quests on quests.id=executions.quest_id").
		Preload("Quest").
		Preload("Assignee").
		Where("executions.assigned_to=? OR quests.created_by=?", userID, userID).
		Order("executions.created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *executionRepository) GetListByStatus(
	ctx context.Context, status entity.ExecutionStatus,
) ([]entity.Execution, error) {
	var result []entity.Execution
	err := xcontext.DB(ctx).
		Where("status=?", status).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *executionRepository) Transition(
	ctx context.Context, id string, from entity.ExecutionStatus, updates map[string]any,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Execution{}).
		Where("id=? AND status=?", id, from).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *executionRepository) UpdateReport(
	ctx context.Context,
	id, assignee string,
	statuses []entity.ExecutionStatus,
	updates map[string]any,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Execution{}).
		Where("id=? AND assigned_to=? AND status IN (?)", id, assignee, statuses).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
