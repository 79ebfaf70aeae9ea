package repository

import (
	"context"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	Increase(ctx context.Context, userID string, quests int, rewards int64) error
	GetByUserID(ctx context.Context, userID string) (*entity.Achievement, error)
}

type achievementRepository struct{}

func NewAchievementRepository() *achievementRepository {
	return &achievementRepository{}
}

func (r *achievementRepository) Increase(ctx context.Context, userID string, quests int, rewards int64) error {
	return xcontext.DB(ctx).Model(&entity.Achievement{}).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_quests":  gorm.Expr("total_quests + ?", quests),
				"total_rewards": gorm.Expr("total_rewards + ?", rewards),
			}),
		}).
		Create(&entity.Achievement{
			UserID:       userID,
			TotalQuests:  quests,
			TotalRewards: rewards,
		}).Error
}

func (r *achievementRepository) GetByUserID(ctx context.Context, userID string) (*entity.Achievement, error) {
	var result entity.Achievement
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
