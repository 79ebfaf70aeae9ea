package domain

import (
	"context"
	"errors"
	"time"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type RewardDomain interface {
	// Settle records the reward of a completed execution. Settling the same
	// execution again has no effect and returns false.
	Settle(ctx context.Context, executionID string) (bool, error)

	GetMyRewards(context.Context, *model.GetMyRewardsRequest) (*model.GetMyRewardsResponse, error)
	MarkPaid(context.Context, *model.MarkRewardPaidRequest) (*model.MarkRewardPaidResponse, error)
}

type rewardDomain struct {
	rewardRepo      repository.RewardRepository
	achievementRepo repository.AchievementRepository
	workflow        *executionWorkflow
}

func NewRewardDomain(
	executionRepo repository.ExecutionRepository,
	approvalTokenRepo repository.ApprovalTokenRepository,
	rewardRepo repository.RewardRepository,
	achievementRepo repository.AchievementRepository,
	notificationRecordRepo repository.NotificationRecordRepository,
	dispatcher notification.Dispatcher,
) *rewardDomain {
	return &rewardDomain{
		rewardRepo:      rewardRepo,
		achievementRepo: achievementRepo,
		workflow: newExecutionWorkflow(
			executionRepo,
			approvalTokenRepo,
			rewardRepo,
			achievementRepo,
			notificationRecordRepo,
			dispatcher,
		),
	}
}

func (d *rewardDomain) Settle(ctx context.Context, executionID string) (bool, error) {
	var created bool
	err := common.Transaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = d.workflow.settle(ctx, executionID)
		return err
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (d *rewardDomain) GetMyRewards(
	ctx context.Context, req *model.GetMyRewardsRequest,
) (*model.GetMyRewardsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	entries, err := d.rewardRepo.GetListByUserID(ctx, userID)
	if err != nil {
		return nil, common.InternalError(ctx, err, "Cannot get reward list")
	}

	rewards := []model.RewardLedgerEntry{}
	for i := range entries {
		rewards = append(rewards, model.ConvertRewardLedgerEntry(&entries[i]))
	}

	resp := &model.GetMyRewardsResponse{Rewards: rewards}
	achievement, err := d.achievementRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.InternalError(ctx, err, "Cannot get achievement")
		}
	} else {
		resp.TotalQuests = achievement.TotalQuests
		resp.TotalRewards = achievement.TotalRewards
	}

	return resp, nil
}

func (d *rewardDomain) MarkPaid(
	ctx context.Context, req *model.MarkRewardPaidRequest,
) (*model.MarkRewardPaidResponse, error) {
	if err := common.VerifyRole(ctx, entity.ParentRole); err != nil {
		return nil, err
	}

	if req.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty id")
	}

	err := common.Transaction(ctx, func(ctx context.Context) error {
		if _, err := d.rewardRepo.GetByID(ctx, req.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.NotFound, "Not found reward")
			}

			return common.InternalError(ctx, err, "Cannot get reward")
		}

		if err := d.rewardRepo.MarkPaid(ctx, req.ID, time.Now()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.InvalidState, "The reward is already paid")
			}

			return common.InternalError(ctx, err, "Cannot mark reward as paid")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.MarkRewardPaidResponse{}, nil
}
