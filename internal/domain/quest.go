package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestDomain interface {
	Create(context.Context, *model.CreateQuestRequest) (*model.CreateQuestResponse, error)
	Get(context.Context, *model.GetQuestRequest) (*model.GetQuestResponse, error)
}

type questDomain struct {
	questRepo     repository.QuestRepository
	executionRepo repository.ExecutionRepository
	userRepo      repository.UserRepository
}

func NewQuestDomain(
	questRepo repository.QuestRepository,
	executionRepo repository.ExecutionRepository,
	userRepo repository.UserRepository,
) *questDomain {
	return &questDomain{
		questRepo:     questRepo,
		executionRepo: executionRepo,
		userRepo:      userRepo,
	}
}

func (d *questDomain) Create(
	ctx context.Context, req *model.CreateQuestRequest,
) (*model.CreateQuestResponse, error) {
	if err := common.VerifyRole(ctx, entity.ParentRole); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty title")
	}

	quest := &entity.Quest{
		Base:        entity.Base{ID: uuid.NewString()},
		Title:       title,
		Description: req.Description,
		Reward:      req.Reward.Reward,
		CreatedBy:   xcontext.RequestUserID(ctx),
	}

	if quest.Reward.Kind == "" {
		quest.Reward = entity.DescriptionReward("")
	}

	if quest.Reward.Kind == entity.RewardPoints && quest.Reward.Points < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative reward points")
	}

	if req.Deadline != nil {
		quest.Deadline = sql.NullTime{Time: *req.Deadline, Valid: true}
	}

	execution := &entity.Execution{
		Base:    entity.Base{ID: uuid.NewString()},
		QuestID: quest.ID,
		Status:  entity.Unclaimed,
	}

	err := common.Transaction(ctx, func(ctx context.Context) error {
		if req.AssigneeID != "" {
			assignee, err := d.userRepo.GetByID(ctx, req.AssigneeID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errorx.New(errorx.NotFound, "Not found assignee")
				}

				return common.InternalError(ctx, err, "Cannot get assignee")
			}

			if assignee.Role != entity.ChildRole {
				return errorx.New(errorx.BadRequest, "Only a child can be assigned to a quest")
			}

			execution.AssignedTo = sql.NullString{String: assignee.ID, Valid: true}
		}

		if err := d.questRepo.Create(ctx, quest); err != nil {
			return common.InternalError(ctx, err, "Cannot create quest")
		}

		if err := d.executionRepo.Create(ctx, execution); err != nil {
			return common.InternalError(ctx, err, "Cannot create execution")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.CreateQuestResponse{ID: quest.ID, ExecutionID: execution.ID}, nil
}

func (d *questDomain) Get(ctx context.Context, req *model.GetQuestRequest) (*model.GetQuestResponse, error) {
	if req.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty id")
	}

	quest, err := d.questRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		return nil, common.InternalError(ctx, err, "Cannot get quest")
	}

	execution, err := d.executionRepo.GetByQuestID(ctx, quest.ID)
	if err != nil {
		return nil, common.InternalError(ctx, err, "Cannot get execution of quest")
	}

	detail, err := d.executionRepo.GetDetailByID(ctx, execution.ID)
	if err != nil {
		return nil, common.InternalError(ctx, err, "Cannot get execution detail")
	}

	return &model.GetQuestResponse{
		Quest:     model.ConvertQuest(&detail.Quest),
		Execution: model.ConvertExecution(detail),
	}, nil
}
