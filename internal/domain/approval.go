package domain

import (
	"context"
	"errors"
	"time"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/domain/lifecycle"
	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
)

// RedeemResult is what the approver sees after redeeming a token.
type RedeemResult struct {
	ExecutionID  string
	QuestTitle   string
	AssigneeName string
}

type ApprovalDomain interface {
	// Issue supersedes the valid tokens of a pending execution by a new one.
	Issue(ctx context.Context, executionID string) (string, error)

	// Redeem consumes token and completes its execution. Only one of
	// concurrent redeemers of the same token succeeds.
	Redeem(ctx context.Context, token string) (*RedeemResult, error)

	// Notify sends token to the approver of the execution. It must be called
	// after the token is committed.
	Notify(ctx context.Context, executionID, token string) notification.Outcome

	RedeemApprovalToken(context.Context, *model.RedeemApprovalTokenRequest) (*model.RedeemApprovalTokenResponse, error)
	ReissueApprovalToken(context.Context, *model.ReissueApprovalTokenRequest) (*model.ReissueApprovalTokenResponse, error)
}

type approvalDomain struct {
	executionRepo     repository.ExecutionRepository
	approvalTokenRepo repository.ApprovalTokenRepository
	workflow          *executionWorkflow
}

func NewApprovalDomain(
	executionRepo repository.ExecutionRepository,
	approvalTokenRepo repository.ApprovalTokenRepository,
	rewardRepo repository.RewardRepository,
	achievementRepo repository.AchievementRepository,
	notificationRecordRepo repository.NotificationRecordRepository,
	dispatcher notification.Dispatcher,
) *approvalDomain {
	return &approvalDomain{
		executionRepo:     executionRepo,
		approvalTokenRepo: approvalTokenRepo,
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

func (d *approvalDomain) Issue(ctx context.Context, executionID string) (string, error) {
	var token string
	err := common.Transaction(ctx, func(ctx context.Context) error {
		execution, err := d.executionRepo.GetByID(ctx, executionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.NotFound, "Not found execution")
			}

			return common.InternalError(ctx, err, "Cannot get execution")
		}

		if execution.Status != entity.PendingApproval {
			return errorx.New(errorx.InvalidState, "The quest is not waiting for approval")
		}

		// Touch the execution while it is still pending. The row stays locked
		// until commit, so issuing cannot interleave with another transition.
		err = d.executionRepo.Transition(ctx, executionID, entity.PendingApproval,
			map[string]any{"updated_at": time.Now()})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.InvalidState, "The quest is not waiting for approval")
			}

			return common.InternalError(ctx, err, "Cannot lock execution")
		}

		approvalToken, err := d.workflow.issueToken(ctx, executionID)
		if err != nil {
			return err
		}

		token = approvalToken.Token
		return nil
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func (d *approvalDomain) Redeem(ctx context.Context, token string) (*RedeemResult, error) {
	var result *RedeemResult
	err := common.Transaction(ctx, func(ctx context.Context) error {
		if err := d.useToken(ctx, token); err != nil {
			return err
		}

		approvalToken, err := d.approvalTokenRepo.GetByToken(ctx, token)
		if err != nil {
			return common.InternalError(ctx, err, "Cannot get approval token")
		}

		execution, err := d.executionRepo.GetDetailByID(ctx, approvalToken.ExecutionID)
		if err != nil {
			return common.InternalError(ctx, err, "Cannot get execution of approval token")
		}

		if execution.Status != entity.PendingApproval {
			return errorx.New(errorx.InvalidState, "The quest is not waiting for approval")
		}

		// The token stands for the approver who created the quest.
		actor := lifecycle.Actor{UserID: execution.Quest.CreatedBy, Role: entity.ParentRole}
		if _, err := d.workflow.transition(ctx, execution, entity.Completed, actor); err != nil {
			return err
		}

		result = &RedeemResult{
			ExecutionID:  execution.ID,
			QuestTitle:   execution.Quest.Title,
			AssigneeName: execution.Assignee.Name,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (d *approvalDomain) useToken(ctx context.Context, token string) error {
	err := d.approvalTokenRepo.Use(ctx, token, time.Now())
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return common.InternalError(ctx, err, "Cannot use approval token")
	}

	_, err = d.approvalTokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.TokenNotFound, "Not found approval token")
		}

		return common.InternalError(ctx, err, "Cannot get approval token")
	}

	return errorx.New(errorx.TokenAlreadyUsed, "The approval token is already used")
}

func (d *approvalDomain) RedeemApprovalToken(
	ctx context.Context, req *model.RedeemApprovalTokenRequest,
) (*model.RedeemApprovalTokenResponse, error) {
	if req.ApproveToken == "" {
		return nil, invalidApprovalLink()
	}

	result, err := d.Redeem(ctx, req.ApproveToken)
	if err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) {
			switch errx.Code {
			case errorx.TokenNotFound, errorx.TokenAlreadyUsed,
				errorx.InvalidState, errorx.InvalidTransition:
				xcontext.Logger(ctx).Debugf("Cannot redeem approval token: %v", err)
				return nil, invalidApprovalLink()
			}
		}

		return nil, err
	}

	return &model.RedeemApprovalTokenResponse{
		Message:      "Quest approved",
		QuestTitle:   result.QuestTitle,
		AssigneeName: result.AssigneeName,
	}, nil
}

func (d *approvalDomain) ReissueApprovalToken(
	ctx context.Context, req *model.ReissueApprovalTokenRequest,
) (*model.ReissueApprovalTokenResponse, error) {
	if err := common.VerifyRole(ctx, entity.ParentRole); err != nil {
		return nil, err
	}

	if req.ExecutionID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty execution id")
	}

	token, err := d.Issue(ctx, req.ExecutionID)
	if err != nil {
		return nil, err
	}

	outcome := d.Notify(ctx, req.ExecutionID, token)
	return &model.ReissueApprovalTokenResponse{Outcome: string(outcome.Status)}, nil
}

func (d *approvalDomain) Notify(ctx context.Context, executionID, token string) notification.Outcome {
	return d.workflow.notifyApprovalRequested(ctx, executionID, token)
}

func invalidApprovalLink() error {
	return errorx.New(errorx.InvalidApprovalLink, errorx.InvalidApprovalLinkMessage)
}
