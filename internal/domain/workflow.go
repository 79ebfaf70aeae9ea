package domain

import (
	"context"
	"errors"
	"time"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/domain/lifecycle"
	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/crypto"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// executionWorkflow holds the steps shared by the authenticated and the
// token redemption paths. Methods which mutate data expect a context carrying
// a database transaction, except notifyApprovalRequested which must be called
// after the transaction is committed.
type executionWorkflow struct {
	executionRepo          repository.ExecutionRepository
	approvalTokenRepo      repository.ApprovalTokenRepository
	rewardRepo             repository.RewardRepository
	achievementRepo        repository.AchievementRepository
	notificationRecordRepo repository.NotificationRecordRepository
	dispatcher             notification.Dispatcher
}

func newExecutionWorkflow(
	executionRepo repository.ExecutionRepository,
	approvalTokenRepo repository.ApprovalTokenRepository,
	rewardRepo repository.RewardRepository,
	achievementRepo repository.AchievementRepository,
	notificationRecordRepo repository.NotificationRecordRepository,
	dispatcher notification.Dispatcher,
) *executionWorkflow {
	return &executionWorkflow{
		executionRepo:          executionRepo,
		approvalTokenRepo:      approvalTokenRepo,
		rewardRepo:             rewardRepo,
		achievementRepo:        achievementRepo,
		notificationRecordRepo: notificationRecordRepo,
		dispatcher:             dispatcher,
	}
}

// transition moves the execution to target and applies the effects of the
// transition. It returns the new approval token if one is issued.
func (w *executionWorkflow) transition(
	ctx context.Context,
	execution *entity.Execution,
	target entity.ExecutionStatus,
	actor lifecycle.Actor,
) (string, error) {
	now := time.Now()
	effects := lifecycle.EffectsOf(execution, target, actor, now)

	err := w.executionRepo.Transition(ctx, execution.ID, execution.Status, effects.Updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errorx.New(errorx.InvalidTransition, "The quest status has been changed")
		}

		return "", common.InternalError(ctx, err, "Cannot update execution status")
	}

	if _, err := w.approvalTokenRepo.InvalidateByExecutionID(ctx, execution.ID); err != nil {
		return "", common.InternalError(ctx, err, "Cannot invalidate approval tokens")
	}

	var token string
	if effects.IssueToken {
		approvalToken, err := w.issueToken(ctx, execution.ID)
		if err != nil {
			return "", err
		}

		token = approvalToken.Token
	}

	if effects.Settle {
		if _, err := w.settle(ctx, execution.ID); err != nil {
			return "", err
		}
	}

	xcontext.Logger(ctx).Infof("Execution %s: %s -> %s by %s at %s",
		execution.ID, execution.Status, target, actor.UserID, now.Format(time.RFC3339Nano))

	return token, nil
}

// issueToken supersedes the valid tokens of the execution by a new one.
func (w *executionWorkflow) issueToken(ctx context.Context, executionID string) (*entity.ApprovalToken, error) {
	if _, err := w.approvalTokenRepo.InvalidateByExecutionID(ctx, executionID); err != nil {
		return nil, common.InternalError(ctx, err, "Cannot invalidate approval tokens")
	}

	token, err := crypto.GenerateRandomString()
	if err != nil {
		return nil, common.InternalError(ctx, err, "Cannot generate approval token")
	}

	approvalToken := &entity.ApprovalToken{
		ID:          uuid.NewString(),
		Token:       token,
		ExecutionID: executionID,
		IsValid:     true,
	}
	if err := w.approvalTokenRepo.Create(ctx, approvalToken); err != nil {
		return nil, common.InternalError(ctx, err, "Cannot create approval token")
	}

	return approvalToken, nil
}

// settle records the reward of a completed execution. It returns false if the
// execution is already settled.
func (w *executionWorkflow) settle(ctx context.Context, executionID string) (bool, error) {
	execution, err := w.executionRepo.GetDetailByID(ctx, executionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errorx.New(errorx.NotFound, "Not found execution")
		}

		return false, common.InternalError(ctx, err, "Cannot get execution")
	}

	if execution.Status != entity.Completed {
		return false, errorx.New(errorx.InvalidState, "The quest is not completed")
	}

	if !execution.AssignedTo.Valid {
		return false, errorx.New(errorx.InvalidState, "The quest has no assignee")
	}

	entry := &entity.RewardLedgerEntry{
		Base:        entity.Base{ID: uuid.NewString()},
		ExecutionID: execution.ID,
		QuestID:     execution.QuestID,
		UserID:      execution.AssignedTo.String,
		Status:      entity.RewardUnpaid,
	}

	switch execution.Quest.Reward.Kind {
	case entity.RewardPoints:
		entry.Amount = execution.Quest.Reward.Points
	default:
		entry.Description = execution.Quest.Reward.Description
	}

	created, err := w.rewardRepo.CreateIfNotExists(ctx, entry)
	if err != nil {
		return false, common.InternalError(ctx, err, "Cannot create reward ledger entry")
	}

	if !created {
		return false, nil
	}

	if err := w.achievementRepo.Increase(ctx, entry.UserID, 1, entry.Amount); err != nil {
		return false, common.InternalError(ctx, err, "Cannot increase achievement")
	}

	return true, nil
}

// notifyApprovalRequested sends token to the approver and records the
// outcome. A failure is only logged, it never affects the workflow state.
func (w *executionWorkflow) notifyApprovalRequested(
	ctx context.Context, executionID, token string,
) notification.Outcome {
	outcome := w.dispatchApprovalRequest(ctx, executionID, token)
	if outcome.IsFailed() {
		xcontext.Logger(ctx).Warnf("Notification of execution %s failed: %s", executionID, outcome.Reason)
	}

	return outcome
}

func (w *executionWorkflow) dispatchApprovalRequest(
	ctx context.Context, executionID, token string,
) notification.Outcome {
	execution, err := w.executionRepo.GetDetailByID(ctx, executionID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get execution to notify: %v", err)
		return notification.Failed("cannot load execution")
	}

	req, err := notification.NewApprovalRequest(
		execution, xcontext.Configs(ctx).Approval.AppURL, token)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build approval request: %v", err)
		w.record(ctx, executionID, execution.Quest.Creator.Email, notification.Failed(err.Error()))
		return notification.Failed(err.Error())
	}

	outcome := w.dispatcher.NotifyApprovalRequested(ctx, req)
	w.record(ctx, executionID, req.Recipient, outcome)
	return outcome
}

func (w *executionWorkflow) record(
	ctx context.Context, executionID, recipient string, outcome notification.Outcome,
) {
	err := w.notificationRecordRepo.Create(ctx, &entity.NotificationRecord{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		ExecutionID:   executionID,
		Recipient:     recipient,
		Outcome:       outcome.Status,
		Reason:        outcome.Reason,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create notification record: %v", err)
	}
}
