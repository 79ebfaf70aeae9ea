package cron

import (
	"context"
	"errors"
	"time"

	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type approvalIssuer interface {
	Issue(ctx context.Context, executionID string) (string, error)
	Notify(ctx context.Context, executionID, token string) notification.Outcome
}

// ApprovalReminderCronJob sends a new approval link for executions pending
// approval whose last notification failed or was never sent.
type ApprovalReminderCronJob struct {
	executionRepo          repository.ExecutionRepository
	notificationRecordRepo repository.NotificationRecordRepository
	approvalIssuer         approvalIssuer
	interval               time.Duration
}

func NewApprovalReminderCronJob(
	executionRepo repository.ExecutionRepository,
	notificationRecordRepo repository.NotificationRecordRepository,
	approvalIssuer approvalIssuer,
	interval time.Duration,
) *ApprovalReminderCronJob {
	return &ApprovalReminderCronJob{
		executionRepo:          executionRepo,
		notificationRecordRepo: notificationRecordRepo,
		approvalIssuer:         approvalIssuer,
		interval:               interval,
	}
}

func (job *ApprovalReminderCronJob) Do(ctx context.Context) {
	executions, err := job.executionRepo.GetListByStatus(ctx, entity.PendingApproval)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending executions: %v", err)
		return
	}

	now := time.Now()
	for _, execution := range executions {
		if !job.needReminder(ctx, execution.ID, now) {
			continue
		}

		token, err := job.approvalIssuer.Issue(ctx, execution.ID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot reissue approval token of %s: %v", execution.ID, err)
			continue
		}

		outcome := job.approvalIssuer.Notify(ctx, execution.ID, token)
		xcontext.Logger(ctx).Infof("Reminded approval of %s: %s", execution.ID, outcome.Status)
	}
}

func (job *ApprovalReminderCronJob) needReminder(ctx context.Context, executionID string, now time.Time) bool {
	record, err := job.notificationRecordRepo.GetLatestByExecutionID(ctx, executionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true
		}

		xcontext.Logger(ctx).Errorf("Cannot get latest notification record: %v", err)
		return false
	}

	return record.Outcome == entity.NotificationFailed && now.Sub(record.CreatedAt) >= job.interval
}

func (job *ApprovalReminderCronJob) RunNow() bool {
	return true
}

func (job *ApprovalReminderCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
