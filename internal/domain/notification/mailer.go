package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/pubsub"
	"github.com/homequest/backend/pkg/xcontext"

	"gorm.io/gorm"
)

// Mailer consumes queued approval requests and delivers them with another
// dispatcher, usually the smtp one.
type Mailer struct {
	dispatcher             Dispatcher
	approvalTokenRepo      repository.ApprovalTokenRepository
	notificationRecordRepo repository.NotificationRecordRepository
}

func NewMailer(
	dispatcher Dispatcher,
	approvalTokenRepo repository.ApprovalTokenRepository,
	notificationRecordRepo repository.NotificationRecordRepository,
) *Mailer {
	return &Mailer{
		dispatcher:             dispatcher,
		approvalTokenRepo:      approvalTokenRepo,
		notificationRecordRepo: notificationRecordRepo,
	}
}

func (m *Mailer) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var req ApprovalRequest
	if err := json.Unmarshal(pack.Msg, &req); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal approval request: %v", err)
		return
	}

	if !m.isTokenValid(ctx, &req) {
		xcontext.Logger(ctx).Infof("Skip approval request of execution %s, the token is no longer valid",
			req.ExecutionID)
		return
	}

	outcome := m.dispatcher.NotifyApprovalRequested(ctx, &req)
	xcontext.Logger(ctx).Infof("Approval request of execution %s queued at %s: %s",
		req.ExecutionID, t.Format(time.RFC3339), outcome.Status)

	err := m.notificationRecordRepo.Create(ctx, &entity.NotificationRecord{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		ExecutionID:   req.ExecutionID,
		Recipient:     req.Recipient,
		Outcome:       outcome.Status,
		Reason:        outcome.Reason,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create notification record: %v", err)
	}
}

// isTokenValid reports false only if the token of the approval link has been
// used or superseded since the request was queued.
func (m *Mailer) isTokenValid(ctx context.Context, req *ApprovalRequest) bool {
	u, err := url.Parse(req.ApprovalURL)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot parse approval url: %v", err)
		return true
	}

	token := u.Query().Get("approve_token")
	if token == "" {
		return true
	}

	approvalToken, err := m.approvalTokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false
		}

		xcontext.Logger(ctx).Errorf("Cannot get approval token: %v", err)
		return true
	}

	return approvalToken.IsValid
}
