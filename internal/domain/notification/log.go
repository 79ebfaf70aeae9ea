package notification

import (
	"context"

	"github.com/homequest/backend/pkg/xcontext"
)

type logDispatcher struct{}

// NewLogDispatcher only writes requests to the log. It is used in local
// environments where no mail server is available.
func NewLogDispatcher() *logDispatcher {
	return &logDispatcher{}
}

func (d *logDispatcher) NotifyApprovalRequested(ctx context.Context, req *ApprovalRequest) Outcome {
	xcontext.Logger(ctx).Infof("Approval request of execution %s to %s: %s",
		req.ExecutionID, req.Recipient, req.ApprovalURL)
	return Sent()
}
