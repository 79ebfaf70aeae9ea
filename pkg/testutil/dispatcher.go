package testutil

import (
	"context"
	"sync"

	"github.com/homequest/backend/internal/domain/notification"
)

type MockDispatcher struct {
	NotifyApprovalRequestedFunc func(context.Context, *notification.ApprovalRequest) notification.Outcome

	mutex    sync.Mutex
	requests []notification.ApprovalRequest
}

func (m *MockDispatcher) NotifyApprovalRequested(
	ctx context.Context, req *notification.ApprovalRequest,
) notification.Outcome {
	m.mutex.Lock()
	m.requests = append(m.requests, *req)
	m.mutex.Unlock()

	if m.NotifyApprovalRequestedFunc != nil {
		return m.NotifyApprovalRequestedFunc(ctx, req)
	}

	return notification.Sent()
}

// Requests returns all requests the dispatcher has received.
func (m *MockDispatcher) Requests() []notification.ApprovalRequest {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]notification.ApprovalRequest{}, m.requests...)
}
