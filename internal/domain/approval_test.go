package domain

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

func tokenFromURL(t *testing.T, approvalURL string) string {
	u, err := url.Parse(approvalURL)
	require.NoError(t, err)
	return u.Query().Get("approve_token")
}

func Test_approvalDomain_WashDishes(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	dispatcher := &testutil.MockDispatcher{}
	domains := newTestDomains(dispatcher, nil)

	childCtx := testutil.MockContextWithUser(ctx, *testutil.Child1)
	for _, status := range []string{"in_progress", "pending_approval"} {
		_, err := domains.execution.Advance(childCtx, &model.AdvanceExecutionRequest{
			ID:     testutil.Execution1.ID,
			Status: status,
		})
		require.NoError(t, err)
	}

	requests := dispatcher.Requests()
	require.Len(t, requests, 1)
	require.Equal(t, "[Approval request] Wash dishes was reported complete", requests[0].Subject)
	token := tokenFromURL(t, requests[0].ApprovalURL)
	require.Len(t, token, 43)

	resp, err := domains.approval.RedeemApprovalToken(ctx, &model.RedeemApprovalTokenRequest{ApproveToken: token})
	require.NoError(t, err)
	require.Equal(t, "Wash dishes", resp.QuestTitle)
	require.Equal(t, "Taro", resp.AssigneeName)

	execution, err := repository.NewExecutionRepository().GetByID(ctx, testutil.Execution1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.Completed, execution.Status)
	require.True(t, execution.CompletedAt.Valid)

	entry, err := repository.NewRewardRepository().GetByExecutionID(ctx, testutil.Execution1.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Child1.ID, entry.UserID)
	require.Equal(t, int64(400), entry.Amount)

	tokens, err := repository.NewApprovalTokenRepository().GetValidByExecutionID(ctx, testutil.Execution1.ID)
	require.NoError(t, err)
	require.Empty(t, tokens)

	// The same link cannot be used twice.
	_, err = domains.approval.RedeemApprovalToken(ctx, &model.RedeemApprovalTokenRequest{ApproveToken: token})
	require.Equal(t, errorx.New(errorx.InvalidApprovalLink, "link invalid or already used"), err)

	rewards, err := domains.reward.GetMyRewards(childCtx, &model.GetMyRewardsRequest{})
	require.NoError(t, err)
	require.Len(t, rewards.Rewards, 1)
	require.Equal(t, "Wash dishes", rewards.Rewards[0].QuestTitle)
	require.Equal(t, 1, rewards.TotalQuests)
	require.Equal(t, int64(400), rewards.TotalRewards)
}

func Test_approvalDomain_Redeem_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domains := newTestDomains(nil, nil)

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = domains.approval.Redeem(ctx, testutil.ApprovalToken3.Token)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		require.Equal(t, errorx.New(errorx.TokenAlreadyUsed, "The approval token is already used"), err)
	}
	require.Equal(t, 1, succeeded)

	entries, err := repository.NewRewardRepository().GetListByUserID(ctx, testutil.Child2.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	achievement, err := repository.NewAchievementRepository().GetByUserID(ctx, testutil.Child2.ID)
	require.NoError(t, err)
	require.Equal(t, 1, achievement.TotalQuests)
	require.Equal(t, int64(100), achievement.TotalRewards)
}

func Test_approvalDomain_Redeem_Failed(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "not found token",
			token:   "invalid-token",
			wantErr: errorx.New(errorx.TokenNotFound, "Not found approval token"),
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: errorx.New(errorx.TokenNotFound, "Not found approval token"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.CreateFixtureDb(ctx)
			domains := newTestDomains(nil, nil)

			_, err := domains.approval.Redeem(ctx, tt.token)
			require.Equal(t, tt.wantErr, err)
		})
	}
}

func Test_approvalDomain_RedeemApprovalToken_Generic(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domains := newTestDomains(nil, nil)

	_, err := domains.approval.Redeem(ctx, testutil.ApprovalToken3.Token)
	require.NoError(t, err)

	// Unknown, empty and used tokens look the same to an anonymous caller.
	for _, token := range []string{"invalid-token", "", testutil.ApprovalToken3.Token} {
		_, err := domains.approval.RedeemApprovalToken(ctx, &model.RedeemApprovalTokenRequest{ApproveToken: token})
		require.Equal(t, errorx.New(errorx.InvalidApprovalLink, "link invalid or already used"), err)
	}
}

func Test_approvalDomain_Issue(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domains := newTestDomains(nil, nil)

	_, err := domains.approval.Issue(ctx, testutil.Execution2.ID)
	require.Equal(t, errorx.New(errorx.InvalidState, "The quest is not waiting for approval"), err)

	_, err = domains.approval.Issue(ctx, "invalid-id")
	require.Equal(t, errorx.New(errorx.NotFound, "Not found execution"), err)

	token, err := domains.approval.Issue(ctx, testutil.Execution3.ID)
	require.NoError(t, err)
	require.NotEqual(t, testutil.ApprovalToken3.Token, token)

	// The new token supersedes the old one.
	_, err = domains.approval.Redeem(ctx, testutil.ApprovalToken3.Token)
	require.Equal(t, errorx.New(errorx.TokenAlreadyUsed, "The approval token is already used"), err)

	result, err := domains.approval.Redeem(ctx, token)
	require.NoError(t, err)
	require.Equal(t, testutil.Execution3.ID, result.ExecutionID)
	require.Equal(t, "Walk the dog", result.QuestTitle)
	require.Equal(t, "Hanako", result.AssigneeName)
}

func Test_approvalDomain_ReissueApprovalToken(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	dispatcher := &testutil.MockDispatcher{}
	domains := newTestDomains(dispatcher, nil)

	_, err := domains.approval.ReissueApprovalToken(
		testutil.MockContextWithUser(ctx, *testutil.Child2),
		&model.ReissueApprovalTokenRequest{ExecutionID: testutil.Execution3.ID},
	)
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Permission denied"), err)

	resp, err := domains.approval.ReissueApprovalToken(
		testutil.MockContextWithUser(ctx, *testutil.Parent1),
		&model.ReissueApprovalTokenRequest{ExecutionID: testutil.Execution3.ID},
	)
	require.NoError(t, err)
	require.Equal(t, string(entity.NotificationSent), resp.Outcome)

	requests := dispatcher.Requests()
	require.Len(t, requests, 1)

	tokens, err := repository.NewApprovalTokenRepository().GetValidByExecutionID(ctx, testutil.Execution3.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Equal(t, tokenFromURL(t, requests[0].ApprovalURL), tokens[0].Token)
}

func Test_approvalDomain_NotificationFailure(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	dispatcher := &testutil.MockDispatcher{
		NotifyApprovalRequestedFunc: func(context.Context, *notification.ApprovalRequest) notification.Outcome {
			return notification.Failed("connection refused")
		},
	}
	domains := newTestDomains(dispatcher, nil)

	// The failure is recorded but the transition and the token are kept.
	_, err := domains.execution.Advance(
		testutil.MockContextWithUser(ctx, *testutil.Child1),
		&model.AdvanceExecutionRequest{ID: testutil.Execution2.ID, Status: "pending_approval"},
	)
	require.NoError(t, err)

	execution, err := repository.NewExecutionRepository().GetByID(ctx, testutil.Execution2.ID)
	require.NoError(t, err)
	require.Equal(t, entity.PendingApproval, execution.Status)

	tokens, err := repository.NewApprovalTokenRepository().GetValidByExecutionID(ctx, testutil.Execution2.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	record, err := repository.NewNotificationRecordRepository().GetLatestByExecutionID(ctx, testutil.Execution2.ID)
	require.NoError(t, err)
	require.Equal(t, entity.NotificationFailed, record.Outcome)
	require.Equal(t, "connection refused", record.Reason)

	// The approver completes it while logged in instead.
	_, err = domains.execution.Advance(
		testutil.MockContextWithUser(ctx, *testutil.Parent1),
		&model.AdvanceExecutionRequest{ID: testutil.Execution2.ID, Status: "completed"},
	)
	require.NoError(t, err)

	entries, err := repository.NewRewardRepository().GetListByUserID(ctx, testutil.Child1.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Ice cream on Sunday", entries[0].Description)

	// The emailed link is no longer usable.
	_, err = domains.approval.Redeem(ctx, tokens[0].Token)
	require.Equal(t, errorx.New(errorx.TokenAlreadyUsed, "The approval token is already used"), err)
}

// staleExecutionRepo returns the execution as it was before a concurrent
// transition committed.
type staleExecutionRepo struct {
	repository.ExecutionRepository
}

func (r *staleExecutionRepo) GetByID(ctx context.Context, id string) (*entity.Execution, error) {
	execution, err := r.ExecutionRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	execution.Status = entity.PendingApproval
	return execution, nil
}

func Test_approvalDomain_Issue_AfterCompletion(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domains := newTestDomains(nil, nil)

	_, err := domains.approval.Redeem(ctx, testutil.ApprovalToken3.Token)
	require.NoError(t, err)

	approval := NewApprovalDomain(
		&staleExecutionRepo{ExecutionRepository: repository.NewExecutionRepository()},
		repository.NewApprovalTokenRepository(),
		repository.NewRewardRepository(),
		repository.NewAchievementRepository(),
		repository.NewNotificationRecordRepository(),
		&testutil.MockDispatcher{},
	)

	_, err = approval.Issue(ctx, testutil.Execution3.ID)
	require.Equal(t, errorx.New(errorx.InvalidState, "The quest is not waiting for approval"), err)

	tokens, err := repository.NewApprovalTokenRepository().GetValidByExecutionID(ctx, testutil.Execution3.ID)
	require.NoError(t, err)
	require.Empty(t, tokens)
}
