package domain

import (
	"context"
	"testing"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/storage"
	"github.com/homequest/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

type testDomains struct {
	execution *executionDomain
	approval  *approvalDomain
	reward    *rewardDomain
	quest     *questDomain
}

func newTestDomains(dispatcher notification.Dispatcher, fileStorage storage.Storage) testDomains {
	if dispatcher == nil {
		dispatcher = &testutil.MockDispatcher{}
	}

	if fileStorage == nil {
		fileStorage = &testutil.MockStorage{}
	}

	executionRepo := repository.NewExecutionRepository()
	approvalTokenRepo := repository.NewApprovalTokenRepository()
	rewardRepo := repository.NewRewardRepository()
	achievementRepo := repository.NewAchievementRepository()
	notificationRecordRepo := repository.NewNotificationRecordRepository()

	return testDomains{
		execution: NewExecutionDomain(executionRepo, approvalTokenRepo, rewardRepo,
			achievementRepo, notificationRecordRepo, dispatcher, fileStorage),
		approval: NewApprovalDomain(executionRepo, approvalTokenRepo, rewardRepo,
			achievementRepo, notificationRecordRepo, dispatcher),
		reward: NewRewardDomain(executionRepo, approvalTokenRepo, rewardRepo,
			achievementRepo, notificationRecordRepo, dispatcher),
		quest: NewQuestDomain(repository.NewQuestRepository(), executionRepo,
			repository.NewUserRepository()),
	}
}

func newTestWorkflow(dispatcher notification.Dispatcher) *executionWorkflow {
	return newExecutionWorkflow(
		repository.NewExecutionRepository(),
		repository.NewApprovalTokenRepository(),
		repository.NewRewardRepository(),
		repository.NewAchievementRepository(),
		repository.NewNotificationRecordRepository(),
		dispatcher,
	)
}

func Test_executionWorkflow_settle(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	workflow := newTestWorkflow(&testutil.MockDispatcher{})

	err := common.Transaction(ctx, func(ctx context.Context) error {
		_, err := workflow.settle(ctx, testutil.Execution3.ID)
		return err
	})
	require.Equal(t, errorx.New(errorx.InvalidState, "The quest is not completed"), err)

	err = repository.NewExecutionRepository().Transition(ctx, testutil.Execution3.ID,
		entity.PendingApproval, map[string]any{"status": entity.Completed})
	require.NoError(t, err)

	for i, wantCreated := range []bool{true, false, false} {
		var created bool
		err := common.Transaction(ctx, func(ctx context.Context) error {
			var err error
			created, err = workflow.settle(ctx, testutil.Execution3.ID)
			return err
		})
		require.NoError(t, err)
		require.Equal(t, wantCreated, created, "settle #%d", i)
	}

	entry, err := repository.NewRewardRepository().GetByExecutionID(ctx, testutil.Execution3.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Child2.ID, entry.UserID)
	require.Equal(t, testutil.Quest3.ID, entry.QuestID)
	require.Equal(t, int64(100), entry.Amount)
	require.Equal(t, entity.RewardUnpaid, entry.Status)

	achievement, err := repository.NewAchievementRepository().GetByUserID(ctx, testutil.Child2.ID)
	require.NoError(t, err)
	require.Equal(t, 1, achievement.TotalQuests)
	require.Equal(t, int64(100), achievement.TotalRewards)
}

func Test_executionWorkflow_issueToken_Supersedes(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	workflow := newTestWorkflow(&testutil.MockDispatcher{})

	var first, second *entity.ApprovalToken
	err := common.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if first, err = workflow.issueToken(ctx, testutil.Execution3.ID); err != nil {
			return err
		}

		second, err = workflow.issueToken(ctx, testutil.Execution3.ID)
		return err
	})
	require.NoError(t, err)
	require.Len(t, first.Token, 43)
	require.NotEqual(t, first.Token, second.Token)

	tokens, err := repository.NewApprovalTokenRepository().GetValidByExecutionID(ctx, testutil.Execution3.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Equal(t, second.Token, tokens[0].Token)
}

func Test_executionWorkflow_notifyApprovalRequested(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	dispatcher := &testutil.MockDispatcher{
		NotifyApprovalRequestedFunc: func(context.Context, *notification.ApprovalRequest) notification.Outcome {
			return notification.Failed("smtp is down")
		},
	}
	workflow := newTestWorkflow(dispatcher)

	outcome := workflow.notifyApprovalRequested(ctx, testutil.Execution3.ID, testutil.ApprovalToken3.Token)
	require.True(t, outcome.IsFailed())

	requests := dispatcher.Requests()
	require.Len(t, requests, 1)
	require.Equal(t, testutil.Parent1.Email, requests[0].Recipient)
	require.Equal(t,
		"http://localhost:8080/?approve_token="+testutil.ApprovalToken3.Token,
		requests[0].ApprovalURL)

	record, err := repository.NewNotificationRecordRepository().GetLatestByExecutionID(ctx, testutil.Execution3.ID)
	require.NoError(t, err)
	require.Equal(t, entity.NotificationFailed, record.Outcome)
	require.Equal(t, "smtp is down", record.Reason)
	require.Equal(t, testutil.Parent1.Email, record.Recipient)
}
