package domain

import (
	"context"
	"testing"
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/testutil"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

type deadlockApprovalTokenRepo struct {
	repository.ApprovalTokenRepository
	useCalls int
}

func (r *deadlockApprovalTokenRepo) Use(ctx context.Context, token string, usedAt time.Time) error {
	r.useCalls++
	return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
}

type busyOnceExecutionRepo struct {
	repository.ExecutionRepository
	transitionCalls int
}

func (r *busyOnceExecutionRepo) Transition(
	ctx context.Context, id string, from entity.ExecutionStatus, updates map[string]any,
) error {
	r.transitionCalls++
	if r.transitionCalls == 1 {
		return sqlite3.Error{Code: sqlite3.ErrBusy}
	}

	return r.ExecutionRepository.Transition(ctx, id, from, updates)
}

func Test_approvalDomain_Redeem_Contention(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	tokenRepo := &deadlockApprovalTokenRepo{ApprovalTokenRepository: repository.NewApprovalTokenRepository()}
	approval := NewApprovalDomain(
		repository.NewExecutionRepository(),
		tokenRepo,
		repository.NewRewardRepository(),
		repository.NewAchievementRepository(),
		repository.NewNotificationRecordRepository(),
		&testutil.MockDispatcher{},
	)

	_, err := approval.Redeem(ctx, testutil.ApprovalToken3.Token)
	require.Equal(t, errorx.New(errorx.RetryableContention, "The resource is busy, please try again"), err)
	require.Equal(t, 2, tokenRepo.useCalls)

	execution, err := repository.NewExecutionRepository().GetByID(ctx, testutil.Execution3.ID)
	require.NoError(t, err)
	require.Equal(t, entity.PendingApproval, execution.Status)
}

func Test_executionDomain_Advance_RetryOnContention(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	executionRepo := &busyOnceExecutionRepo{ExecutionRepository: repository.NewExecutionRepository()}
	execution := NewExecutionDomain(
		executionRepo,
		repository.NewApprovalTokenRepository(),
		repository.NewRewardRepository(),
		repository.NewAchievementRepository(),
		repository.NewNotificationRecordRepository(),
		&testutil.MockDispatcher{},
		&testutil.MockStorage{},
	)

	parentCtx := testutil.MockContextWithUser(ctx, *testutil.Parent1)
	resp, err := execution.Advance(parentCtx, &model.AdvanceExecutionRequest{
		ID:     testutil.Execution3.ID,
		Status: "completed",
	})
	require.NoError(t, err)
	require.Equal(t, "completed", resp.Status)
	require.Equal(t, 2, executionRepo.transitionCalls)

	entry, err := repository.NewRewardRepository().GetByExecutionID(ctx, testutil.Execution3.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), entry.Amount)
}
