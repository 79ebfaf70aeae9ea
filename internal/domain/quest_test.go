package domain

import (
	"testing"
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

func Test_questDomain_Create_Failed(t *testing.T) {
	tests := []struct {
		name    string
		user    *entity.User
		req     *model.CreateQuestRequest
		wantErr error
	}{
		{
			name:    "no permission",
			user:    testutil.Child1,
			req:     &model.CreateQuestRequest{Title: "Feed the cat"},
			wantErr: errorx.New(errorx.PermissionDenied, "Permission denied"),
		},
		{
			name:    "empty title",
			user:    testutil.Parent1,
			req:     &model.CreateQuestRequest{Title: "  "},
			wantErr: errorx.New(errorx.BadRequest, "Not allow an empty title"),
		},
		{
			name:    "not found assignee",
			user:    testutil.Parent1,
			req:     &model.CreateQuestRequest{Title: "Feed the cat", AssigneeID: "invalid-id"},
			wantErr: errorx.New(errorx.NotFound, "Not found assignee"),
		},
		{
			name:    "assign a parent",
			user:    testutil.Parent1,
			req:     &model.CreateQuestRequest{Title: "Feed the cat", AssigneeID: testutil.Parent1.ID},
			wantErr: errorx.New(errorx.BadRequest, "Only a child can be assigned to a quest"),
		},
		{
			name: "negative points",
			user: testutil.Parent1,
			req: &model.CreateQuestRequest{
				Title:  "Feed the cat",
				Reward: model.RewardInput{Reward: entity.PointsReward(-400)},
			},
			wantErr: errorx.New(errorx.BadRequest, "Not allow negative reward points"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.CreateFixtureDb(ctx)
			domains := newTestDomains(nil, nil)

			_, err := domains.quest.Create(testutil.MockContextWithUser(ctx, *tt.user), tt.req)
			require.Equal(t, tt.wantErr, err)
		})
	}
}

func Test_questDomain_Create(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domains := newTestDomains(nil, nil)
	parentCtx := testutil.MockContextWithUser(ctx, *testutil.Parent1)

	deadline := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)
	resp, err := domains.quest.Create(parentCtx, &model.CreateQuestRequest{
		Title:      "Feed the cat",
		Reward:     model.RewardInput{Reward: entity.ParseReward("250")},
		Deadline:   &deadline,
		AssigneeID: testutil.Child1.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.NotEmpty(t, resp.ExecutionID)

	got, err := domains.quest.Get(parentCtx, &model.GetQuestRequest{ID: resp.ID})
	require.NoError(t, err)
	require.Equal(t, "Feed the cat", got.Quest.Title)
	require.Equal(t, "points", got.Quest.Reward.Kind)
	require.Equal(t, int64(250), got.Quest.Reward.Points)
	require.Equal(t, "250 points", got.Quest.Reward.Display)
	require.Equal(t, testutil.Parent1.ID, got.Quest.CreatedBy.ID)
	require.Equal(t, "Mom", got.Quest.CreatedBy.Name)
	require.NotEmpty(t, got.Quest.Deadline)

	require.Equal(t, resp.ExecutionID, got.Execution.ID)
	require.Equal(t, "unclaimed", got.Execution.Status)
	require.Equal(t, testutil.Child1.ID, got.Execution.Assignee.ID)
	require.Equal(t, "Taro", got.Execution.Assignee.Name)
}

func Test_questDomain_Get_NotFound(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domains := newTestDomains(nil, nil)

	_, err := domains.quest.Get(ctx, &model.GetQuestRequest{ID: "invalid-id"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found quest"), err)
}
