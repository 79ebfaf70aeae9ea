package lifecycle

import (
	"database/sql"
	"testing"
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/errorx"

	"github.com/stretchr/testify/require"
)

var (
	parent = Actor{UserID: "parent1", Role: entity.ParentRole}
	child1 = Actor{UserID: "child1", Role: entity.ChildRole}
	child2 = Actor{UserID: "child2", Role: entity.ChildRole}
)

func execution(status entity.ExecutionStatus, assignee string) *entity.Execution {
	e := &entity.Execution{Status: status}
	if assignee != "" {
		e.AssignedTo = sql.NullString{Valid: true, String: assignee}
	}

	return e
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		execution *entity.Execution
		target    entity.ExecutionStatus
		actor     Actor
		wantErr   errorx.Code
	}{
		{
			name:      "child claims unassigned quest",
			execution: execution(entity.Unclaimed, ""),
			target:    entity.InProgress,
			actor:     child1,
		},
		{
			name:      "assignee starts assigned quest",
			execution: execution(entity.Unclaimed, "child1"),
			target:    entity.InProgress,
			actor:     child1,
		},
		{
			name:      "another child cannot start assigned quest",
			execution: execution(entity.Unclaimed, "child1"),
			target:    entity.InProgress,
			actor:     child2,
			wantErr:   errorx.PermissionDenied,
		},
		{
			name:      "parent cannot start quest",
			execution: execution(entity.Unclaimed, ""),
			target:    entity.InProgress,
			actor:     parent,
			wantErr:   errorx.PermissionDenied,
		},
		{
			name:      "assignee reports completion",
			execution: execution(entity.InProgress, "child1"),
			target:    entity.PendingApproval,
			actor:     child1,
		},
		{
			name:      "non assignee cannot report completion",
			execution: execution(entity.InProgress, "child1"),
			target:    entity.PendingApproval,
			actor:     child2,
			wantErr:   errorx.PermissionDenied,
		},
		{
			name:      "parent approves",
			execution: execution(entity.PendingApproval, "child1"),
			target:    entity.Completed,
			actor:     parent,
		},
		{
			name:      "assignee cannot approve",
			execution: execution(entity.PendingApproval, "child1"),
			target:    entity.Completed,
			actor:     child1,
			wantErr:   errorx.PermissionDenied,
		},
		{
			name:      "skip from unclaimed to completed",
			execution: execution(entity.Unclaimed, ""),
			target:    entity.Completed,
			actor:     child1,
			wantErr:   errorx.InvalidTransition,
		},
		{
			name:      "skip from in progress to completed",
			execution: execution(entity.InProgress, "child1"),
			target:    entity.Completed,
			actor:     parent,
			wantErr:   errorx.InvalidTransition,
		},
		{
			name:      "go backward",
			execution: execution(entity.PendingApproval, "child1"),
			target:    entity.InProgress,
			actor:     child1,
			wantErr:   errorx.InvalidTransition,
		},
		{
			name:      "completed is terminal",
			execution: execution(entity.Completed, "child1"),
			target:    entity.Unclaimed,
			actor:     parent,
			wantErr:   errorx.InvalidTransition,
		},
		{
			name:      "same status",
			execution: execution(entity.InProgress, "child1"),
			target:    entity.InProgress,
			actor:     child1,
			wantErr:   errorx.InvalidTransition,
		},
		{
			name:      "unknown status",
			execution: execution(entity.InProgress, "child1"),
			target:    entity.ExecutionStatus("archived"),
			actor:     child1,
			wantErr:   errorx.InvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.execution, tt.target, tt.actor)
			if tt.wantErr == 0 {
				require.NoError(t, err)
			} else {
				require.True(t, errorx.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestCheckOverride(t *testing.T) {
	require.NoError(t, CheckOverride(execution(entity.Completed, "child1"), entity.InProgress, parent))
	require.NoError(t, CheckOverride(execution(entity.Unclaimed, "child1"), entity.Completed, parent))
	require.NoError(t, CheckOverride(execution(entity.InProgress, ""), entity.Unclaimed, parent))

	err := CheckOverride(execution(entity.Completed, "child1"), entity.InProgress, child1)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	err = CheckOverride(execution(entity.Unclaimed, ""), entity.PendingApproval, parent)
	require.True(t, errorx.Is(err, errorx.InvalidState))

	err = CheckOverride(execution(entity.Completed, "child1"), entity.Completed, parent)
	require.True(t, errorx.Is(err, errorx.InvalidTransition))
}

func TestEffectsOf(t *testing.T) {
	now := time.Now()

	effects := EffectsOf(execution(entity.Unclaimed, ""), entity.InProgress, child1, now)
	require.True(t, effects.Claim)
	require.Equal(t, "child1", effects.Updates["assigned_to"])
	require.Equal(t, now, effects.Updates["started_at"])
	require.False(t, effects.IssueToken)
	require.False(t, effects.Settle)

	effects = EffectsOf(execution(entity.Unclaimed, "child1"), entity.InProgress, child1, now)
	require.False(t, effects.Claim)
	require.NotContains(t, effects.Updates, "assigned_to")

	started := execution(entity.InProgress, "child1")
	started.StartedAt = sql.NullTime{Valid: true, Time: now.Add(-time.Hour)}
	effects = EffectsOf(started, entity.PendingApproval, child1, now)
	require.True(t, effects.IssueToken)
	require.NotContains(t, effects.Updates, "started_at")
	require.Equal(t, entity.PendingApproval, effects.Updates["status"])

	effects = EffectsOf(execution(entity.PendingApproval, "child1"), entity.Completed, parent, now)
	require.True(t, effects.Settle)
	require.Equal(t, now, effects.Updates["completed_at"])

	effects = EffectsOf(execution(entity.Completed, "child1"), entity.Unclaimed, parent, now)
	require.Nil(t, effects.Updates["completed_at"])
	require.Contains(t, effects.Updates, "completed_at")
}
