package lifecycle

import (
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/errorx"
)

// Actor is the caller of a transition as supplied by the identity layer.
type Actor struct {
	UserID string
	Role   entity.UserRole
}

// Check validates a forward transition of the execution to target.
//
//	unclaimed        -> in_progress       by a child, who becomes the assignee
//	                                      if nobody is assigned yet.
//	in_progress      -> pending_approval  by the assignee.
//	pending_approval -> completed         by a parent.
func Check(execution *entity.Execution, target entity.ExecutionStatus, actor Actor) error {
	if err := checkTarget(execution, target); err != nil {
		return err
	}

	switch {
	case execution.Status == entity.Unclaimed && target == entity.InProgress:
		if actor.Role != entity.ChildRole {
			return errorx.New(errorx.PermissionDenied, "Only a child can start a quest")
		}

		if execution.AssignedTo.Valid && execution.AssignedTo.String != actor.UserID {
			return errorx.New(errorx.PermissionDenied, "The quest is assigned to another user")
		}

	case execution.Status == entity.InProgress && target == entity.PendingApproval:
		if !execution.AssignedTo.Valid || execution.AssignedTo.String != actor.UserID {
			return errorx.New(errorx.PermissionDenied, "Only the assignee can report completion")
		}

	case execution.Status == entity.PendingApproval && target == entity.Completed:
		if actor.Role != entity.ParentRole {
			return errorx.New(errorx.PermissionDenied, "Only a parent can approve")
		}

	default:
		return errorx.New(errorx.InvalidTransition, "Cannot change status from %s to %s",
			execution.Status, target)
	}

	return nil
}

// CheckOverride validates a manual transition by a parent. Any target is
// allowed, including going backward, except that an execution without an
// assignee cannot leave the unclaimed status this way.
func CheckOverride(execution *entity.Execution, target entity.ExecutionStatus, actor Actor) error {
	if err := checkTarget(execution, target); err != nil {
		return err
	}

	if actor.Role != entity.ParentRole {
		return errorx.New(errorx.PermissionDenied, "Only a parent can override the status")
	}

	if target != entity.Unclaimed && !execution.AssignedTo.Valid {
		return errorx.New(errorx.InvalidState, "The quest has no assignee")
	}

	return nil
}

func checkTarget(execution *entity.Execution, target entity.ExecutionStatus) error {
	if target.Order() < 0 {
		return errorx.New(errorx.InvalidTransition, "Unknown status %s", target)
	}

	if execution.Status == target {
		return errorx.New(errorx.InvalidTransition, "The quest is already %s", target)
	}

	return nil
}

// Effects describes what a transition changes besides the status.
type Effects struct {
	// Claim assigns the actor to the execution.
	Claim bool

	// Updates are the columns to set along with the status.
	Updates map[string]any

	// IssueToken mints a new approval token and notifies the approver.
	IssueToken bool

	// Settle records the reward of the execution.
	Settle bool
}

// EffectsOf returns the effects of moving execution to target. Outstanding
// approval tokens are always invalidated by a transition, the caller does
// not need an effect for that.
func EffectsOf(execution *entity.Execution, target entity.ExecutionStatus, actor Actor, now time.Time) Effects {
	effects := Effects{Updates: map[string]any{"status": target}}

	switch target {
	case entity.Unclaimed:
		effects.Updates["started_at"] = nil
		effects.Updates["completed_at"] = nil

	case entity.InProgress:
		if !execution.AssignedTo.Valid {
			effects.Claim = true
			effects.Updates["assigned_to"] = actor.UserID
		}

		if !execution.StartedAt.Valid {
			effects.Updates["started_at"] = now
		}
		effects.Updates["completed_at"] = nil

	case entity.PendingApproval:
		if !execution.StartedAt.Valid {
			effects.Updates["started_at"] = now
		}
		effects.Updates["completed_at"] = nil
		effects.IssueToken = true

	case entity.Completed:
		effects.Updates["completed_at"] = now
		effects.Settle = true
	}

	return effects
}
