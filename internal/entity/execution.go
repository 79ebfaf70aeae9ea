package entity

import (
	"database/sql"

	"github.com/homequest/backend/pkg/enum"
)

type ExecutionStatus string

var (
	Unclaimed       = enum.New(ExecutionStatus("unclaimed"))
	InProgress      = enum.New(ExecutionStatus("in_progress"))
	PendingApproval = enum.New(ExecutionStatus("pending_approval"))
	Completed       = enum.New(ExecutionStatus("completed"))
)

// Order returns the position of the status in the forward lifecycle.
func (s ExecutionStatus) Order() int {
	switch s {
	case Unclaimed:
		return 0
	case InProgress:
		return 1
	case PendingApproval:
		return 2
	case Completed:
		return 3
	}

	return -1
}

type Execution struct {
	Base

	QuestID string `gorm:"not null;uniqueIndex"`
	Quest   Quest  `gorm:"foreignKey:QuestID"`

	AssignedTo sql.NullString
	Assignee   User `gorm:"foreignKey:AssignedTo"`

	Status         ExecutionStatus `gorm:"not null;index"`
	StartedAt      sql.NullTime
	CompletedAt    sql.NullTime
	Memo           string
	PhotoReference string
}
