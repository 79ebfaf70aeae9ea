package entity

import (
	"database/sql"

	"github.com/homequest/backend/pkg/enum"
)

type RewardStatus string

var (
	RewardUnpaid = enum.New(RewardStatus("unpaid"))
	RewardPaid   = enum.New(RewardStatus("paid"))
)

type RewardLedgerEntry struct {
	Base

	ExecutionID string    `gorm:"not null;uniqueIndex"`
	Execution   Execution `gorm:"foreignKey:ExecutionID"`

	QuestID string `gorm:"not null"`
	Quest   Quest  `gorm:"foreignKey:QuestID"`

	UserID string `gorm:"not null;index"`
	User   User   `gorm:"foreignKey:UserID"`

	// Amount and Description are copied from the quest reward at settlement.
	Amount      int64
	Description string

	Status RewardStatus `gorm:"not null"`
	PaidAt sql.NullTime
}
