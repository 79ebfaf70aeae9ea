package entity

import (
	"database/sql"
	"time"
)

type ApprovalToken struct {
	ID        string `gorm:"primarykey"`
	Token     string `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time

	ExecutionID string    `gorm:"not null;index"`
	Execution   Execution `gorm:"foreignKey:ExecutionID"`

	UsedAt  sql.NullTime
	IsValid bool `gorm:"not null"`
}
