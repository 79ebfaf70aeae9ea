package entity

import "github.com/homequest/backend/pkg/enum"

type NotificationOutcome string

var (
	NotificationSent   = enum.New(NotificationOutcome("sent"))
	NotificationQueued = enum.New(NotificationOutcome("queued"))
	NotificationFailed = enum.New(NotificationOutcome("failed"))
)

type NotificationRecord struct {
	SnowFlakeBase

	ExecutionID string `gorm:"not null;index"`
	Recipient   string
	Outcome     NotificationOutcome `gorm:"not null"`
	Reason      string
}
