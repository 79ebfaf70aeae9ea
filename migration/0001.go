package migration

import (
	"context"
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/xcontext"
)

type NotificationRecord0001 struct {
	ExecutionID string    `gorm:"index:idx_notification_records_execution_created,priority:1"`
	CreatedAt   time.Time `gorm:"index:idx_notification_records_execution_created,priority:2"`
}

func (NotificationRecord0001) TableName() string {
	return "notification_records"
}

// migrate0001 adds the index used to find the latest notification of an
// execution.
func migrate0001(ctx context.Context) error {
	migrator := xcontext.DB(ctx).Migrator()
	if migrator.HasIndex(&entity.NotificationRecord{}, "idx_notification_records_execution_created") {
		return nil
	}

	return migrator.CreateIndex(&NotificationRecord0001{}, "idx_notification_records_execution_created")
}
