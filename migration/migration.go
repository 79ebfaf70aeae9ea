package migration

import (
	"context"
	"sort"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/xcontext"
)

type Migrator func(context.Context) error

var Migrators = map[string]Migrator{
	"0000": migrate0000,
	"0001": migrate0001,
}

// Versions returns the versions of Migrators in ascending order.
func Versions() []string {
	versions := make([]string, 0, len(Migrators))
	for v := range Migrators {
		versions = append(versions, v)
	}

	sort.Strings(versions)
	return versions
}

// AutoMigrate creates or updates all tables and indexes to the latest
// version. When it is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	err := xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Quest{},
		&entity.Execution{},
		&entity.ApprovalToken{},
		&entity.RewardLedgerEntry{},
		&entity.NotificationRecord{},
		&entity.Achievement{},
	)
	if err != nil {
		return err
	}

	return migrate0001(ctx)
}
