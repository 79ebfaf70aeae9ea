package testutil

import (
	"context"
	"time"

	"github.com/homequest/backend/config"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/authenticator"
	"github.com/homequest/backend/pkg/logger"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Env = "test"
	cfg.Database.TxTimeout = 30 * time.Second
	cfg.Auth.TokenSecret = "secret"
	cfg.Auth.AccessToken.Expiration = time.Minute
	cfg.Approval.AppURL = "http://localhost:8080"
	cfg.Approval.ReminderInterval = time.Hour
	cfg.File.MaxSize = 2 * 1024 * 1024
	cfg.File.MaxPhotoWidth = 64
	cfg.File.MaxPhotoHeight = 64
	cfg.RateLimit.ApprovalRequests = 10
	cfg.RateLimit.ApprovalWindow = time.Minute
	return cfg
}

// MockContext returns a context with an empty in-memory database. The
// database has only one connection, so concurrent transactions are
// serialized as a single-writer store would do.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	cfg := MockConfigs()
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)
	return ctx
}

func MockContextWithUser(ctx context.Context, user entity.User) context.Context {
	ctx = xcontext.WithRequestUserID(ctx, user.ID)
	return xcontext.WithRequestUserRole(ctx, string(user.Role))
}
