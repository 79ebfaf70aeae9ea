package main

import (
	"context"
	"fmt"

	"github.com/homequest/backend/config"
	"github.com/homequest/backend/internal/domain"
	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/migration"
	"github.com/homequest/backend/pkg/authenticator"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/kafka"
	"github.com/homequest/backend/pkg/logger"
	"github.com/homequest/backend/pkg/pubsub"
	"github.com/homequest/backend/pkg/router"
	"github.com/homequest/backend/pkg/storage"
	"github.com/homequest/backend/pkg/xcontext"
	"github.com/homequest/backend/pkg/xredis"

	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Each command generates snowflake ids with its own node.
const (
	apiNode    = 1
	mailerNode = 2
	cronNode   = 3
)

type srv struct {
	ctx context.Context
	app *cli.App

	redisClient xredis.Client
	publisher   pubsub.Publisher
	storage     storage.Storage
	dispatcher  notification.Dispatcher

	userRepo               repository.UserRepository
	questRepo              repository.QuestRepository
	executionRepo          repository.ExecutionRepository
	approvalTokenRepo      repository.ApprovalTokenRepository
	rewardRepo             repository.RewardRepository
	achievementRepo        repository.AchievementRepository
	notificationRecordRepo repository.NotificationRecordRepository

	authDomain      domain.AuthDomain
	questDomain     domain.QuestDomain
	executionDomain domain.ExecutionDomain
	approvalDomain  domain.ApprovalDomain
	rewardDomain    domain.RewardDomain

	router *router.Router
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	s.ctx = xcontext.WithTokenEngine(s.ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	default:
		panic(fmt.Sprintf("unsupported database driver %s", cfg.Driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}

		// SQLite allows only one writer.
		sqlDB.SetMaxOpenConns(1)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadSnowFlake(node int64) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, n)
}

func (s *srv) loadRedisClient() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Redis.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("Redis is not configured, rate limit counters are kept in memory")
		return
	}

	client, err := xredis.NewClient(s.ctx, cfg.Redis.Addr)
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot connect to redis, rate limit counters are kept in memory: %v", err)
		return
	}

	s.redisClient = client
}

func (s *srv) loadPublisher(clientID string) {
	cfg := xcontext.Configs(s.ctx)
	publisher, err := kafka.NewPublisher(clientID, cfg.Kafka.Brokers())
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
}

func (s *srv) loadStorage() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Storage.Endpoint == "" && cfg.Storage.Region == "" {
		xcontext.Logger(s.ctx).Warnf("Storage is not configured, photo upload is disabled")
		s.storage = disabledStorage{}
		return
	}

	s3Storage, err := storage.NewS3Storage(cfg.Storage)
	if err != nil {
		panic(err)
	}

	s.storage = s3Storage
}

func (s *srv) loadDispatcher() {
	cfg := xcontext.Configs(s.ctx).Notification
	switch cfg.Mode {
	case "smtp":
		s.dispatcher = notification.NewSMTPDispatcher(cfg.SMTP)
	case "kafka":
		s.loadPublisher("api")
		s.dispatcher = notification.NewKafkaDispatcher(s.publisher, cfg.Topic)
	case "log", "":
		s.dispatcher = notification.NewLogDispatcher()
	default:
		panic(fmt.Sprintf("unsupported notification mode %s", cfg.Mode))
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.questRepo = repository.NewQuestRepository()
	s.executionRepo = repository.NewExecutionRepository()
	s.approvalTokenRepo = repository.NewApprovalTokenRepository()
	s.rewardRepo = repository.NewRewardRepository()
	s.achievementRepo = repository.NewAchievementRepository()
	s.notificationRecordRepo = repository.NewNotificationRecordRepository()
}

func (s *srv) loadDomains() {
	s.authDomain = domain.NewAuthDomain(s.userRepo)
	s.questDomain = domain.NewQuestDomain(s.questRepo, s.executionRepo, s.userRepo)
	s.executionDomain = domain.NewExecutionDomain(
		s.executionRepo,
		s.approvalTokenRepo,
		s.rewardRepo,
		s.achievementRepo,
		s.notificationRecordRepo,
		s.dispatcher,
		s.storage,
	)
	s.approvalDomain = domain.NewApprovalDomain(
		s.executionRepo,
		s.approvalTokenRepo,
		s.rewardRepo,
		s.achievementRepo,
		s.notificationRecordRepo,
		s.dispatcher,
	)
	s.rewardDomain = domain.NewRewardDomain(
		s.executionRepo,
		s.approvalTokenRepo,
		s.rewardRepo,
		s.achievementRepo,
		s.notificationRecordRepo,
		s.dispatcher,
	)
}

type disabledStorage struct{}

func (disabledStorage) Upload(context.Context, *storage.UploadObject) (*storage.UploadResponse, error) {
	return nil, errorx.New(errorx.Unavailable, "Photo upload is not available")
}
