package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/homequest/backend/internal/domain/cron"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadSnowFlake(cronNode)
	s.loadStorage()
	s.loadDispatcher()
	s.loadRepos()
	s.loadDomains()

	cfg := xcontext.Configs(s.ctx)
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewApprovalReminderCronJob(
		s.executionRepo,
		s.notificationRecordRepo,
		s.approvalDomain,
		cfg.Approval.ReminderInterval,
	))

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		<-signals
		cronJobManager.Cancel(s.ctx)
	}()

	cronJobManager.Start(s.ctx)
	return nil
}
