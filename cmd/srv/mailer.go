package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/homequest/backend/internal/domain/notification"
	"github.com/homequest/backend/pkg/kafka"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startMailer(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadSnowFlake(mailerNode)
	s.loadRepos()

	cfg := xcontext.Configs(s.ctx)
	mailer := notification.NewMailer(
		notification.NewSMTPDispatcher(cfg.Notification.SMTP),
		s.approvalTokenRepo,
		s.notificationRecordRepo,
	)

	subscriber, err := kafka.NewSubscriber(
		"mailer",
		cfg.Kafka.Brokers(),
		[]string{cfg.Notification.Topic},
		mailer.Subscribe,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(ctx).Infof("Mailer subscribes topic %s", cfg.Notification.Topic)
	subscriber.Subscribe(ctx)

	if err := subscriber.Stop(s.ctx); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot stop subscriber: %v", err)
	}

	xcontext.Logger(s.ctx).Infof("Mailer stop")
	return nil
}
