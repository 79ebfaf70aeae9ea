package main

import (
	"github.com/urfave/cli/v2"
)

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Homequest"
	s.app.Usage = "Household quests with remote approval"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path of the toml config file",
			EnvVars: []string{"HOMEQUEST_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used to start the api server, including the anonymous approval link.`,
		},
		{
			Action:      s.startMailer,
			Name:        "mailer",
			Usage:       "Start service mailer",
			Category:    "Worker",
			Description: `Used to send the approval requests queued in kafka by email.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Used to remind approvers whose approval request could not be delivered.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Run only the migrator of this version",
				},
			},
		},
		{
			Name:     "user",
			Usage:    "Manage users",
			Category: "Database",
			Subcommands: []*cli.Command{
				{
					Action: s.startUserAdd,
					Name:   "add",
					Usage:  "Add a user",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "name", Required: true},
						&cli.StringFlag{Name: "email", Required: true},
						&cli.StringFlag{Name: "password", Required: true},
						&cli.StringFlag{Name: "role", Value: "child", Usage: "child or parent"},
					},
				},
			},
		},
	}
}
