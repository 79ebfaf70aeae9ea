package main

import (
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startUserAdd(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRepos()
	s.loadDomains()

	resp, err := s.authDomain.CreateUser(s.ctx, &model.CreateUserRequest{
		Name:     cctx.String("name"),
		Email:    cctx.String("email"),
		Password: cctx.String("password"),
		Role:     cctx.String("role"),
	})
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Created user %s", resp.ID)
	return nil
}
