package main

import (
	"fmt"

	"github.com/homequest/backend/migration"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())

	version := cctx.String("version")
	if version == "" {
		for _, v := range migration.Versions() {
			if err := migration.Migrators[v](s.ctx); err != nil {
				return fmt.Errorf("migrate %s: %w", v, err)
			}
		}

		xcontext.Logger(s.ctx).Infof("Migrated all versions")
		return nil
	}

	migrator, ok := migration.Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	if err := migrator(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated version %s", version)
	return nil
}
