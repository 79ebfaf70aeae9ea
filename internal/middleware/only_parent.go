package middleware

import (
	"context"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/router"
)

func OnlyParent() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if err := common.VerifyRole(ctx, entity.ParentRole); err != nil {
			return nil, err
		}

		return ctx, nil
	}
}
