package common

import (
	"context"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/xcontext"

	"golang.org/x/exp/slices"
)

// VerifyRole checks the coarse role supplied by the identity layer.
func VerifyRole(ctx context.Context, roles ...entity.UserRole) error {
	role := entity.UserRole(xcontext.RequestUserRole(ctx))
	if !slices.Contains(roles, role) {
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}
