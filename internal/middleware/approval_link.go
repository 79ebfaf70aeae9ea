package middleware

import (
	"context"

	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/xcontext"
)

const approveTokenParam = "approve_token"

// ApprovalLinkOnly rejects approval links carrying any query parameter other
// than a single approve_token.
func ApprovalLinkOnly(ctx context.Context) (context.Context, error) {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ctx, nil
	}

	for key, values := range req.URL.Query() {
		if key != approveTokenParam || len(values) != 1 {
			xcontext.Logger(ctx).Debugf("Invalid approval link query: %s", req.URL.RawQuery)
			return nil, errorx.New(errorx.InvalidApprovalLink, errorx.InvalidApprovalLinkMessage)
		}
	}

	return ctx, nil
}
