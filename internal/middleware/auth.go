package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/router"
	"github.com/homequest/backend/pkg/xcontext"
)

// AuthVerifier reads the access token from the Authorization header or the
// access token cookie and puts the request user into the context.
func AuthVerifier() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := getAccessToken(ctx, xcontext.HTTPRequest(ctx))
		if token == "" {
			return ctx, nil
		}

		var accessToken model.AccessToken
		if err := xcontext.TokenEngine(ctx).Verify(token, &accessToken); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return ctx, nil
		}

		ctx = xcontext.WithRequestUserID(ctx, accessToken.ID)
		ctx = xcontext.WithRequestUserRole(ctx, accessToken.Role)
		return ctx, nil
	}
}

func Authenticate(ctx context.Context) (context.Context, error) {
	if xcontext.RequestUserID(ctx) == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	return ctx, nil
}

func getAccessToken(ctx context.Context, req *http.Request) string {
	if req == nil {
		return ""
	}

	authorization := req.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return token
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err == nil {
		return cookie.Value
	}

	return ""
}
