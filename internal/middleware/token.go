package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/homequest/backend/pkg/router"
	"github.com/homequest/backend/pkg/xcontext"
)

type AccessTokenResponse interface {
	AccessTokenInfo() string
}

func HandleSetAccessToken() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		tokenResp, ok := router.Response(ctx).(AccessTokenResponse)
		if ok {
			cfg := xcontext.Configs(ctx)
			http.SetCookie(xcontext.HTTPWriter(ctx), &http.Cookie{
				Name:     cfg.Auth.AccessToken.Name,
				Value:    tokenResp.AccessTokenInfo(),
				Path:     "/",
				Expires:  time.Now().Add(cfg.Auth.AccessToken.Expiration),
				Secure:   cfg.Env != "local" && cfg.Env != "test",
				HttpOnly: true,
			})
		}

		return ctx, nil
	}
}
