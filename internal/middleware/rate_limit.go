package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/router"
	"github.com/homequest/backend/pkg/xcontext"
)

// RateLimit limits requests per client address.
func RateLimit(limiter common.RateLimiter) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if !limiter.Allow(ctx, clientIP(xcontext.HTTPRequest(ctx))) {
			return nil, errorx.New(errorx.TooManyRequests, "Too many requests, please try again later")
		}

		return ctx, nil
	}
}

func clientIP(req *http.Request) string {
	if req == nil {
		return ""
	}

	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(ip)
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}

	return host
}
