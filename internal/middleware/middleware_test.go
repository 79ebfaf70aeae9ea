package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/model"
	"github.com/homequest/backend/pkg/errorx"
	"github.com/homequest/backend/pkg/testutil"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
)

func TestApprovalLinkOnly(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "only token", url: "/?approve_token=abc"},
		{name: "no query", url: "/"},
		{name: "extra parameter", url: "/?approve_token=abc&redirect=http://evil.com", wantErr: true},
		{name: "duplicated token", url: "/?approve_token=abc&approve_token=def", wantErr: true},
		{name: "other parameter only", url: "/?token=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			ctx = xcontext.WithHTTPRequest(ctx, httptest.NewRequest(http.MethodGet, tt.url, nil))

			_, err := ApprovalLinkOnly(ctx)
			if tt.wantErr {
				require.Equal(t, errorx.New(errorx.InvalidApprovalLink, "link invalid or already used"), err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAuthVerifier(t *testing.T) {
	ctx := testutil.MockContext()
	token, err := xcontext.TokenEngine(ctx).Generate(time.Minute, model.AccessToken{
		ID:   testutil.Parent1.ID,
		Name: testutil.Parent1.Name,
		Role: string(testutil.Parent1.Role),
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		setup    func(req *http.Request)
		wantUser string
		wantRole string
	}{
		{
			name:     "bearer token",
			setup:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
			wantUser: testutil.Parent1.ID,
			wantRole: "parent",
		},
		{
			name: "cookie",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: xcontext.Configs(ctx).Auth.AccessToken.Name, Value: token})
			},
			wantUser: testutil.Parent1.ID,
			wantRole: "parent",
		},
		{
			name:  "invalid token",
			setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer invalid") },
		},
		{
			name:  "anonymous",
			setup: func(req *http.Request) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/getMyExecutions", nil)
			tt.setup(req)

			newCtx, err := AuthVerifier()(xcontext.WithHTTPRequest(ctx, req))
			require.NoError(t, err)
			require.Equal(t, tt.wantUser, xcontext.RequestUserID(newCtx))
			require.Equal(t, tt.wantRole, xcontext.RequestUserRole(newCtx))

			_, err = Authenticate(newCtx)
			if tt.wantUser == "" {
				require.Equal(t, errorx.New(errorx.Unauthenticated, "You need to authenticate before"), err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestOnlyParent(t *testing.T) {
	ctx := testutil.MockContext()

	_, err := OnlyParent()(testutil.MockContextWithUser(ctx, *testutil.Parent1))
	require.NoError(t, err)

	_, err = OnlyParent()(testutil.MockContextWithUser(ctx, *testutil.Child1))
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Permission denied"), err)
}

func TestRateLimit(t *testing.T) {
	ctx := testutil.MockContext()

	counters := map[string]int64{}
	redisClient := &testutil.MockRedisClient{
		IncrWithTTLFunc: func(ctx context.Context, key string, ttl time.Duration) (int64, error) {
			counters[key]++
			return counters[key], nil
		},
	}
	middleware := RateLimit(common.NewRateLimiter("approval", 2, time.Minute, redisClient))

	call := func(remoteAddr, forwardedFor string) error {
		req := httptest.NewRequest(http.MethodGet, "/?approve_token=abc", nil)
		req.RemoteAddr = remoteAddr
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}

		_, err := middleware(xcontext.WithHTTPRequest(ctx, req))
		return err
	}

	require.NoError(t, call("10.0.0.1:1234", ""))
	require.NoError(t, call("10.0.0.1:5678", ""))
	require.Equal(t,
		errorx.New(errorx.TooManyRequests, "Too many requests, please try again later"),
		call("10.0.0.1:9999", ""))

	require.NoError(t, call("127.0.0.1:1234", "10.0.0.2, 127.0.0.1"))
	require.Equal(t, int64(1), counters["ratelimit:approval:10.0.0.2"])
}
