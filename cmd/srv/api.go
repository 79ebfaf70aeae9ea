package main

import (
	"net/http"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/middleware"
	"github.com/homequest/backend/pkg/router"
	"github.com/homequest/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	db := s.newDatabase()
	s.ctx = xcontext.WithDB(s.ctx, db)
	s.migrateDB()
	s.loadSnowFlake(apiNode)
	s.loadRedisClient()
	s.loadStorage()
	s.loadDispatcher()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(cfg.ApiServer.ServerConfigs),
	}

	xcontext.Logger(s.ctx).Infof("Server start in port: %s", cfg.ApiServer.Port)
	var err error
	if cfg.ApiServer.Cert != "" && cfg.ApiServer.Key != "" {
		err = httpSrv.ListenAndServeTLS(cfg.ApiServer.Cert, cfg.ApiServer.Key)
	} else {
		err = httpSrv.ListenAndServe()
	}
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stop")
	return nil
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	s.router = router.New(s.ctx, xcontext.DB(s.ctx), cfg, xcontext.Logger(s.ctx))
	s.router.AddCloser(middleware.Logger())
	s.router.Before(middleware.AuthVerifier())

	// Anonymous approval link, the emailed <AppURL>/?approve_token=<token>.
	approvalRouter := s.router.Branch()
	approvalRouter.Before(middleware.RateLimit(common.NewRateLimiter(
		"approval",
		cfg.RateLimit.ApprovalRequests,
		cfg.RateLimit.ApprovalWindow,
		s.redisClient,
	)))
	approvalRouter.Before(middleware.ApprovalLinkOnly)
	{
		router.GET(approvalRouter, "/", s.approvalDomain.RedeemApprovalToken)
	}

	authRouter := s.router.Branch()
	authRouter.After(middleware.HandleSetAccessToken())
	{
		router.POST(authRouter, "/login", s.authDomain.Login)
	}

	// These following APIs need authentication.
	userRouter := s.router.Branch()
	userRouter.Before(middleware.Authenticate)
	{
		// Quest API
		router.POST(userRouter, "/createQuest", s.questDomain.Create)
		router.GET(userRouter, "/getQuest", s.questDomain.Get)

		// Execution API
		router.POST(userRouter, "/advanceExecution", s.executionDomain.Advance)
		router.GET(userRouter, "/getExecutionStatus", s.executionDomain.GetStatus)
		router.GET(userRouter, "/getMyExecutions", s.executionDomain.GetMyExecutions)
		router.POST(userRouter, "/updateExecutionReport", s.executionDomain.UpdateReport)
		router.POST(userRouter, "/uploadExecutionPhoto", s.executionDomain.UploadPhoto)

		// Reward API
		router.GET(userRouter, "/getMyRewards", s.rewardDomain.GetMyRewards)
	}

	// These following APIs are only for parents.
	parentRouter := userRouter.Branch()
	parentRouter.Before(middleware.OnlyParent())
	{
		router.POST(parentRouter, "/reissueApprovalToken", s.approvalDomain.ReissueApprovalToken)
		router.POST(parentRouter, "/markRewardPaid", s.rewardDomain.MarkPaid)
	}
}
