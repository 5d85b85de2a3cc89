package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc/health"

	grpchealth "github.com/edgeengage/oauth-server/internal/api/grpc/health"
	grpcrouter "github.com/edgeengage/oauth-server/internal/api/grpc/router"
	httpctx "github.com/edgeengage/oauth-server/internal/api/http/context"
	"github.com/edgeengage/oauth-server/internal/api/http/handler"
	httprouter "github.com/edgeengage/oauth-server/internal/api/http/router"
	"github.com/edgeengage/oauth-server/internal/config"
	"github.com/edgeengage/oauth-server/internal/logger"
	"github.com/edgeengage/oauth-server/internal/metrics"
	"github.com/edgeengage/oauth-server/internal/model"
	"github.com/edgeengage/oauth-server/internal/repository/postgres"
	redisrepo "github.com/edgeengage/oauth-server/internal/repository/redis"
	"github.com/edgeengage/oauth-server/internal/server"
	"github.com/edgeengage/oauth-server/internal/service"
	"github.com/edgeengage/oauth-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	rdb, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("failed to initialize session store", "error", err)
	}
	defer rdb.Close()

	authorizationRepo := postgres.NewAuthorizationRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := redisrepo.NewSessionRepository(rdb)

	authorizer := service.NewAuthorizer(authorizationRepo, cfg.OAuth.CodeTTL, logger)
	exchanger := service.NewExchanger(authorizationRepo, cfg.OAuth.AccessTokenTTL, logger)
	introspector := service.NewIntrospector(tokenRepo, userRepo, logger)
	janitor := service.NewJanitor(authorizationRepo, tokenRepo, cfg.OAuth.PurgeInterval, cfg.OAuth.PurgeRetention, logger)
	healthChecker := service.NewHealth(map[string]service.Pinger{
		"postgres": db,
		"redis":    service.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	})

	tickets := token.NewConsentTickets(cfg.OAuth.ConsentSecret, cfg.OAuth.ConsentTTL)
	ctxMgr := httpctx.NewManager()
	m := metrics.New()

	httpServer := registerHTTPServer(cfg, logger, m, ctxMgr, sessionRepo, authorizer, exchanger, introspector, tickets, healthChecker)

	healthServer := health.NewServer()
	healthUpdater := grpchealth.NewUpdater(healthServer, healthChecker, cfg.GRPC.HealthInterval, logger)
	grpcServer := server.NewGRPCServer(grpcrouter.New(healthServer, logger).Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	servers := []model.Server{httpServer, grpcServer}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		healthUpdater.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		janitor.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerHTTPServer(
	cfg *config.Config,
	logger *logger.Logger,
	m *metrics.Metrics,
	ctxMgr model.ContextManager,
	sessions model.SessionStore,
	authorizer *service.Authorizer,
	exchanger *service.Exchanger,
	introspector *service.Introspector,
	tickets *token.ConsentTickets,
	checker *service.Health,
) *server.HTTPServer {
	r := httprouter.New(
		handler.NewOAuth(exchanger, introspector, m, logger),
		handler.NewConsent(authorizer, tickets, ctxMgr, m, logger),
		handler.NewHealth(checker, logger),
		sessions,
		cfg.Session.CookieName,
		ctxMgr,
		m,
		logger,
	)

	return server.NewHTTPServer(r.Register(), cfg.HTTP.Address)
}
