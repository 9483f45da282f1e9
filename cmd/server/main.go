package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tracker/api/handler"
	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/infrastructure/monitor"
	"github.com/fastygo/tracker/internal/middleware"
	"github.com/fastygo/tracker/internal/router"
	"github.com/fastygo/tracker/internal/services"
	"github.com/fastygo/tracker/internal/services/lifecycle"
	"github.com/fastygo/tracker/internal/storage"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/pkg/i18n"
	"github.com/fastygo/tracker/pkg/logger"
	adminUC "github.com/fastygo/tracker/usecase/admin"
	authUC "github.com/fastygo/tracker/usecase/auth"
	dashboardUC "github.com/fastygo/tracker/usecase/dashboard"
	projectUC "github.com/fastygo/tracker/usecase/project"
	taskUC "github.com/fastygo/tracker/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	clock := storage.Clock(cfg.Location())

	store, err := storage.Open(appCtx, cfg, clock, zapLogger)
	if err != nil {
		zapLogger.Fatal("database connection failed", zap.Error(err))
	}
	manager.Register("database", func(ctx context.Context) error {
		return store.Close()
	})

	sessions, err := storage.OpenSessions(appCtx, cfg)
	if err != nil {
		zapLogger.Fatal("session store failed", zap.Error(err))
	}
	manager.Register("sessions", func(ctx context.Context) error {
		return sessions.Close()
	})

	mon := monitor.New(10*time.Second, zapLogger)
	mon.Register(store.Driver, store)
	mon.Register("sessions_"+sessions.Backend, sessions)
	if sessions.Local != nil {
		mon.CountSessions(sessions.Local)

		sweeper, err := services.NewSessionSweeper(sessions.Local, cfg.Sessions.SweepSchedule, zapLogger)
		if err != nil {
			zapLogger.Fatal("invalid session sweep schedule", zap.Error(err))
		}
		sweeper.Start()
		manager.Register("session_sweeper", func(ctx context.Context) error {
			sweeper.Stop(ctx)
			return nil
		})
	}
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	translator, err := i18n.New(cfg.Locale)
	if err != nil {
		zapLogger.Fatal("i18n catalog failed", zap.Error(err))
	}

	authUseCase := authUC.New(store.Users, sessions.Repo, authUC.Options{
		SessionTTL: cfg.Sessions.TTL,
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
		JWTTTL:     cfg.JWT.TTL,
		BcryptCost: cfg.Security.BcryptCost,
	}, zapLogger)
	projectUseCase := projectUC.New(store.Projects, store.Tasks, zapLogger)
	taskUseCase := taskUC.New(store.Tasks, store.Projects, store.Users, clock, zapLogger)
	dashboardUseCase := dashboardUC.New(store.Projects, store.Tasks, clock, zapLogger)
	adminUseCase := adminUC.New(store.Users, store.Projects, store.Tasks, store.AdminLog, clock, zapLogger,
		adminUC.WithBcryptCost(cfg.Security.BcryptCost))

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	base := apiHandler.Base{
		Adapter:    ctxAdapter,
		Translator: translator,
		Flasher:    authUseCase,
		Logger:     zapLogger,
	}

	handlers := router.Handlers{
		Auth: apiHandler.NewAuthHandler(authUseCase, apiHandler.SessionCookie{
			Name:   cfg.Sessions.CookieName,
			Secure: cfg.Sessions.CookieSecure,
			TTL:    cfg.Sessions.TTL,
		}, base),
		Project:   apiHandler.NewProjectHandler(projectUseCase, base),
		Task:      apiHandler.NewTaskHandler(taskUseCase, base),
		Dashboard: apiHandler.NewDashboardHandler(dashboardUseCase, base),
		Admin:     apiHandler.NewAdminHandler(adminUseCase, base),
		Health:    apiHandler.NewHealthHandler(mon, base),
	}

	authenticate := middleware.Authenticate(authUseCase, ctxAdapter, cfg.Sessions.CookieName, zapLogger)
	r := router.New(handlers, authenticate)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("database", store.Driver),
			zap.String("sessions", sessions.Backend),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Wait(appCtx); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
