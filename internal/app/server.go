// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"fixit-service/internal/config"
	"fixit-service/internal/db"
	activityHandler "fixit-service/internal/handlers/activity"
	auditHandler "fixit-service/internal/handlers/audit"
	authHandler "fixit-service/internal/handlers/auth"
	reportHandler "fixit-service/internal/handlers/report"
	wsHandler "fixit-service/internal/handlers/websocket"
	"fixit-service/internal/middleware"
	"fixit-service/internal/pkg/classifier"
	"fixit-service/internal/pkg/jwt"
	"fixit-service/internal/pkg/session"
	"fixit-service/internal/repository/postgres"
	activityService "fixit-service/internal/service/activity"
	auditService "fixit-service/internal/service/audit"
	authService "fixit-service/internal/service/auth"
	reportService "fixit-service/internal/service/report"
	"fixit-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer *http.Server
	pool       *pgxpool.Pool
	redis      *redis.Client
	sessions   *session.Registry
	hubCancel  context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redis = redisClient
	logger.Info("connected to Redis", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Registry & Rate Limiter -----
	registry := session.NewRegistry(logger)
	s.sessions = registry
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Classifier -----
	clf, err := classifier.NewFromCSV(s.cfg.ClassifierDatasetPath)
	if err != nil {
		logger.Warn("classifier dataset unavailable, all reports will be uncategorized",
			zap.String("path", s.cfg.ClassifierDatasetPath), zap.Error(err))
		clf = nil
	}

	// ----- Repositories -----
	reportRepo := postgres.NewReportRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(jwtManager.Verifier, registry, logger)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	s.hubCancel = hubCancel
	go hub.Run(hubCtx)

	// ----- Services -----
	authSvc, err := authService.NewAuthService(
		registry,
		rateLimiter,
		activityRepo,
		auditRepo,
		jwtManager,
		authService.Config{
			AdminEmail:         s.cfg.AdminEmail,
			AdminPassword:      s.cfg.AdminPassword,
			AdminName:          s.cfg.AdminName,
			AllowedEmailDomain: s.cfg.AllowedEmailDomain,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to build auth service: %w", err)
	}
	authSvc.SetNotifier(hub)

	reportSvc := reportService.NewReportService(reportRepo, clf, hub, auditRepo, logger)
	auditSvc := auditService.NewAuditService(auditRepo, logger)
	activitySvc := activityService.NewActivityService(activityRepo, logger)

	// Timed-out sessions force a client logout and land in the audit
	// trail. Callbacks fire outside the registry lock.
	registry.OnTimeout(hub.NotifySessionExpired)
	registry.OnTimeout(authSvc.RecordSessionExpiry)
	registry.OnWarning(hub.NotifySessionWarning)
	registry.StartMonitoring()

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authSvc, logger)
	reportHandlerInst := reportHandler.NewReportHandler(reportSvc, logger)
	auditHandlerInst := auditHandler.NewAuditHandler(auditSvc, logger)
	activityHandlerInst := activityHandler.NewActivityHandler(activitySvc, logger)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(jwtManager.Verifier, registry)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:     authHandlerInst,
		ReportHandler:   reportHandlerInst,
		AuditHandler:    auditHandlerInst,
		ActivityHandler: activityHandlerInst,
		WSHandler:       wsHandlerInst,
		AuthMiddleware:  authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	s.httpServer = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	log.Printf("🚀 Server running on %s", s.cfg.HTTPAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server, the session sweeper and the
// connection pools.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error

	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			firstErr = err
		}
	}

	if s.sessions != nil {
		s.sessions.StopMonitoring()
	}
	if s.hubCancel != nil {
		s.hubCancel()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}

	return firstErr
}
