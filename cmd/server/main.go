package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"insightval/internal/auth"
	"insightval/internal/config"
	cronrunner "insightval/internal/cron"
	"insightval/internal/db"
	"insightval/internal/handler"
	"insightval/internal/logger"
	gormrepository "insightval/internal/repository/gorm"
	"insightval/internal/scope"
	"insightval/internal/service"
	"insightval/internal/valuation"

	_ "insightval/docs"
)

func main() {
	cfgPath := os.Getenv("IV_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("IV_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		log.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		log.Fatal("auto-migrate failed", zap.Error(err))
	}

	marketConn := dbConn
	if strings.TrimSpace(cfg.MarketDB.DSN) != "" {
		marketConn, err = db.Open(cfg.MarketDB.DBConfig)
		if err != nil {
			log.Fatal("market db open failed", zap.Error(err))
		}
		defer db.Close(marketConn)
		if err := db.SetTimezone(marketConn, cfg.MarketDB.Timezone); err != nil {
			log.Warn("failed to set market timezone", zap.Error(err))
		}
	}
	if cfg.MarketDB.AutoMigrate {
		if err := db.AutoMigrateMarket(marketConn); err != nil {
			log.Fatal("market auto-migrate failed", zap.Error(err))
		}
	}

	store := gormrepository.New(dbConn.Gorm)
	market := gormrepository.NewMarket(marketConn.Gorm)

	resolver := &scope.Resolver{Market: market, Business: store, Logger: logger.Named(log, "scope")}
	targetSvc := &service.TargetService{
		Repo:            store,
		Resolver:        resolver,
		Logger:          logger.Named(log, "targets"),
		PreviewLimit:    cfg.Targets.PreviewLimit,
		MaxPreviewLimit: cfg.Targets.MaxPreviewLimit,
		Concurrency:     cfg.Targets.RefreshConcurrency,
	}
	insightSvc := &service.InsightService{Repo: store, Targets: targetSvc, Logger: logger.Named(log, "insights")}
	methodSvc := &service.MethodService{Repo: store, Logger: logger.Named(log, "methods")}
	engine := valuation.NewEngine(store, market, cfg.Valuation.PriceLookback, logger.Named(log, "valuation"))
	valuationSvc := &service.ValuationService{
		Engine:      engine,
		Repo:        store,
		Targets:     store,
		Concurrency: cfg.Valuation.BatchConcurrency,
		Logger:      logger.Named(log, "snapshots"),
	}

	if cfg.Valuation.SeedBuiltins {
		if err := methodSvc.EnsureBuiltins(context.Background()); err != nil {
			log.Fatal("seed built-in valuation methods failed", zap.Error(err))
		}
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	if cfg.Auth.Enabled && strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		log.Fatal("auth enabled without auth.jwt_secret")
	}
	verifier := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), Issuer: cfg.Auth.Issuer}
	router.Use(auth.RequireBearerMiddleware(cfg.Auth.Enabled, verifier))
	router.Use(auth.WriteAuditMiddleware(logger.Named(log, "audit")))

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, Market: marketConn.Gorm}
	healthHandler.Register(router)
	insightHandler := &handler.InsightHandler{Service: insightSvc}
	insightHandler.Register(router)
	targetHandler := &handler.TargetHandler{Service: targetSvc}
	targetHandler.Register(router)
	methodHandler := &handler.MethodHandler{Service: methodSvc}
	methodHandler.Register(router)
	valuationHandler := &handler.ValuationHandler{Service: valuationSvc}
	valuationHandler.Register(router)

	handler.RegisterDocs(router)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(log, ctx)
	if cfg.Cron.Enabled && strings.TrimSpace(cfg.Cron.TargetRefresh) != "" {
		_, err = cronRunner.Add("target_refresh", cfg.Cron.TargetRefresh, func(ctx context.Context) error {
			_, err := targetSvc.RefreshAll(ctx)
			return err
		})
		if err != nil {
			log.Fatal("cron register failed", zap.String("job", "target_refresh"), zap.Error(err))
		}
	}
	if cfg.Cron.Enabled && strings.TrimSpace(cfg.Cron.ValuationSnapshot) != "" {
		_, err = cronRunner.Add("valuation_snapshot", cfg.Cron.ValuationSnapshot, func(ctx context.Context) error {
			_, err := valuationSvc.SnapshotAll(ctx, "")
			return err
		})
		if err != nil {
			log.Fatal("cron register failed", zap.String("job", "valuation_snapshot"), zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
