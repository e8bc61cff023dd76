package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcoding "github.com/andraa0104/isystem-1-sub006/internal/application/coding"
	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/auth"
	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/cache"
	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/config"
	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/logger"
	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/persistence"
	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/rerank"
	"github.com/andraa0104/isystem-1-sub006/internal/interfaces/http/handler"
	"github.com/andraa0104/isystem-1-sub006/internal/interfaces/http/middleware"
	"github.com/andraa0104/isystem-1-sub006/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting voucher coding service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Probe once which optional history tables and columns this deployment
	// actually has; missing sources degrade to empty votes.
	caps := persistence.ProbeCapabilities(db.DB, log)
	log.Info("Probed schema capabilities",
		zap.Bool("cash_history", caps.CashHistory),
		zap.Bool("journal_history", caps.JournalHistory),
	)

	cashRepo := persistence.NewGormCashHistoryRepository(db.DB)
	journalRepo := persistence.NewGormJournalHistoryRepository(db.DB, caps)

	modelCache := cache.NewModelCacheFactory(cfg.Redis, log).CreateCache()

	params := engineParams(cfg.Engine)
	modelProvider := appcoding.NewModelProvider(cashRepo, modelCache, params, log)
	if cfg.Engine.WarmModels {
		go modelProvider.Warm(context.Background())
	}

	var suggester appcoding.Suggester = appcoding.NewSuggestionService(
		cashRepo, journalRepo, caps, modelProvider, params, log,
	)
	if cfg.Rerank.Endpoint != "" {
		var reranker coding.Reranker = rerank.NewClient(cfg.Rerank.Endpoint, cfg.Rerank.Token, cfg.Rerank.Timeout)
		suggester = appcoding.NewRerankingSuggester(suggester, reranker, cfg.Rerank.Threshold, log)
		log.Info("Remote reranking enabled",
			zap.String("endpoint", cfg.Rerank.Endpoint),
			zap.Float64("threshold", cfg.Rerank.Threshold),
		)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	verifier := auth.NewTokenVerifier(cfg.Auth)
	if !verifier.Enabled() {
		log.Warn("Bearer auth disabled: no auth secret configured")
	}

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(db, caps))

	api := engine.Group("/api/v1")
	api.Use(middleware.BearerAuth(verifier))
	handler.NewSuggestionHandler(suggester, log).RegisterRoutes(api)

	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// engineParams merges the calibrated engine defaults with the configured
// overrides.
func engineParams(cfg config.EngineConfig) coding.Params {
	p := coding.DefaultParams()
	p.KNNWeight = cfg.KNNWeight
	p.JournalWeight = cfg.JournalWeight
	p.BayesWeight = cfg.BayesWeight
	p.BM25K1 = cfg.BM25K1
	p.BM25B = cfg.BM25B
	p.LexicalWeight = cfg.LexicalWeight
	p.TrigramWeight = cfg.TrigramWeight
	p.CandidateWindow = cfg.CandidateWindow
	p.VoterCount = cfg.VoterCount
	p.JournalWindow = cfg.JournalWindow
	p.JournalMonths = cfg.JournalMonths
	p.ModelTTL = cfg.ModelTTL
	return p
}
