package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/rohanmehta-dev/finqueue/internal/audit"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/crypto"
	"github.com/rohanmehta-dev/finqueue/internal/job"
	"github.com/rohanmehta-dev/finqueue/internal/logging"
	"github.com/rohanmehta-dev/finqueue/internal/notify"
	"github.com/rohanmehta-dev/finqueue/internal/storage/postgres"
	"github.com/rohanmehta-dev/finqueue/internal/worker"
	"github.com/rohanmehta-dev/finqueue/middleware"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logging.New("error", false)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	db, err := postgres.ConnectDB(ctx, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	if err := postgres.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	cipher, err := crypto.New([]byte(cfg.EncryptionKey))
	if err != nil {
		log.Fatal().Err(err).Msg("cipher init failed")
	}

	jobRepo := postgres.NewJobRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	recorder := audit.NewService(auditRepo, log)
	notifier := notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	registry := worker.NewRegistry(accountRepo, log)

	svc := job.NewJobService(jobRepo, accountRepo, cipher, recorder, notifier, registry, cfg, log)
	handler := job.NewJobHandler(svc)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.ErrorHandler())

	jobs := r.Group("/jobs")
	jobs.POST("/create", handler.Create)
	jobs.GET("/:id", handler.Get)
	jobs.PUT("/:id/replay", handler.Replay)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("api server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("api server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("api server stopped")
}
