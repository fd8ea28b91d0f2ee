package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rohanmehta-dev/finqueue/internal/audit"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/crypto"
	"github.com/rohanmehta-dev/finqueue/internal/job"
	"github.com/rohanmehta-dev/finqueue/internal/logging"
	"github.com/rohanmehta-dev/finqueue/internal/notify"
	"github.com/rohanmehta-dev/finqueue/internal/storage/postgres"
	"github.com/rohanmehta-dev/finqueue/internal/worker"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	sched := worker.NewScheduler(jobRepo, svc, recorder, cfg, log)

	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	sched.Stop()
	log.Info().Msg("worker stopped")
}
