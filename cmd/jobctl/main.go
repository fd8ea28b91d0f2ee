// jobctl is the operator tool: inspect a job (without its payload),
// replay a failed job, dump a job's audit trail, or seed sample accounts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/rohanmehta-dev/finqueue/internal/audit"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/crypto"
	"github.com/rohanmehta-dev/finqueue/internal/job"
	"github.com/rohanmehta-dev/finqueue/internal/logging"
	"github.com/rohanmehta-dev/finqueue/internal/models"
	"github.com/rohanmehta-dev/finqueue/internal/notify"
	"github.com/rohanmehta-dev/finqueue/internal/storage/postgres"
	"github.com/rohanmehta-dev/finqueue/internal/worker"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	ctx := context.Background()

	switch os.Args[1] {
	case "inspect":
		run(ctx, os.Args[2:], inspect)
	case "replay":
		run(ctx, os.Args[2:], replay)
	case "audit":
		run(ctx, os.Args[2:], auditTrail)
	case "seed-accounts":
		seedAccounts(ctx)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: jobctl <command> [args]

commands:
  inspect <jobID>   print a job summary (payload is never decrypted)
  replay <jobID>    replay a failed job and execute it immediately
  audit <jobID>     print a job's audit trail
  seed-accounts     create the sample ledger accounts`)
}

func run(ctx context.Context, args []string, fn func(ctx context.Context, id uint)) {
	if len(args) != 1 {
		usage()
		os.Exit(2)
	}
	id, err := strconv.ParseUint(args[0], 10, 0)
	if err != nil || id < 1 {
		fmt.Fprintln(os.Stderr, "invalid job id:", args[0])
		os.Exit(2)
	}
	fn(ctx, uint(id))
}

// wire builds the full service stack; the CLI shares the engine with the
// API and worker so replay executes synchronously here too.
func wire(ctx context.Context) (*job.JobService, audit.RepoInterface, job.AccountRepoInterface) {
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log := logging.New("error", true)

	db, err := postgres.ConnectDB(ctx, nil, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "database connection failed:", err)
		os.Exit(1)
	}

	cipher, err := crypto.New([]byte(cfg.EncryptionKey))
	if err != nil {
		fmt.Fprintln(os.Stderr, "cipher init failed:", err)
		os.Exit(1)
	}

	jobRepo := postgres.NewJobRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	recorder := audit.NewService(auditRepo, log)
	notifier := notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	registry := worker.NewRegistry(accountRepo, log)

	svc := job.NewJobService(jobRepo, accountRepo, cipher, recorder, notifier, registry, cfg, log)
	return svc, auditRepo, accountRepo
}

func inspect(ctx context.Context, id uint) {
	svc, _, _ := wire(ctx)

	summary, err := svc.GetJobByID(ctx, id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "job not found:", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}

func replay(ctx context.Context, id uint) {
	svc, _, _ := wire(ctx)

	if err := svc.Replay(ctx, id, config.ActorCLI); err != nil {
		fmt.Fprintln(os.Stderr, "failed to replay job:", err)
		os.Exit(1)
	}
	fmt.Println("job replayed")
}

func auditTrail(ctx context.Context, id uint) {
	_, auditRepo, _ := wire(ctx)

	entries, err := auditRepo.ListByJob(ctx, id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to list audit trail:", err)
		os.Exit(1)
	}

	for _, e := range entries {
		fmt.Printf("%s  %-16s  actor=%-8s  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Actor, e.Details)
	}
}

func seedAccounts(ctx context.Context) {
	_, _, accounts := wire(ctx)

	samples := []models.Account{
		{AccountID: "A1001", Name: "Alice Smith", Email: "alice@example.com", Phone: "1234567890", Balance: 1000},
		{AccountID: "A1002", Name: "Bob Johnson", Email: "bob@example.com", Phone: "2345678901", Balance: 1500},
		{AccountID: "A1003", Name: "Charlie Lee", Email: "charlie@example.com", Phone: "3456789012", Balance: 2000},
		{AccountID: "A1004", Name: "Diana King", Email: "diana@example.com", Phone: "4567890123", Balance: 2500},
		{AccountID: "A1005", Name: "Evan Wright", Email: "evan@example.com", Phone: "5678901234", Balance: 3000},
	}

	for i := range samples {
		if err := accounts.Create(ctx, &samples[i]); err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", samples[i].AccountID, err)
			continue
		}
		fmt.Printf("created %s (%s) balance=%d\n", samples[i].AccountID, samples[i].Name, samples[i].Balance)
	}
}
