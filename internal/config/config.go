package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// App holds every knob the engine consumes. It is loaded once at process
// start and passed by reference into the lifecycle engine, scheduler and
// notifier; nothing reads the environment after startup.
type App struct {
	EncryptionKey string `env:"ENCRYPTION_KEY,required"`

	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL,default=3m"`
	BatchSize    int           `env:"WORKER_BATCH_SIZE,default=2"`
	StuckTimeout time.Duration `env:"STUCK_JOB_TIMEOUT,default=5m"`
	MaxRetries   int           `env:"JOB_MAX_RETRIES,default=5"`

	HTTPPort string `env:"PORT,default=3000"`

	AdminEmail string `env:"ADMIN_EMAIL"`
	SMTPHost   string `env:"SMTP_HOST,default=smtp.gmail.com"`
	SMTPPort   int    `env:"SMTP_PORT,default=587"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogPretty bool   `env:"LOG_PRETTY,default=false"`
}

// Load reads the application config from the environment and validates it.
// The scheduler must not start with an invalid config, so every violation
// is collected and reported in one pass.
func Load(ctx context.Context) (*App, error) {
	var cfg App
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func Validate(cfg *App) error {
	var errs []string

	// AES-256 requires exactly 32 key bytes.
	if len(cfg.EncryptionKey) != 32 {
		errs = append(errs, fmt.Sprintf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(cfg.EncryptionKey)))
	}

	if cfg.PollInterval < time.Second {
		errs = append(errs, "WORKER_POLL_INTERVAL must be at least 1s")
	}

	if cfg.BatchSize < 1 {
		errs = append(errs, "WORKER_BATCH_SIZE must be at least 1")
	}

	if cfg.StuckTimeout < time.Second {
		errs = append(errs, "STUCK_JOB_TIMEOUT must be at least 1s")
	}

	if cfg.MaxRetries < 0 || cfg.MaxRetries > 20 {
		errs = append(errs, "JOB_MAX_RETRIES must be between 0 and 20")
	}

	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		errs = append(errs, "SMTP_PORT must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
