package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rohanmehta-dev/finqueue/migrations"
)

type Config struct {
	User           string        `env:"POSTGRES_USER,default=postgres"`
	Password       string        `env:"POSTGRES_PASSWORD,default=postgres"`
	Host           string        `env:"POSTGRES_HOST,default=localhost"`
	Port           string        `env:"POSTGRES_PORT,default=5432"`
	Database       string        `env:"POSTGRES_DB,default=finqueue"`
	MaxRetries     int           `env:"DB_MAX_RETRIES,default=10"`
	RetryDelay     time.Duration `env:"DB_RETRY_DELAY,default=2s"`
	ConnectTimeout int           `env:"DB_CONNECT_TIMEOUT,default=5"`
	LogLevelString string        `env:"DB_LOG_LEVEL,default=warn"`
	LogLevel       logger.LogLevel
}

func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.LogLevel = ParseLogLevel(cfg.LogLevelString)
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.User) == "" {
		errs = append(errs, "POSTGRES_USER is required")
	}

	if strings.TrimSpace(cfg.Database) == "" {
		errs = append(errs, "POSTGRES_DB is required")
	}

	if strings.TrimSpace(cfg.Host) == "" {
		errs = append(errs, "POSTGRES_HOST is required")
	}

	if strings.TrimSpace(cfg.Port) == "" {
		errs = append(errs, "POSTGRES_PORT is required")
	} else if port, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, "POSTGRES_PORT must be a valid number")
	} else if port < 1 || port > 65535 {
		errs = append(errs, "POSTGRES_PORT must be between 1 and 65535")
	}

	if cfg.MaxRetries < 0 {
		errs = append(errs, "DB_MAX_RETRIES must be non-negative")
	}

	if cfg.RetryDelay <= 0 {
		errs = append(errs, "DB_RETRY_DELAY must be positive")
	}

	if cfg.RetryDelay > 10*time.Minute {
		errs = append(errs, "DB_RETRY_DELAY must not exceed 10 minutes")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}

// ConnectDB opens a gorm connection with retries. A nil cfg falls back to
// the environment.
func ConnectDB(ctx context.Context, cfg *Config, log zerolog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		loaded, err := LoadConfigFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable connect_timeout=%d",
		cfg.Host, cfg.User, cfg.Password, cfg.Database, cfg.Port, cfg.ConnectTimeout,
	)

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connecting to postgres")

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
	}

	var lastErr error
	for i := 0; i < cfg.MaxRetries; i++ {
		gdb, err := gorm.Open(postgres.Open(dsn), gormConfig)
		if err == nil {
			sqlDB, dbErr := gdb.DB()
			if dbErr == nil {
				pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				pingErr := sqlDB.PingContext(pingCtx)
				cancel()

				if pingErr == nil {
					sqlDB.SetMaxIdleConns(10)
					sqlDB.SetMaxOpenConns(50)
					sqlDB.SetConnMaxLifetime(time.Hour)

					log.Info().Msg("postgres connected")
					return gdb, nil
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		lastErr = err
		log.Warn().
			Str("cause", simplifyDBError(err)).
			Int("attempt", i+1).
			Int("max_attempts", cfg.MaxRetries).
			Dur("retry_in", cfg.RetryDelay).
			Msg("postgres connection attempt failed")

		select {
		case <-time.After(cfg.RetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", cfg.MaxRetries, lastErr)
}

// Migrate applies the embedded goose migrations.
func Migrate(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql db: %w", err)
	}
	return migrations.Up(sqlDB)
}

// simplifyDBError collapses driver noise into a short cause for logs.
func simplifyDBError(err error) string {
	if err == nil {
		return "unknown"
	}
	msg := err.Error()

	switch {
	case strings.Contains(msg, "password authentication failed"):
		return "invalid database credentials"
	case strings.Contains(msg, "connect"):
		return "cannot reach database server"
	case strings.Contains(msg, "timeout"):
		return "database connection timed out"
	case strings.Contains(msg, "SASL"):
		return "authentication error"
	}

	return "database error"
}

func ParseLogLevel(levelStr string) logger.LogLevel {
	switch strings.ToLower(levelStr) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
