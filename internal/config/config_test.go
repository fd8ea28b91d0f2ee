package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validApp() *App {
	return &App{
		EncryptionKey: "0123456789abcdef0123456789abcdef",
		PollInterval:  3 * time.Minute,
		BatchSize:     2,
		StuckTimeout:  5 * time.Minute,
		MaxRetries:    5,
		SMTPPort:      587,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *App)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *App) {},
		},
		{
			name:        "key too short",
			mutate:      func(cfg *App) { cfg.EncryptionKey = "short" },
			wantErr:     true,
			errContains: "ENCRYPTION_KEY",
		},
		{
			name:        "key too long",
			mutate:      func(cfg *App) { cfg.EncryptionKey = cfg.EncryptionKey + "x" },
			wantErr:     true,
			errContains: "ENCRYPTION_KEY",
		},
		{
			name:        "poll interval below 1s",
			mutate:      func(cfg *App) { cfg.PollInterval = 500 * time.Millisecond },
			wantErr:     true,
			errContains: "WORKER_POLL_INTERVAL",
		},
		{
			name:        "batch size zero",
			mutate:      func(cfg *App) { cfg.BatchSize = 0 },
			wantErr:     true,
			errContains: "WORKER_BATCH_SIZE",
		},
		{
			name:        "stuck timeout too small",
			mutate:      func(cfg *App) { cfg.StuckTimeout = 0 },
			wantErr:     true,
			errContains: "STUCK_JOB_TIMEOUT",
		},
		{
			name:        "negative max retries",
			mutate:      func(cfg *App) { cfg.MaxRetries = -1 },
			wantErr:     true,
			errContains: "JOB_MAX_RETRIES",
		},
		{
			name:        "max retries over ceiling",
			mutate:      func(cfg *App) { cfg.MaxRetries = 21 },
			wantErr:     true,
			errContains: "JOB_MAX_RETRIES",
		},
		{
			name:        "smtp port out of range",
			mutate:      func(cfg *App) { cfg.SMTPPort = 0 },
			wantErr:     true,
			errContains: "SMTP_PORT",
		},
		{
			name: "multiple violations reported together",
			mutate: func(cfg *App) {
				cfg.EncryptionKey = ""
				cfg.BatchSize = 0
			},
			wantErr:     true,
			errContains: "WORKER_BATCH_SIZE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validApp()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 3*time.Minute, cfg.PollInterval)
	assert.Equal(t, 2, cfg.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.StuckTimeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "3000", cfg.HTTPPort)
}
