// Package audit records lifecycle events to an append-only sink. The sink
// is best-effort: a failed write is logged and never propagated to the
// business operation that triggered it.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rohanmehta-dev/finqueue/internal/models"
)

// RepoInterface is the storage contract for audit entries.
type RepoInterface interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	ListByJob(ctx context.Context, jobID uint) ([]models.AuditLog, error)
}

// Recorder is what business code depends on. Record never returns an
// error; ordering per job is preserved because writes happen synchronously
// on the caller's goroutine.
type Recorder interface {
	Record(ctx context.Context, jobID uint, action, actor, details string)
}

type Service struct {
	repo RepoInterface
	log  zerolog.Logger
}

func NewService(repo RepoInterface, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

var _ Recorder = (*Service)(nil)

func (s *Service) Record(ctx context.Context, jobID uint, action, actor, details string) {
	entry := &models.AuditLog{
		JobID:     jobID,
		Action:    action,
		Actor:     actor,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.log.Error().
			Err(err).
			Uint("job_id", jobID).
			Str("action", action).
			Msg("audit write failed")
	}
}
