package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rohanmehta-dev/finqueue/internal/dto"
	"github.com/rohanmehta-dev/finqueue/internal/models"
)

// JobRepoInterface defines the contract for job persistence. Claim and
// ResetForReplay are conditional updates: their bool result reports
// whether the compare-and-swap won.
type JobRepoInterface interface {
	Create(ctx context.Context, j *models.Job) error
	Get(ctx context.Context, id uint) (*models.Job, error)
	ListEligible(ctx context.Context, jobType string, now time.Time) ([]models.Job, error)
	Claim(ctx context.Context, id uint, now time.Time) (bool, error)
	ResetStuck(ctx context.Context, before time.Time) ([]models.Job, error)
	MarkCompleted(ctx context.Context, id uint, now time.Time) error
	MarkFailed(ctx context.Context, id uint, retryCount int, lastError string, now time.Time) error
	ScheduleRetry(ctx context.Context, id uint, retryCount int, lastError string, runAt time.Time) error
	ResetForReplay(ctx context.Context, id uint, now time.Time) (bool, error)
}

// AccountRepoInterface defines the contract for the account ledger.
// Debit enforces the non-negative balance invariant atomically.
type AccountRepoInterface interface {
	Create(ctx context.Context, acc *models.Account) error
	GetByAccountID(ctx context.Context, accountID string) (*models.Account, error)
	Debit(ctx context.Context, accountID string, amount int64) error
	Credit(ctx context.Context, accountID string, amount int64) error
}

// TypeHandler executes the business logic for one job type against the
// decrypted payload. Errors are routed into the retry policy by the
// lifecycle engine; handlers never touch job state themselves.
type TypeHandler interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

// Registry maps a job type to its handler.
type Registry map[string]TypeHandler

// JobServiceInterface defines the lifecycle engine's operations.
type JobServiceInterface interface {
	Enqueue(ctx context.Context, req *dto.JobCreateDTO, actor string) (*dto.JobSummary, error)
	GetJobByID(ctx context.Context, id uint) (*dto.JobSummary, error)
	Replay(ctx context.Context, id uint, actor string) error
	Process(ctx context.Context, j *models.Job)
}

// JobHandlerInterface defines the HTTP request handlers.
type JobHandlerInterface interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Replay(c *gin.Context)
}
