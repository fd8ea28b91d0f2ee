package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rohanmehta-dev/finqueue/common"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/job"
	"github.com/rohanmehta-dev/finqueue/internal/models"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ job.JobRepoInterface = (*JobRepository)(nil)

// Create inserts a new job record. The caller is responsible for setting
// status, run_at and the encrypted payload.
func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	if err := r.db.WithContext(ctx).Create(j).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID. Returns common.ErrNotFound when no such row
// exists.
func (r *JobRepository) Get(ctx context.Context, id uint) (*models.Job, error) {
	var j models.Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// ListEligible returns every queued job of the given type whose run_at has
// passed. No ordering is guaranteed.
func (r *JobRepository) ListEligible(ctx context.Context, jobType string, now time.Time) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.WithContext(ctx).
		Where("status = ? AND type = ? AND run_at <= ?", config.StatusQueued, jobType, now).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list eligible jobs: %w", err)
	}
	return jobs, nil
}

// Claim transitions a job from queued to processing with a conditional
// update. It reports false when the stored status is no longer queued,
// meaning a concurrent worker claimed the job first. This compare-and-swap
// is the only exclusion mechanism across workers.
func (r *JobRepository) Claim(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, config.StatusQueued).
		Updates(map[string]any{
			"status":                config.StatusProcessing,
			"processing_started_at": now,
			"updated_at":            now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("claim job: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ResetStuck requeues every processing job whose claim is older than the
// given cutoff and returns the recovered rows. Each reset is itself
// conditional on the status still being processing, so a job that finished
// between the select and the update is left alone.
func (r *JobRepository) ResetStuck(ctx context.Context, before time.Time) ([]models.Job, error) {
	var stuck []models.Job
	if err := r.db.WithContext(ctx).
		Where("status = ? AND processing_started_at <= ?", config.StatusProcessing, before).
		Find(&stuck).Error; err != nil {
		return nil, fmt.Errorf("find stuck jobs: %w", err)
	}

	recovered := make([]models.Job, 0, len(stuck))
	for _, j := range stuck {
		res := r.db.WithContext(ctx).Model(&models.Job{}).
			Where("id = ? AND status = ?", j.ID, config.StatusProcessing).
			Updates(map[string]any{
				"status":                config.StatusQueued,
				"processing_started_at": nil,
				"updated_at":            time.Now().UTC(),
			})
		if res.Error != nil {
			return recovered, fmt.Errorf("reset stuck job %d: %w", j.ID, res.Error)
		}
		if res.RowsAffected == 1 {
			recovered = append(recovered, j)
		}
	}
	return recovered, nil
}

// MarkCompleted finalizes a job. completed_at is set and the claim
// timestamp cleared in the same update.
func (r *JobRepository) MarkCompleted(ctx context.Context, id uint, now time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":                config.StatusCompleted,
			"completed_at":          now,
			"processing_started_at": nil,
			"updated_at":            now,
		}).Error; err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}

// MarkFailed records a terminal failure together with the final retry
// count and last error.
func (r *JobRepository) MarkFailed(ctx context.Context, id uint, retryCount int, lastError string, now time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":                config.StatusFailed,
			"retry_count":           retryCount,
			"last_error":            lastError,
			"processing_started_at": nil,
			"updated_at":            now,
		}).Error; err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

// ScheduleRetry requeues a job for a later attempt. run_at only ever moves
// forward here.
func (r *JobRepository) ScheduleRetry(ctx context.Context, id uint, retryCount int, lastError string, runAt time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":                config.StatusQueued,
			"retry_count":           retryCount,
			"last_error":            lastError,
			"run_at":                runAt,
			"processing_started_at": nil,
			"updated_at":            time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}
	return nil
}

// ResetForReplay moves a failed job back to queued so it can run again.
// The update is conditional on the status still being failed; false means
// the job changed state under the caller.
func (r *JobRepository) ResetForReplay(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, config.StatusFailed).
		Updates(map[string]any{
			"status":     config.StatusQueued,
			"run_at":     now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("reset job for replay: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
