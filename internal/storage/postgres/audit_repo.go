package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rohanmehta-dev/finqueue/internal/audit"
	"github.com/rohanmehta-dev/finqueue/internal/models"
)

// AuditRepository appends to the audit_logs table. There are deliberately
// no update or delete methods.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ audit.RepoInterface = (*AuditRepository)(nil)

func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListByJob returns a job's audit trail in insertion order.
func (r *AuditRepository) ListByJob(ctx context.Context, jobID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
