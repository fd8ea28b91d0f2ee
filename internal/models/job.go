package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job is one unit of background work. The payload is persisted only as an
// encrypted envelope; plaintext never reaches the table.
//
// Field invariants: CompletedAt is set iff Status is completed,
// ProcessingStartedAt is set iff Status is processing, and RunAt never
// decreases across retries of the same job.
type Job struct {
	ID                  uint           `gorm:"primaryKey;autoIncrement"`
	Type                string         `gorm:"type:varchar(64);not null;index:idx_jobs_poll,priority:2"`
	PayloadCiphertext   datatypes.JSON `gorm:"column:payload_ciphertext;not null"`
	Status              string         `gorm:"type:varchar(32);not null;default:'queued';index:idx_jobs_poll,priority:1"`
	RetryCount          int            `gorm:"not null;default:0"`
	LastError           string         `gorm:"type:text"`
	RunAt               time.Time      `gorm:"not null;index:idx_jobs_poll,priority:3"`
	ProcessingStartedAt *time.Time
	CompletedAt         *time.Time
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}
