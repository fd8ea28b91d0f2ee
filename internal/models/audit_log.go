package models

import "time"

// AuditLog rows are append-only. Nothing in the codebase updates or
// deletes them once written.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	JobID     uint      `gorm:"not null;index"`
	Action    string    `gorm:"type:varchar(64);not null"`
	Actor     string    `gorm:"type:varchar(64)"`
	Details   string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"not null"`
}
