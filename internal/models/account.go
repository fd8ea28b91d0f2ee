package models

import "time"

// Account is a ledger row. Balance is kept non-negative by the conditional
// debit in the account repository, never by callers.
type Account struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	AccountID string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Phone     string    `gorm:"type:varchar(32);not null"`
	Balance   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
