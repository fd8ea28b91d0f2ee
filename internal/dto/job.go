package dto

import (
	"encoding/json"
	"time"
)

type JobCreateDTO struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
	RunAt   *time.Time      `json:"run_at,omitempty"`
}

// JobSummary is what API and CLI callers see. It deliberately carries no
// payload fields, encrypted or otherwise.
type JobSummary struct {
	ID          uint       `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   string     `json:"last_error,omitempty"`
	RunAt       time.Time  `json:"run_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
