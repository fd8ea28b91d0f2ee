package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rohanmehta-dev/finqueue/internal/models"
)

type JobRepoMock struct {
	mock.Mock
}

func (m *JobRepoMock) Create(ctx context.Context, j *models.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *JobRepoMock) Get(ctx context.Context, id uint) (*models.Job, error) {
	args := m.Called(ctx, id)

	j, _ := args.Get(0).(*models.Job)
	return j, args.Error(1)
}

func (m *JobRepoMock) ListEligible(ctx context.Context, jobType string, now time.Time) ([]models.Job, error) {
	args := m.Called(ctx, jobType, now)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *JobRepoMock) Claim(ctx context.Context, id uint, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *JobRepoMock) ResetStuck(ctx context.Context, before time.Time) ([]models.Job, error) {
	args := m.Called(ctx, before)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *JobRepoMock) MarkCompleted(ctx context.Context, id uint, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *JobRepoMock) MarkFailed(ctx context.Context, id uint, retryCount int, lastError string, now time.Time) error {
	args := m.Called(ctx, id, retryCount, lastError, now)
	return args.Error(0)
}

func (m *JobRepoMock) ScheduleRetry(ctx context.Context, id uint, retryCount int, lastError string, runAt time.Time) error {
	args := m.Called(ctx, id, retryCount, lastError, runAt)
	return args.Error(0)
}

func (m *JobRepoMock) ResetForReplay(ctx context.Context, id uint, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}
