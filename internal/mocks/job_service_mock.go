package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rohanmehta-dev/finqueue/internal/dto"
	"github.com/rohanmehta-dev/finqueue/internal/models"
)

type JobServiceMock struct {
	mock.Mock
}

func (m *JobServiceMock) Enqueue(ctx context.Context, req *dto.JobCreateDTO, actor string) (*dto.JobSummary, error) {
	args := m.Called(ctx, req, actor)

	summary, _ := args.Get(0).(*dto.JobSummary)
	return summary, args.Error(1)
}

func (m *JobServiceMock) GetJobByID(ctx context.Context, id uint) (*dto.JobSummary, error) {
	args := m.Called(ctx, id)

	summary, _ := args.Get(0).(*dto.JobSummary)
	return summary, args.Error(1)
}

func (m *JobServiceMock) Replay(ctx context.Context, id uint, actor string) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *JobServiceMock) Process(ctx context.Context, j *models.Job) {
	m.Called(ctx, j)
}
