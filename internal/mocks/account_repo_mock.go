package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rohanmehta-dev/finqueue/internal/models"
)

type AccountRepoMock struct {
	mock.Mock
}

func (m *AccountRepoMock) Create(ctx context.Context, acc *models.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *AccountRepoMock) GetByAccountID(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)

	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

func (m *AccountRepoMock) Debit(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *AccountRepoMock) Credit(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}
