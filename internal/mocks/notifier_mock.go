package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Send(ctx context.Context, recipients []string, subject, body string) error {
	args := m.Called(ctx, recipients, subject, body)
	return args.Error(0)
}
