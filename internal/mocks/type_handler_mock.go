package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

type TypeHandlerMock struct {
	mock.Mock
}

func (m *TypeHandlerMock) Execute(ctx context.Context, payload json.RawMessage) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
