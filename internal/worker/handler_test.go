package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rohanmehta-dev/finqueue/common"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/mocks"
)

func transferPayload(t *testing.T, from, to string, amount int64) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"from":          from,
		"to":            to,
		"amount":        amount,
		"transactionId": "txn-test",
	})
	require.NoError(t, err)
	return raw
}

func TestTransferHandler_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("debit then credit", func(t *testing.T) {
		accounts := &mocks.AccountRepoMock{}
		h := &TransferHandler{accounts: accounts, log: zerolog.Nop()}

		accounts.On("Debit", mock.Anything, "A1001", int64(100)).Return(nil)
		accounts.On("Credit", mock.Anything, "A1002", int64(100)).Return(nil)

		err := h.Execute(ctx, transferPayload(t, "A1001", "A1002", 100))
		require.NoError(t, err)
		accounts.AssertExpectations(t)
	})

	t.Run("insufficient funds stops before credit", func(t *testing.T) {
		accounts := &mocks.AccountRepoMock{}
		h := &TransferHandler{accounts: accounts, log: zerolog.Nop()}

		accounts.On("Debit", mock.Anything, "A1001", int64(5000)).Return(common.ErrInsufficientFunds)

		err := h.Execute(ctx, transferPayload(t, "A1001", "A1002", 5000))
		require.ErrorIs(t, err, common.ErrInsufficientFunds)
		accounts.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing destination refunds source", func(t *testing.T) {
		accounts := &mocks.AccountRepoMock{}
		h := &TransferHandler{accounts: accounts, log: zerolog.Nop()}

		accounts.On("Debit", mock.Anything, "A1001", int64(100)).Return(nil)
		accounts.On("Credit", mock.Anything, "GHOST", int64(100)).Return(common.ErrNotFound)
		accounts.On("Credit", mock.Anything, "A1001", int64(100)).Return(nil)

		err := h.Execute(ctx, transferPayload(t, "A1001", "GHOST", 100))
		require.ErrorIs(t, err, common.ErrDestinationNotFound)
		accounts.AssertExpectations(t)
	})

	t.Run("failed refund still reports destination error", func(t *testing.T) {
		accounts := &mocks.AccountRepoMock{}
		h := &TransferHandler{accounts: accounts, log: zerolog.Nop()}

		accounts.On("Debit", mock.Anything, "A1001", int64(100)).Return(nil)
		accounts.On("Credit", mock.Anything, "GHOST", int64(100)).Return(common.ErrNotFound)
		accounts.On("Credit", mock.Anything, "A1001", int64(100)).Return(errors.New("db down"))

		err := h.Execute(ctx, transferPayload(t, "A1001", "GHOST", 100))
		require.ErrorIs(t, err, common.ErrDestinationNotFound)
	})

	t.Run("non-notfound credit error propagates without refund", func(t *testing.T) {
		accounts := &mocks.AccountRepoMock{}
		h := &TransferHandler{accounts: accounts, log: zerolog.Nop()}

		dbErr := errors.New("connection reset")
		accounts.On("Debit", mock.Anything, "A1001", int64(100)).Return(nil)
		accounts.On("Credit", mock.Anything, "A1002", int64(100)).Return(dbErr)

		err := h.Execute(ctx, transferPayload(t, "A1001", "A1002", 100))
		require.ErrorIs(t, err, dbErr)
		accounts.AssertNumberOfCalls(t, "Credit", 1)
	})

	t.Run("invalid payloads never touch accounts", func(t *testing.T) {
		payloads := []json.RawMessage{
			json.RawMessage(`{broken`),
			json.RawMessage(`{"to":"A1002","amount":100,"transactionId":"t"}`),
			json.RawMessage(`{"from":"A1001","amount":100,"transactionId":"t"}`),
			json.RawMessage(`{"from":"A1001","to":"A1002","amount":0,"transactionId":"t"}`),
			json.RawMessage(`{"from":"A1001","to":"A1002","amount":-10,"transactionId":"t"}`),
			json.RawMessage(`{"from":"A1001","to":"A1002","amount":100}`),
		}

		for _, payload := range payloads {
			accounts := &mocks.AccountRepoMock{}
			h := &TransferHandler{accounts: accounts, log: zerolog.Nop()}

			err := h.Execute(ctx, payload)
			require.ErrorIs(t, err, common.ErrInvalidPayload, "payload: %s", payload)
			accounts.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
			accounts.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestReconcileHandler_Execute(t *testing.T) {
	h := &ReconcileHandler{}

	err := h.Execute(context.Background(), json.RawMessage(`{"transactionId":"txn-1"}`))
	assert.NoError(t, err)

	err = h.Execute(context.Background(), json.RawMessage(`{oops`))
	assert.ErrorIs(t, err, common.ErrInvalidPayload)
}

func TestNewRegistry_CoversAllJobTypes(t *testing.T) {
	registry := NewRegistry(&mocks.AccountRepoMock{}, zerolog.Nop())

	for _, jobType := range config.JobTypes {
		assert.Contains(t, registry, jobType)
	}
}
