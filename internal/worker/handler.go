package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rohanmehta-dev/finqueue/common"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/dto"
	"github.com/rohanmehta-dev/finqueue/internal/job"
)

// NewRegistry wires the built-in type handlers.
func NewRegistry(accounts job.AccountRepoInterface, log zerolog.Logger) job.Registry {
	return job.Registry{
		config.TypeTransfer:  &TransferHandler{accounts: accounts, log: log},
		config.TypeReconcile: &ReconcileHandler{},
	}
}

// TransferHandler moves money between two accounts as a two-step saga:
// conditional debit, then credit, with a compensating refund when the
// credit leg fails. No transaction spans both updates.
type TransferHandler struct {
	accounts job.AccountRepoInterface
	log      zerolog.Logger
}

var _ job.TypeHandler = (*TransferHandler)(nil)

func (h *TransferHandler) Execute(ctx context.Context, payload json.RawMessage) error {
	var transfer dto.TransferPayload
	if err := json.Unmarshal(payload, &transfer); err != nil {
		return fmt.Errorf("%w: malformed transfer payload", common.ErrInvalidPayload)
	}
	if transfer.From == "" || transfer.To == "" || transfer.Amount <= 0 || transfer.TransactionID == "" {
		return fmt.Errorf("%w: transfer requires from, to, amount and transactionId", common.ErrInvalidPayload)
	}

	// Debit only succeeds when the balance covers the amount; a short
	// balance and a missing account are indistinguishable here.
	if err := h.accounts.Debit(ctx, transfer.From, transfer.Amount); err != nil {
		return err
	}

	if err := h.accounts.Credit(ctx, transfer.To, transfer.Amount); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		// Compensate: refund the source. A failed refund is currently
		// unhandled beyond this log line.
		if refundErr := h.accounts.Credit(ctx, transfer.From, transfer.Amount); refundErr != nil {
			h.log.Error().
				Str("transaction_id", transfer.TransactionID).
				Str("account_id", transfer.From).
				Err(refundErr).
				Msg("refund after failed credit did not succeed")
		}
		return common.ErrDestinationNotFound
	}

	return nil
}

// ReconcileHandler is a no-op placeholder. Reconciliation must stay
// idempotent: re-running it for the same transactionId may not produce
// side effects at this boundary.
type ReconcileHandler struct{}

var _ job.TypeHandler = (*ReconcileHandler)(nil)

func (h *ReconcileHandler) Execute(ctx context.Context, payload json.RawMessage) error {
	var reconcile dto.ReconcilePayload
	if err := json.Unmarshal(payload, &reconcile); err != nil {
		return fmt.Errorf("%w: malformed reconcile payload", common.ErrInvalidPayload)
	}
	return nil
}
