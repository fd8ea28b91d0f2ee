package dto

// ReconcilePayload identifies the transaction to reconcile. Handlers for
// this type must be safely re-runnable for the same TransactionID.
type ReconcilePayload struct {
	TransactionID string `json:"transactionId" validate:"required"`
}
