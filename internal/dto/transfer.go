package dto

// TransferPayload moves Amount from one account to another. TransactionID
// is auto-generated at enqueue when the caller omits it, so the required
// tag holds by the time validation runs.
type TransferPayload struct {
	From          string `json:"from" validate:"required"`
	To            string `json:"to" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	TransactionID string `json:"transactionId" validate:"required"`
}
