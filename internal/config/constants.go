package config

// Job statuses as persisted in the jobs table.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job types with a registered handler. The scheduler polls per type,
// so new types need an entry here as well as in the handler registry.
const (
	TypeTransfer  = "transfer"
	TypeReconcile = "reconcile"
)

var JobTypes = []string{TypeTransfer, TypeReconcile}

// Audit trail actions.
const (
	ActionEnqueue        = "ENQUEUE"
	ActionStateChange    = "STATE_CHANGE"
	ActionRetry          = "RETRY"
	ActionReplay         = "REPLAY"
	ActionDecryptPayload = "DECRYPT_PAYLOAD"
)

// Well-known actors recorded in audit entries.
const (
	ActorAPI    = "api"
	ActorWorker = "worker"
	ActorCLI    = "cli"
)
