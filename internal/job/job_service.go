package job

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/rohanmehta-dev/finqueue/common"
	"github.com/rohanmehta-dev/finqueue/internal/audit"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/crypto"
	"github.com/rohanmehta-dev/finqueue/internal/dto"
	"github.com/rohanmehta-dev/finqueue/internal/models"
	"github.com/rohanmehta-dev/finqueue/internal/notify"
)

// JobService owns the job state machine: enqueue, processing, retry with
// exponential backoff, terminal transitions and manual replay. It is the
// only writer of job status.
type JobService struct {
	jobs     JobRepoInterface
	accounts AccountRepoInterface
	cipher   *crypto.Cipher
	audit    audit.Recorder
	notifier notify.Notifier
	registry Registry
	cfg      *config.App
	log      zerolog.Logger
}

func NewJobService(
	jobs JobRepoInterface,
	accounts AccountRepoInterface,
	cipher *crypto.Cipher,
	rec audit.Recorder,
	notifier notify.Notifier,
	registry Registry,
	cfg *config.App,
	log zerolog.Logger,
) *JobService {
	return &JobService{
		jobs:     jobs,
		accounts: accounts,
		cipher:   cipher,
		audit:    rec,
		notifier: notifier,
		registry: registry,
		cfg:      cfg,
		log:      log,
	}
}

var _ JobServiceInterface = (*JobService)(nil)

// Enqueue validates the request, encrypts the payload and persists a new
// queued job. Transfer and reconcile payloads get an auto-generated
// transactionId when the caller omits one, so an idempotency key exists
// even without caller cooperation. Malformed payloads are rejected here
// and never persisted.
func (s *JobService) Enqueue(ctx context.Context, req *dto.JobCreateDTO, actor string) (*dto.JobSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request canceled or timed out")
	}

	if !slices.Contains(config.JobTypes, req.Type) {
		return nil, common.NewAPIError(
			http.StatusBadRequest,
			"invalid job type",
			map[string]any{
				"provided": req.Type,
				"allowed":  config.JobTypes,
			},
		)
	}

	if !json.Valid(req.Payload) {
		return nil, fmt.Errorf("%w: payload must be valid JSON", common.ErrInvalidPayload)
	}

	payload, err := withTransactionID(req.Payload)
	if err != nil {
		return nil, err
	}

	switch req.Type {
	case config.TypeTransfer:
		if err := validatePayload[dto.TransferPayload](payload); err != nil {
			return nil, err
		}
	case config.TypeReconcile:
		if err := validatePayload[dto.ReconcilePayload](payload); err != nil {
			return nil, err
		}
	}

	envelope, err := s.cipher.Encrypt(payload)
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}
	sealed, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	now := time.Now().UTC()
	runAt := now
	if req.RunAt != nil {
		runAt = req.RunAt.UTC()
	}

	j := models.Job{
		Type:              req.Type,
		PayloadCiphertext: datatypes.JSON(sealed),
		Status:            config.StatusQueued,
		RetryCount:        0,
		RunAt:             runAt,
	}

	if err := s.jobs.Create(ctx, &j); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.audit.Record(ctx, j.ID, config.ActionEnqueue, actor, "")
	s.log.Info().Uint("job_id", j.ID).Str("type", j.Type).Msg("job enqueued")

	return toSummary(&j), nil
}

// withTransactionID injects a generated transactionId into the payload
// when it is missing or empty.
func withTransactionID(raw json.RawMessage) (json.RawMessage, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object", common.ErrInvalidPayload)
	}

	if id, ok := fields["transactionId"].(string); ok && id != "" {
		return raw, nil
	}
	fields["transactionId"] = uuid.NewString()

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}
	return out, nil
}

// GetJobByID returns a job summary without any payload material.
func (s *JobService) GetJobByID(ctx context.Context, id uint) (*dto.JobSummary, error) {
	j, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSummary(j), nil
}

// IsCompleted is the idempotency guard: a completed job is never
// re-executed.
func (s *JobService) IsCompleted(j *models.Job) bool {
	return j.Status == config.StatusCompleted
}

// DecryptPayload opens the stored envelope and records the access in the
// audit trail. Tampered or corrupted envelopes surface as
// common.ErrDecryption without partial plaintext.
func (s *JobService) DecryptPayload(ctx context.Context, j *models.Job, actor string) (json.RawMessage, error) {
	var envelope crypto.Envelope
	if err := json.Unmarshal(j.PayloadCiphertext, &envelope); err != nil {
		return nil, fmt.Errorf("%w: bad envelope", common.ErrDecryption)
	}

	plaintext, err := s.cipher.Decrypt(&envelope)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, j.ID, config.ActionDecryptPayload, actor, "")
	return plaintext, nil
}

// Process runs a claimed job through its type handler and records the
// outcome. All execution failures are caught here and routed into the
// retry policy; nothing escapes to crash the scheduler loop.
func (s *JobService) Process(ctx context.Context, j *models.Job) {
	if s.IsCompleted(j) {
		return
	}

	payload, err := s.DecryptPayload(ctx, j, config.ActorWorker)
	if err != nil {
		s.retry(ctx, j, err)
		return
	}

	handler, ok := s.registry[j.Type]
	if !ok {
		s.retry(ctx, j, fmt.Errorf("unknown job type: %s", j.Type))
		return
	}

	if err := handler.Execute(ctx, payload); err != nil {
		s.log.Warn().Uint("job_id", j.ID).Err(err).Msg("job execution failed")
		s.retry(ctx, j, err)
		return
	}

	s.complete(ctx, j)
}

func (s *JobService) complete(ctx context.Context, j *models.Job) {
	now := time.Now().UTC()
	if err := s.jobs.MarkCompleted(ctx, j.ID, now); err != nil {
		s.log.Error().Uint("job_id", j.ID).Err(err).Msg("failed to mark job completed")
		return
	}
	j.Status = config.StatusCompleted
	j.CompletedAt = &now

	s.audit.Record(ctx, j.ID, config.ActionStateChange, config.ActorWorker, "processing -> completed")
	s.log.Info().Uint("job_id", j.ID).Msg("job completed")
}

// retry applies the backoff policy: attempt n waits 2^n minutes before the
// job becomes eligible again. The backoff is deliberately uncapped.
// Exceeding the retry ceiling is terminal.
func (s *JobService) retry(ctx context.Context, j *models.Job, execErr error) {
	j.RetryCount++
	j.LastError = execErr.Error()

	if j.RetryCount > s.cfg.MaxRetries {
		s.failTerminal(ctx, j, "max retries exceeded")
		return
	}

	delay := time.Duration(1<<uint(j.RetryCount)) * time.Minute
	runAt := time.Now().UTC().Add(delay)

	if err := s.jobs.ScheduleRetry(ctx, j.ID, j.RetryCount, j.LastError, runAt); err != nil {
		s.log.Error().Uint("job_id", j.ID).Err(err).Msg("failed to schedule retry")
		return
	}
	j.Status = config.StatusQueued
	j.RunAt = runAt

	s.audit.Record(ctx, j.ID, config.ActionRetry, config.ActorWorker,
		fmt.Sprintf("retry_count=%d, delay=%s", j.RetryCount, delay))
	s.log.Info().
		Uint("job_id", j.ID).
		Int("retry_count", j.RetryCount).
		Dur("delay", delay).
		Msg("job scheduled for retry")
}

func (s *JobService) failTerminal(ctx context.Context, j *models.Job, details string) {
	now := time.Now().UTC()
	if err := s.jobs.MarkFailed(ctx, j.ID, j.RetryCount, j.LastError, now); err != nil {
		s.log.Error().Uint("job_id", j.ID).Err(err).Msg("failed to mark job failed")
		return
	}
	j.Status = config.StatusFailed

	s.audit.Record(ctx, j.ID, config.ActionStateChange, config.ActorWorker, "processing -> failed")
	s.log.Error().Uint("job_id", j.ID).Str("last_error", j.LastError).Msg("job failed terminally")

	s.notifyFailure(ctx, j, details)
}

// notifyFailure classifies the terminal failure and fires exactly one
// notification path: insufficient funds goes to the payer's registered
// email, everything else to the administrator.
func (s *JobService) notifyFailure(ctx context.Context, j *models.Job, details string) {
	subject := fmt.Sprintf("Job %d failed", j.ID)

	if strings.Contains(strings.ToLower(j.LastError), "insufficient funds") {
		s.notifyPayer(ctx, j, subject, details)
		return
	}

	if s.cfg.AdminEmail == "" {
		s.log.Warn().Uint("job_id", j.ID).Msg("no admin email configured, skipping failure notification")
		return
	}

	body := fmt.Sprintf("Job %d of type %s has failed.\nDetails: %s\nLast error: %s",
		j.ID, j.Type, details, j.LastError)
	s.send(ctx, j.ID, []string{s.cfg.AdminEmail}, subject, body)
}

func (s *JobService) notifyPayer(ctx context.Context, j *models.Job, subject, details string) {
	payload, err := s.DecryptPayload(ctx, j, config.ActorWorker)
	if err != nil {
		s.log.Warn().Uint("job_id", j.ID).Err(err).Msg("cannot decrypt payload for payer notification")
		return
	}

	var transfer dto.TransferPayload
	if err := json.Unmarshal(payload, &transfer); err != nil {
		s.log.Warn().Uint("job_id", j.ID).Err(err).Msg("cannot parse transfer payload for payer notification")
		return
	}

	acc, err := s.accounts.GetByAccountID(ctx, transfer.From)
	if err != nil {
		s.log.Warn().Uint("job_id", j.ID).Str("account_id", transfer.From).Err(err).
			Msg("cannot resolve payer account for notification")
		return
	}

	body := fmt.Sprintf(
		"Job %d of type %s has failed due to insufficient funds.\nUser: %s (Account: %s, Email: %s)\nDetails: %s",
		j.ID, j.Type, acc.Name, acc.AccountID, acc.Email, details)
	s.send(ctx, j.ID, []string{acc.Email}, subject, body)
}

func (s *JobService) send(ctx context.Context, jobID uint, recipients []string, subject, body string) {
	if err := s.notifier.Send(ctx, recipients, subject, body); err != nil {
		// Delivery errors never affect job state.
		s.log.Warn().Uint("job_id", jobID).Err(err).Msg("failure notification delivery failed")
	}
}

// Replay resets a failed job and executes it immediately on the caller's
// goroutine. Only failed jobs are replayable; both the status check and
// the reset are conditional, so a concurrent state change surfaces as
// common.ErrInvalidState.
func (s *JobService) Replay(ctx context.Context, id uint, actor string) error {
	j, err := s.jobs.Get(ctx, id)
	if err != nil {
		return err
	}

	if j.Status != config.StatusFailed {
		return common.ErrInvalidState
	}

	now := time.Now().UTC()
	ok, err := s.jobs.ResetForReplay(ctx, id, now)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrInvalidState
	}
	j.Status = config.StatusQueued
	j.RunAt = now

	s.audit.Record(ctx, id, config.ActionReplay, actor, "")

	// Claim before executing so the at-most-one-processor invariant holds
	// even against a concurrently polling worker. Losing the claim means
	// some other worker picked the job up, which is still a successful
	// replay from the caller's perspective.
	claimed, err := s.jobs.Claim(ctx, id, now)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}
	j.Status = config.StatusProcessing
	j.ProcessingStartedAt = &now

	s.audit.Record(ctx, id, config.ActionStateChange, actor, "queued -> processing")
	s.Process(ctx, j)
	return nil
}

func toSummary(j *models.Job) *dto.JobSummary {
	return &dto.JobSummary{
		ID:          j.ID,
		Type:        j.Type,
		Status:      j.Status,
		RetryCount:  j.RetryCount,
		LastError:   j.LastError,
		RunAt:       j.RunAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		CompletedAt: j.CompletedAt,
	}
}
