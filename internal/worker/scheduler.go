package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rohanmehta-dev/finqueue/internal/audit"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/job"
	"github.com/rohanmehta-dev/finqueue/internal/models"
)

// Scheduler polls the job store on a fixed interval. Each cycle recovers
// stuck jobs, fetches eligible work per type, claims jobs in bounded
// batches via compare-and-swap, and dispatches each batch concurrently.
// Multiple scheduler processes may run against the same store; the claim
// CAS is the only coordination between them.
type Scheduler struct {
	jobs  job.JobRepoInterface
	svc   job.JobServiceInterface
	audit audit.Recorder
	cfg   *config.App
	log   zerolog.Logger

	cron *cron.Cron
}

func NewScheduler(
	jobs job.JobRepoInterface,
	svc job.JobServiceInterface,
	rec audit.Recorder,
	cfg *config.App,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		jobs:  jobs,
		svc:   svc,
		audit: rec,
		cfg:   cfg,
		log:   log,
	}
}

// Start begins polling every cfg.PollInterval. A cycle that outlives the
// interval is skipped rather than stacked.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	spec := fmt.Sprintf("@every %s", s.cfg.PollInterval)
	if _, err := c.AddFunc(spec, func() { s.RunCycle(ctx) }); err != nil {
		return fmt.Errorf("schedule poll loop: %w", err)
	}

	c.Start()
	s.cron = c
	s.log.Info().
		Dur("poll_interval", s.cfg.PollInterval).
		Int("batch_size", s.cfg.BatchSize).
		Msg("scheduler started")
	return nil
}

// Stop halts polling and waits for the in-flight cycle to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunCycle executes one poll cycle. Safe to call directly; the CLI and
// tests do.
func (s *Scheduler) RunCycle(ctx context.Context) {
	s.recoverStuck(ctx)

	for _, jobType := range config.JobTypes {
		eligible, err := s.jobs.ListEligible(ctx, jobType, time.Now().UTC())
		if err != nil {
			s.log.Error().Str("type", jobType).Err(err).Msg("failed to list eligible jobs")
			continue
		}

		for start := 0; start < len(eligible); start += s.cfg.BatchSize {
			end := min(start+s.cfg.BatchSize, len(eligible))
			s.dispatchBatch(ctx, eligible[start:end])
		}
	}
}

// recoverStuck requeues jobs whose claim is older than the stuck timeout.
// This bounds the damage of a crashed worker at the cost of a possible
// double execution when the original worker is slow rather than dead.
func (s *Scheduler) recoverStuck(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.StuckTimeout)
	recovered, err := s.jobs.ResetStuck(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("stuck job sweep failed")
		return
	}

	for _, j := range recovered {
		s.audit.Record(ctx, j.ID, config.ActionStateChange, config.ActorWorker, "processing -> queued (stuck recovery)")
		s.log.Warn().Uint("job_id", j.ID).Msg("recovered stuck job")
	}
}

// dispatchBatch claims each job in the batch and processes the winners
// concurrently. The cycle waits for the whole batch before moving on, so
// concurrency never exceeds the batch size.
func (s *Scheduler) dispatchBatch(ctx context.Context, batch []models.Job) {
	now := time.Now().UTC()
	claimed := make([]*models.Job, 0, len(batch))

	for i := range batch {
		j := batch[i]

		ok, err := s.jobs.Claim(ctx, j.ID, now)
		if err != nil {
			s.log.Error().Uint("job_id", j.ID).Err(err).Msg("claim failed")
			continue
		}
		if !ok {
			// Another worker won the CAS; skip silently.
			continue
		}

		j.Status = config.StatusProcessing
		j.ProcessingStartedAt = &now
		s.audit.Record(ctx, j.ID, config.ActionStateChange, config.ActorWorker, "queued -> processing")
		claimed = append(claimed, &j)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchSize)
	for _, j := range claimed {
		j := j
		g.Go(func() error {
			s.svc.Process(gctx, j)
			return nil
		})
	}
	// Process routes all failures into the retry policy, so the group
	// never returns an error.
	_ = g.Wait()
}
