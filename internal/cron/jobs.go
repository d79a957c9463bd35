package cron

import (
	"context"
	"sync"
	"time"

	"github.com/cclank/dailynews/internal/app"
	"github.com/cclank/dailynews/internal/status"
)

// DigestRunner is the subset of the orchestrator needed by the digest job.
// Defined here to avoid depending on the concrete Runner in tests.
type DigestRunner interface {
	Run(ctx context.Context, opts app.Options) (*app.Report, error)
}

// DigestJob runs the daily digest pipeline on its cron schedule and keeps
// the stats served by the status endpoint.
type DigestJob struct {
	Runner       DigestRunner
	Opts         app.Options
	ScheduleExpr string // empty = default "0 8 * * *"
	Metrics      *status.Metrics

	// NextFunc supplies the next scheduled run time for Snapshot.
	// Typically Scheduler.Next.
	NextFunc func() time.Time

	mu        sync.Mutex
	lastAt    time.Time
	lastOK    bool
	lastErr   string
	totalRuns int64
	totalSent int64
}

// Compile-time interface checks.
var (
	_ Job             = (*DigestJob)(nil)
	_ status.Reporter = (*DigestJob)(nil)
)

// Name implements Job.
func (j *DigestJob) Name() string { return "daily_digest" }

// Schedule implements Job.
func (j *DigestJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 8 * * *"
}

// Run executes one digest run and records the outcome.
func (j *DigestJob) Run(ctx context.Context) error {
	started := time.Now()
	report, err := j.Runner.Run(ctx, j.Opts)
	elapsed := time.Since(started)

	j.mu.Lock()
	j.lastAt = started
	j.totalRuns++
	if err != nil {
		j.lastOK = false
		j.lastErr = err.Error()
	} else {
		j.lastOK = report.OK()
		j.lastErr = report.ErrorDetail()
		j.totalSent += int64(report.MessagesSent)
	}
	ok := j.lastOK
	j.mu.Unlock()

	if j.Metrics != nil {
		sent, failed := 0, 0
		if report != nil {
			sent = report.MessagesSent
			failed = report.MessagesFailed
		}
		j.Metrics.RecordRun(ok, sent, failed, elapsed.Seconds())
		if report != nil {
			switch report.GitHub {
			case app.StepOK:
				j.Metrics.RecordPush(true)
			case app.StepFailed:
				j.Metrics.RecordPush(false)
			}
		}
	}
	return err
}

// Snapshot implements status.Reporter.
func (j *DigestJob) Snapshot() status.Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := status.Snapshot{
		Running:   true,
		Preset:    j.Opts.Preset,
		LastRunAt: j.lastAt,
		LastRunOK: j.lastOK,
		LastError: j.lastErr,
		TotalRuns: j.totalRuns,
		TotalSent: j.totalSent,
	}
	if j.NextFunc != nil {
		snap.NextRun = j.NextFunc()
	}
	return snap
}
