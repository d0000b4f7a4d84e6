package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
)

const (
	maxTargetLen     = 2048
	failWriteTimeout = 5 * time.Second
)

// ScanSchedule holds the delays between the fixed progression checkpoints.
type ScanSchedule struct {
	StartDelay    time.Duration
	ProgressDelay time.Duration
	FinishDelay   time.Duration
}

func (s ScanSchedule) Total() time.Duration {
	return s.StartDelay + s.ProgressDelay + s.FinishDelay
}

type scanTracker struct {
	repo             ports.ScanRepository
	timeline         ports.TimelineRepository
	publisher        ports.ReportPublisher
	metrics          ports.ScanMetrics
	logger           *logger.Logger
	schedule         ScanSchedule
	maxLifetime      time.Duration
	enforceOwnership bool
	now              func() time.Time
	newID            func() string

	sem     *semaphore.Weighted
	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type ScanTrackerConfig struct {
	Repository       ports.ScanRepository
	Timeline         ports.TimelineRepository
	Publisher        ports.ReportPublisher // optional
	Metrics          ports.ScanMetrics     // optional
	Logger           *logger.Logger
	Schedule         ScanSchedule
	MaxConcurrent    int
	MaxLifetime      time.Duration
	EnforceOwnership bool
	Clock            func() time.Time
	IDGenerator      func() string
}

func NewScanTracker(cfg ScanTrackerConfig) ports.ScanTracker {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	maxLifetime := cfg.MaxLifetime
	if maxLifetime <= cfg.Schedule.Total() {
		maxLifetime = 2 * cfg.Schedule.Total()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	now := cfg.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	newID := cfg.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	return &scanTracker{
		repo:             cfg.Repository,
		timeline:         cfg.Timeline,
		publisher:        cfg.Publisher,
		metrics:          metrics,
		logger:           cfg.Logger,
		schedule:         cfg.Schedule,
		maxLifetime:      maxLifetime,
		enforceOwnership: cfg.EnforceOwnership,
		now:              now,
		newID:            newID,
		sem:              semaphore.NewWeighted(int64(maxConcurrent)),
		baseCtx:          baseCtx,
		cancel:           cancel,
	}
}

// Create stores a new job in the started state and launches its
// progression in the background. It never waits on the schedule.
func (t *scanTracker) Create(ctx context.Context, input ports.CreateScanInput) (*domain.ScanJob, error) {
	target := strings.TrimSpace(input.Target)
	if target == "" {
		return nil, ErrScanTargetEmpty
	}
	if len(target) > maxTargetLen {
		return nil, fmt.Errorf("%w: target longer than %d characters", domain.ErrValidation, maxTargetLen)
	}
	checks, err := normalizeChecks(input.Checks)
	if err != nil {
		return nil, err
	}

	if err := t.reserve(); err != nil {
		if errors.Is(err, ErrScanAtCapacity) {
			t.metrics.ScanRejected()
			t.logger.Warnw("scan_rejected_at_capacity", "target", target)
		}
		return nil, err
	}

	job := domain.NewScanJob(t.newID(), target, checks, input.OwnerID, t.now())
	if err := t.repo.Insert(ctx, job); err != nil {
		t.release()
		t.logger.Errorw("scan_repo_insert_failed", "scan_id", job.ID, "error", err)
		return nil, fmt.Errorf("scan: failed to store job: %w", err)
	}

	t.metrics.ScanStarted()
	t.metrics.InflightInc()
	t.recordEvent(ctx, job, domain.EventTypeScanStarted, "Scan initiated")
	t.logger.Infow("scan_started", "scan_id", job.ID, "target", target, "checks", checks, "owner_id", input.OwnerID)

	go t.run(job.ID)

	return job.Clone(), nil
}

func (t *scanTracker) Status(ctx context.Context, id, requesterID string) (*domain.ScanJob, error) {
	job, err := t.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrScanNotFound
		}
		t.logger.Errorw("scan_repo_get_failed", "scan_id", id, "error", err)
		return nil, err
	}
	if !t.visibleTo(job, requesterID) {
		return nil, ErrScanNotFound
	}
	return job, nil
}

// List returns the requester's jobs, or every job when the requester is
// anonymous and ownership is not enforced.
func (t *scanTracker) List(ctx context.Context, ownerID string) ([]domain.ScanSummary, error) {
	if t.enforceOwnership && ownerID == "" {
		return []domain.ScanSummary{}, nil
	}
	jobs, err := t.repo.List(ctx, ownerID)
	if err != nil {
		t.logger.Errorw("scan_repo_list_failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	summaries := make([]domain.ScanSummary, 0, len(jobs))
	for i := range jobs {
		summaries = append(summaries, jobs[i].Summary())
	}
	return summaries, nil
}

func (t *scanTracker) Events(ctx context.Context, id, requesterID string) ([]domain.ScanEvent, error) {
	if _, err := t.Status(ctx, id, requesterID); err != nil {
		return nil, err
	}
	events, err := t.timeline.GetByScan(ctx, id)
	if err != nil {
		t.logger.Errorw("scan_timeline_list_failed", "scan_id", id, "error", err)
		return nil, err
	}
	return events, nil
}

// Shutdown stops accepting jobs, interrupts running progressions (they end
// up failed) and waits for them to finish writing.
func (t *scanTracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Infow("scan_tracker_stopped")
		return nil
	case <-ctx.Done():
		t.logger.Warnw("scan_tracker_shutdown_timeout", "error", ctx.Err())
		return ctx.Err()
	}
}

// reserve takes a concurrency slot and registers the progression with the
// shutdown wait group.
func (t *scanTracker) reserve() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTrackerClosed
	}
	if !t.sem.TryAcquire(1) {
		return ErrScanAtCapacity
	}
	t.wg.Add(1)
	return nil
}

func (t *scanTracker) release() {
	t.sem.Release(1)
	t.wg.Done()
}

func (t *scanTracker) visibleTo(job *domain.ScanJob, requesterID string) bool {
	if !t.enforceOwnership || job.OwnerID == "" {
		return true
	}
	return job.OwnerID == requesterID
}

func (t *scanTracker) run(id string) {
	defer t.release()
	defer t.metrics.InflightDec()

	ctx, cancel := context.WithTimeout(t.baseCtx, t.maxLifetime)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			t.logger.Errorw("scan_progression_panic", "scan_id", id, "panic", r)
			t.fail(id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := t.progress(ctx, id); err != nil {
		t.logger.Errorw("scan_progression_failed", "scan_id", id, "error", err)
		t.fail(id, t.failureReason(err))
	}
}

type checkpoint struct {
	delay     time.Duration
	status    domain.ScanStatus
	progress  int
	eventType string
	message   string
}

func (t *scanTracker) progress(ctx context.Context, id string) error {
	checkpoints := []checkpoint{
		{t.schedule.StartDelay, domain.ScanStatusRunning, domain.ProgressRunning, domain.EventTypeScanRunning, "Scan running"},
		{t.schedule.ProgressDelay, domain.ScanStatusRunning, domain.ProgressAnalysis, domain.EventTypeScanProgress, "Analyzing results"},
	}

	for _, cp := range checkpoints {
		if err := sleepContext(ctx, cp.delay); err != nil {
			return err
		}
		job, err := t.repo.Update(ctx, id, func(job *domain.ScanJob) error {
			return job.Advance(cp.status, cp.progress, t.now())
		})
		if err != nil {
			return err
		}
		t.recordEvent(ctx, job, cp.eventType, cp.message)
		t.logger.Debugw("scan_progress", "scan_id", id, "status", job.Status, "progress", job.Progress)
	}

	if err := sleepContext(ctx, t.schedule.FinishDelay); err != nil {
		return err
	}
	return t.complete(ctx, id)
}

func (t *scanTracker) complete(ctx context.Context, id string) error {
	current, err := t.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	now := t.now()
	results := syntheticResults(current.Target, current.RequestedChecks)
	score := securityScore(results, now)

	// The report is rendered from a local copy of the final record so the
	// stored job only changes once, when it becomes completed.
	location := t.publishReport(ctx, current, results, score, now)
	if err := ctx.Err(); err != nil {
		if location != "" {
			t.logger.Warnw("scan_report_orphaned", "scan_id", id, "report", location)
		}
		return err
	}

	job, err := t.repo.Update(ctx, id, func(job *domain.ScanJob) error {
		return job.Complete(results, score, location, now)
	})
	if err != nil {
		return err
	}

	// Timeline entries follow the stored state, so the report event is only
	// written once the job is completed.
	if location != "" {
		t.recordEvent(ctx, job, domain.EventTypeScanReport, "Report published to "+t.publisher.Sink())
	}
	t.metrics.ScanCompleted(now.Sub(job.StartedAt))
	t.recordEvent(ctx, job, domain.EventTypeScanCompleted, fmt.Sprintf("Scan completed with grade %s", score.Grade))
	t.logger.Infow("scan_completed", "scan_id", id, "score", score.Score, "grade", score.Grade, "report", location)
	return nil
}

type scanReport struct {
	Scan        *domain.ScanJob `json:"scan"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

func (t *scanTracker) publishReport(ctx context.Context, current *domain.ScanJob, results map[string]domain.CheckResult, score *domain.SecurityScore, now time.Time) string {
	if t.publisher == nil {
		return ""
	}

	final := current.Clone()
	if err := final.Complete(results, score, "", now); err != nil {
		t.logger.Errorw("scan_report_render_failed", "scan_id", current.ID, "error", err)
		return ""
	}
	payload, err := json.MarshalIndent(scanReport{Scan: final, GeneratedAt: now}, "", "  ")
	if err != nil {
		t.logger.Errorw("scan_report_render_failed", "scan_id", current.ID, "error", err)
		return ""
	}

	location, err := t.publisher.Publish(ctx, current.ID+".json", payload)
	if err != nil {
		t.logger.Errorw("scan_report_publish_failed", "scan_id", current.ID, "sink", t.publisher.Sink(), "error", err)
		return ""
	}

	t.metrics.ReportPublished(t.publisher.Sink())
	return location
}

// fail writes the terminal failed state with its own deadline, since the
// progression context is usually already done at this point.
func (t *scanTracker) fail(id, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), failWriteTimeout)
	defer cancel()

	job, err := t.repo.Update(ctx, id, func(job *domain.ScanJob) error {
		return job.Fail(reason, t.now())
	})
	if err != nil {
		t.logger.Errorw("scan_repo_fail_update_failed", "scan_id", id, "reason", reason, "error", err)
		return
	}

	t.metrics.ScanFailed()
	t.recordEvent(ctx, job, domain.EventTypeScanFailed, reason)
	t.logger.Warnw("scan_failed", "scan_id", id, "reason", reason)
}

func (t *scanTracker) failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("scan exceeded maximum lifetime of %s", t.maxLifetime)
	case errors.Is(err, context.Canceled):
		return "scan interrupted by shutdown"
	default:
		return err.Error()
	}
}

func (t *scanTracker) recordEvent(ctx context.Context, job *domain.ScanJob, eventType, message string) {
	if t.timeline == nil {
		return
	}
	event := &domain.ScanEvent{
		CreatedAt: t.now(),
		ScanID:    job.ID,
		Type:      eventType,
		Status:    job.Status,
		Progress:  job.Progress,
		Message:   message,
	}
	if err := t.timeline.Create(ctx, event); err != nil {
		t.logger.Warnw("scan_timeline_write_failed", "scan_id", job.ID, "type", eventType, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type nopMetrics struct{}

func (nopMetrics) ScanStarted() {}
func (nopMetrics) ScanCompleted(time.Duration) {}
func (nopMetrics) ScanFailed() {}
func (nopMetrics) ScanRejected() {}
func (nopMetrics) InflightInc() {}
func (nopMetrics) InflightDec() {}
func (nopMetrics) ReportPublished(sink string) {}
func (nopMetrics) RateLimited() {}
