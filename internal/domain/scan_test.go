package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob() *ScanJob {
	return NewScanJob("job-1", "https://example.com/repo", []string{"trivy"}, "", time.Now())
}

func TestScanJob_AdvanceFollowsSchedule(t *testing.T) {
	job := newJob()
	now := time.Now()

	assert.Equal(t, ScanStatusStarted, job.Status)
	assert.Equal(t, 0, job.Progress)
	assert.Empty(t, job.Results)

	require.NoError(t, job.Advance(ScanStatusRunning, ProgressRunning, now))
	require.NoError(t, job.Advance(ScanStatusRunning, ProgressAnalysis, now))

	results := map[string]CheckResult{"trivy": {Findings: []Finding{{ID: "CVE-2021-44228"}}}}
	require.NoError(t, job.Complete(results, &SecurityScore{Score: 97, Grade: "A"}, "", now))

	assert.Equal(t, ScanStatusCompleted, job.Status)
	assert.Equal(t, ProgressComplete, job.Progress)
	require.NotNil(t, job.CompletedAt)
	assert.Len(t, job.Results, 1)
}

func TestScanJob_AdvanceRejectsRegression(t *testing.T) {
	job := newJob()
	now := time.Now()
	require.NoError(t, job.Advance(ScanStatusRunning, ProgressAnalysis, now))

	err := job.Advance(ScanStatusRunning, ProgressRunning, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = job.Advance(ScanStatusStarted, ProgressAnalysis, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = job.Advance(ScanStatusRunning, ProgressComplete, now)
	assert.ErrorIs(t, err, ErrInvalidTransition, "100 is reserved for completion")

	err = job.Advance(ScanStatusCompleted, ProgressAnalysis, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, ProgressAnalysis, job.Progress)
}

func TestScanJob_TerminalIsFrozen(t *testing.T) {
	job := newJob()
	now := time.Now()
	require.NoError(t, job.Fail("deadline exceeded", now))

	assert.Equal(t, ScanStatusFailed, job.Status)
	assert.Equal(t, "deadline exceeded", job.Error)
	assert.Empty(t, job.Results)
	completedAt := *job.CompletedAt

	assert.ErrorIs(t, job.Fail("again", now.Add(time.Second)), ErrInvalidTransition)
	assert.ErrorIs(t, job.Advance(ScanStatusRunning, ProgressRunning, now), ErrInvalidTransition)
	assert.ErrorIs(t, job.Complete(map[string]CheckResult{"x": {}}, nil, "", now), ErrInvalidTransition)
	assert.Equal(t, completedAt, *job.CompletedAt)
}

func TestScanJob_CompleteNeedsResults(t *testing.T) {
	job := newJob()
	err := job.Complete(nil, nil, "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ScanStatusStarted, job.Status)
}

func TestScanJob_CloneIsDeep(t *testing.T) {
	job := newJob()
	now := time.Now()
	results := map[string]CheckResult{"trivy": {Findings: []Finding{{ID: "a"}}}}
	require.NoError(t, job.Complete(results, &SecurityScore{Score: 97}, "", now))

	cp := job.Clone()
	cp.RequestedChecks[0] = "mutated"
	cp.Results["trivy"].Findings[0].ID = "mutated"
	cp.SecurityScore.Score = 1
	*cp.CompletedAt = now.Add(time.Hour)

	assert.Equal(t, "trivy", job.RequestedChecks[0])
	assert.Equal(t, "a", job.Results["trivy"].Findings[0].ID)
	assert.Equal(t, 97, job.SecurityScore.Score)
	assert.Equal(t, now, *job.CompletedAt)
}
