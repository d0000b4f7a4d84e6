package domain

import (
	"errors"
	"fmt"
	"time"
)

type ScanStatus string

const (
	ScanStatusStarted   ScanStatus = "started"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// Fixed checkpoints of the simulated scan.
const (
	ProgressStarted  = 0
	ProgressRunning  = 30
	ProgressAnalysis = 70
	ProgressComplete = 100
)

var DefaultChecks = []string{"semgrep", "trivy"}

var ErrInvalidTransition = errors.New("scan: invalid state transition")

func (s ScanStatus) rank() int {
	switch s {
	case ScanStatusStarted:
		return 0
	case ScanStatusRunning:
		return 1
	case ScanStatusCompleted, ScanStatusFailed:
		return 2
	default:
		return -1
	}
}

func (s ScanStatus) Terminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusFailed
}

type FindingCategory string

const (
	CategorySAST          FindingCategory = "sast"
	CategoryVulnerability FindingCategory = "vulnerability"
	CategorySecret        FindingCategory = "secret"
	CategoryInfo          FindingCategory = "info"
)

type Finding struct {
	ID               string          `json:"id"`
	Category         FindingCategory `json:"category"`
	Severity         string          `json:"severity"`
	Title            string          `json:"title"`
	Message          string          `json:"message,omitempty"`
	Path             string          `json:"path,omitempty"`
	Line             int             `json:"line,omitempty"`
	Confidence       string          `json:"confidence,omitempty"`
	Package          string          `json:"package,omitempty"`
	InstalledVersion string          `json:"installedVersion,omitempty"`
	FixedVersion     string          `json:"fixedVersion,omitempty"`
	Repository       string          `json:"repository,omitempty"`
}

type CheckResult struct {
	Findings []Finding     `json:"findings"`
	Summary  FindingCounts `json:"summary"`
}

type FindingCounts struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

type SecurityScore struct {
	Score       int       `json:"score"`
	Grade       string    `json:"grade"`
	TotalIssues int       `json:"totalIssues"`
	Timestamp   time.Time `json:"timestamp"`
}

// ScanJob is the record of one simulated scan. Only the scan's own
// progression task mutates it, always through Advance, Complete or Fail.
type ScanJob struct {
	ID              string                 `gorm:"primaryKey;size:36" json:"id"`
	Target          string                 `gorm:"type:text;not null" json:"target"`
	RequestedChecks StringList             `gorm:"type:jsonb" json:"requestedChecks"`
	OwnerID         string                 `gorm:"size:36;index" json:"-"`
	Status          ScanStatus             `gorm:"size:20;not null;index" json:"status"`
	Progress        int                    `gorm:"not null;default:0" json:"progress"`
	Results         map[string]CheckResult `gorm:"type:jsonb;serializer:json" json:"results"`
	SecurityScore   *SecurityScore         `gorm:"type:jsonb;serializer:json" json:"securityScore,omitempty"`
	Error           string                 `gorm:"type:text" json:"error,omitempty"`
	ReportLocation  string                 `gorm:"type:text" json:"reportLocation,omitempty"`
	StartedAt       time.Time              `gorm:"index" json:"startedAt"`
	CompletedAt     *time.Time             `json:"completedAt,omitempty"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func NewScanJob(id, target string, checks []string, ownerID string, now time.Time) *ScanJob {
	return &ScanJob{
		ID:              id,
		Target:          target,
		RequestedChecks: StringList(append([]string(nil), checks...)),
		OwnerID:         ownerID,
		Status:          ScanStatusStarted,
		Progress:        ProgressStarted,
		Results:         map[string]CheckResult{},
		StartedAt:       now,
		UpdatedAt:       now,
	}
}

// Advance moves a non-terminal job forward. Status never goes backward and
// progress never decreases; 100 is reserved for Complete.
func (j *ScanJob) Advance(status ScanStatus, progress int, now time.Time) error {
	if j.Status.Terminal() {
		return fmt.Errorf("%w: job %s is already %s", ErrInvalidTransition, j.ID, j.Status)
	}
	if status.Terminal() || status.rank() < 0 {
		return fmt.Errorf("%w: %s is not a progress state", ErrInvalidTransition, status)
	}
	if status.rank() < j.Status.rank() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, status)
	}
	if progress < j.Progress || progress >= ProgressComplete {
		return fmt.Errorf("%w: progress %d -> %d", ErrInvalidTransition, j.Progress, progress)
	}

	j.Status = status
	j.Progress = progress
	j.UpdatedAt = now
	return nil
}

func (j *ScanJob) Complete(results map[string]CheckResult, score *SecurityScore, reportLocation string, now time.Time) error {
	if j.Status.Terminal() {
		return fmt.Errorf("%w: job %s is already %s", ErrInvalidTransition, j.ID, j.Status)
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: completed job %s needs results", ErrInvalidTransition, j.ID)
	}

	j.Status = ScanStatusCompleted
	j.Progress = ProgressComplete
	j.Results = results
	j.SecurityScore = score
	j.ReportLocation = reportLocation
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

func (j *ScanJob) Fail(reason string, now time.Time) error {
	if j.Status.Terminal() {
		return fmt.Errorf("%w: job %s is already %s", ErrInvalidTransition, j.ID, j.Status)
	}

	j.Status = ScanStatusFailed
	j.Error = reason
	j.Results = map[string]CheckResult{}
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// Clone returns a deep copy safe to hand to readers.
func (j *ScanJob) Clone() *ScanJob {
	cp := *j
	cp.RequestedChecks = append(StringList(nil), j.RequestedChecks...)
	cp.Results = make(map[string]CheckResult, len(j.Results))
	for kind, res := range j.Results {
		res.Findings = append([]Finding(nil), res.Findings...)
		cp.Results[kind] = res
	}
	if j.SecurityScore != nil {
		score := *j.SecurityScore
		cp.SecurityScore = &score
	}
	if j.CompletedAt != nil {
		completed := *j.CompletedAt
		cp.CompletedAt = &completed
	}
	return &cp
}

type ScanSummary struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	Status      ScanStatus `json:"status"`
	Progress    int        `json:"progress"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (j *ScanJob) Summary() ScanSummary {
	return ScanSummary{
		ID:          j.ID,
		Target:      j.Target,
		Status:      j.Status,
		Progress:    j.Progress,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
