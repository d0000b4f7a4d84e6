package dto

import (
	"strings"

	"github.com/cyberio/backend/internal/domain"
)

// StartScanRequest accepts both the target/requestedChecks names and the
// older repoUrl/scanTypes ones.
type StartScanRequest struct {
	Target          string   `json:"target"`
	RequestedChecks []string `json:"requestedChecks"`
	RepoURL         string   `json:"repoUrl"`
	ScanTypes       []string `json:"scanTypes"`
}

func (r *StartScanRequest) Normalize() {
	if strings.TrimSpace(r.Target) == "" {
		r.Target = r.RepoURL
	}
	if len(r.RequestedChecks) == 0 {
		r.RequestedChecks = r.ScanTypes
	}
}

func (r *StartScanRequest) Validate() []string {
	var errors []string

	if strings.TrimSpace(r.Target) == "" {
		errors = append(errors, "target is required")
	}

	return errors
}

type StartScanResponse struct {
	JobID   string            `json:"jobId"`
	ScanID  string            `json:"scanId"`
	Status  domain.ScanStatus `json:"status"`
	Message string            `json:"message"`
}

func ScanToStartResponse(job *domain.ScanJob) StartScanResponse {
	return StartScanResponse{
		JobID:   job.ID,
		ScanID:  job.ID,
		Status:  job.Status,
		Message: "Scan initiated successfully",
	}
}

type ScanListResponse struct {
	Scans []domain.ScanSummary `json:"scans"`
	Count int                  `json:"count"`
}

type ScanEventsResponse struct {
	Events []domain.ScanEvent `json:"events"`
}

// StreamError is the last frame sent on a scan stream that cannot continue.
type StreamError struct {
	Error string `json:"error"`
}
