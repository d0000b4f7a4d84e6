package domain

import "time"

// Scan timeline event types
const (
	EventTypeScanStarted   = "SCAN_STARTED"
	EventTypeScanRunning   = "SCAN_RUNNING"
	EventTypeScanProgress  = "SCAN_PROGRESS"
	EventTypeScanReport    = "SCAN_REPORT"
	EventTypeScanCompleted = "SCAN_COMPLETED"
	EventTypeScanFailed    = "SCAN_FAILED"
)

type ScanEvent struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
	ScanID    string     `gorm:"size:36;not null;index" json:"scanId"`
	Type      string     `gorm:"size:100;not null;index" json:"type"`
	Status    ScanStatus `gorm:"size:20;not null" json:"status"`
	Progress  int        `json:"progress"`
	Message   string     `gorm:"type:text" json:"message"`
	Meta      JSONB      `gorm:"type:jsonb" json:"meta,omitempty"`
}
