package database

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// JobStatus represents the status of a render job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// RenderJob records a single conversion request and its result
type RenderJob struct {
	ID          ulid.ULID  `json:"id"`
	Format      string     `json:"format"`
	Status      JobStatus  `json:"status"`
	SpecHash    string     `json:"specHash"`
	Spec        string     `json:"spec"`             // the submitted specification
	Output      []byte     `json:"-"`                // served via the output endpoint, not inlined
	ContentType string     `json:"contentType"`
	Size        int        `json:"size"`             // output size in bytes
	DurationMs  int64      `json:"durationMs"`       // wall time of the conversion
	Error       string     `json:"error,omitempty"`  // error message if failed
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// FormatStat summarises render activity for one output format
type FormatStat struct {
	Format    string `json:"format"`
	Count     int    `json:"count"`
	TotalSize int64  `json:"totalSize"`
}
