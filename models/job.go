package models

import "time"

// JobStatus is the lifecycle state of a background AI job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Job is a background AI job whose lifecycle operators control
type Job struct {
	Key           string         `json:"key" yaml:"key"`
	Category      string         `json:"category" yaml:"category"`
	Type          string         `json:"type" yaml:"type"`
	Status        JobStatus      `json:"status" yaml:"status"`
	Provider      string         `json:"provider,omitempty" yaml:"provider,omitempty"`
	RetryCount    int            `json:"retry_count" yaml:"retry_count"`
	MaxRetries    int            `json:"max_retries" yaml:"max_retries"`
	InputSummary  map[string]any `json:"input_summary,omitempty" yaml:"input_summary,omitempty"`
	OutputSummary map[string]any `json:"output_summary,omitempty" yaml:"output_summary,omitempty"`
	LastError     string         `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	Version       int64          `json:"version" yaml:"-"`
	UpdatedBy     string         `json:"updated_by,omitempty" yaml:"-"`
	UpdatedAt     time.Time      `json:"updated_at" yaml:"-"`
}

// Ref returns the resource address of the job
func (j *Job) Ref() ResourceRef {
	return ResourceRef{Kind: KindJob, Key: j.Key}
}

// Snapshot captures the fields job history tracks. Summaries are free-form
// and must be scrubbed before they are persisted anywhere else.
func (j *Job) Snapshot() Snapshot {
	return Snapshot{
		"status":         string(j.Status),
		"retry_count":    j.RetryCount,
		"last_error":     j.LastError,
		"output_summary": j.OutputSummary,
	}
}

// Stamp records the version and authorship of the stored state
func (j *Job) Stamp(version int64, by string, at time.Time) {
	j.Version = version
	j.UpdatedBy = by
	j.UpdatedAt = at
}
