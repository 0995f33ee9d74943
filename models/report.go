package models

import "time"

// ReportStatus is the moderation state of a user report
type ReportStatus string

const (
	ReportOpen                ReportStatus = "open"
	ReportInReview            ReportStatus = "in_review"
	ReportResolvedActionTaken ReportStatus = "resolved_action_taken"
	ReportResolvedNoAction    ReportStatus = "resolved_no_action"
	ReportDismissed           ReportStatus = "dismissed"
)

// ReportOutcomes are the statuses a report may be resolved to
var ReportOutcomes = []ReportStatus{ReportResolvedActionTaken, ReportResolvedNoAction, ReportDismissed}

// Report is a user-submitted report awaiting moderation
type Report struct {
	Key            string       `json:"key" yaml:"key"`
	Category       string       `json:"category" yaml:"category"`
	Status         ReportStatus `json:"status" yaml:"status"`
	TargetType     string       `json:"target_type" yaml:"target_type"`
	TargetID       string       `json:"target_id" yaml:"target_id"`
	ReporterID     string       `json:"reporter_id,omitempty" yaml:"reporter_id,omitempty"`
	Description    string       `json:"description,omitempty" yaml:"description,omitempty"`
	AssigneeID     string       `json:"assignee_id,omitempty" yaml:"assignee_id,omitempty"`
	ResolutionNote string       `json:"resolution_note,omitempty" yaml:"-"`
	ResolvedBy     string       `json:"resolved_by,omitempty" yaml:"-"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty" yaml:"-"`
	Version        int64        `json:"version" yaml:"-"`
	UpdatedBy      string       `json:"updated_by,omitempty" yaml:"-"`
	UpdatedAt      time.Time    `json:"updated_at" yaml:"-"`
}

// Ref returns the resource address of the report
func (r *Report) Ref() ResourceRef {
	return ResourceRef{Kind: KindReport, Key: r.Key}
}

// Snapshot captures the fields report history tracks
func (r *Report) Snapshot() Snapshot {
	return Snapshot{
		"status":          string(r.Status),
		"assignee_id":     r.AssigneeID,
		"resolution_note": r.ResolutionNote,
	}
}

// ControlRequest carries the common fields of every entity control action
type ControlRequest struct {
	Reason          string  `json:"reason"`
	ExpectedVersion *int64  `json:"expected_version,omitempty" validate:"omitempty,min=1"`
	ExpectedStatus  *string `json:"expected_status,omitempty"`
}

// AssignRequest assigns a report to an administrator
type AssignRequest struct {
	ControlRequest
	AssigneeID string `json:"assignee_id" validate:"required"`
}

// ChangeStatusRequest moves a report to another status
type ChangeStatusRequest struct {
	ControlRequest
	Status string `json:"status" validate:"required"`
}

// ResolveRequest closes a report with an outcome
type ResolveRequest struct {
	ControlRequest
	Outcome string `json:"outcome" validate:"required"`
	Note    string `json:"note,omitempty"`
}

// Stamp records the version and authorship of the stored state
func (r *Report) Stamp(version int64, by string, at time.Time) {
	r.Version = version
	r.UpdatedBy = by
	r.UpdatedAt = at
}
