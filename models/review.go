package models

import "time"

// ReviewStatus is the moderation state of a product review
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
	ReviewFlagged  ReviewStatus = "flagged"
	ReviewHidden   ReviewStatus = "hidden"
)

// Review is an end-user review subject to moderation
type Review struct {
	Key            string       `json:"key" yaml:"key"`
	Category       string       `json:"category" yaml:"category"`
	Status         ReviewStatus `json:"status" yaml:"status"`
	AuthorID       string       `json:"author_id" yaml:"author_id"`
	SubjectID      string       `json:"subject_id" yaml:"subject_id"`
	Rating         int          `json:"rating" yaml:"rating"`
	Body           string       `json:"body,omitempty" yaml:"body,omitempty"`
	ModerationNote string       `json:"moderation_note,omitempty" yaml:"-"`
	ModeratedBy    string       `json:"moderated_by,omitempty" yaml:"-"`
	ModeratedAt    *time.Time   `json:"moderated_at,omitempty" yaml:"-"`
	Version        int64        `json:"version" yaml:"-"`
	UpdatedBy      string       `json:"updated_by,omitempty" yaml:"-"`
	UpdatedAt      time.Time    `json:"updated_at" yaml:"-"`
}

// Ref returns the resource address of the review
func (r *Review) Ref() ResourceRef {
	return ResourceRef{Kind: KindReview, Key: r.Key}
}

// Snapshot captures the fields review history tracks
func (r *Review) Snapshot() Snapshot {
	return Snapshot{
		"status":          string(r.Status),
		"moderation_note": r.ModerationNote,
		"moderated_by":    r.ModeratedBy,
	}
}

// ModerateRequest moves a review to a target status
type ModerateRequest struct {
	ControlRequest
	Status string `json:"status" validate:"required"`
	Note   string `json:"note,omitempty"`
}

// Stamp records the version and authorship of the stored state
func (r *Review) Stamp(version int64, by string, at time.Time) {
	r.Version = version
	r.UpdatedBy = by
	r.UpdatedAt = at
}
