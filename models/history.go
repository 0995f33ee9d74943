package models

import "time"

// Snapshot is a redacted copy of the fields a mutation touched
type Snapshot map[string]any

// History actions shared by every kind; entity kinds add their own
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionRollback = "rollback"
)

// HistoryEntry is one append-only record of a successful mutation
type HistoryEntry struct {
	ID            string       `json:"id"`
	ResourceKind  ResourceKind `json:"resource_kind"`
	ResourceKey   string       `json:"resource_key"`
	Action        string       `json:"action"`
	Before        Snapshot     `json:"before"`
	After         Snapshot     `json:"after"`
	Reason        string       `json:"reason"`
	ActorID       string       `json:"actor_id"`
	ActorRole     Role         `json:"actor_role"`
	VersionBefore int64        `json:"version_before"`
	VersionAfter  int64        `json:"version_after"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Ref returns the address of the record the entry belongs to
func (h *HistoryEntry) Ref() ResourceRef {
	return ResourceRef{Kind: h.ResourceKind, Key: h.ResourceKey}
}
