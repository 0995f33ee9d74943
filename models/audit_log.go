package models

import "time"

// AuditEntry is a cross-kind record of who did what to which resource
type AuditEntry struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	ActorID      string         `json:"actor_id"`
	ActorRole    Role           `json:"actor_role"`
	Action       string         `json:"action"`
	ResourceKind ResourceKind   `json:"resource_kind"`
	ResourceID   string         `json:"resource_id"`
	Metadata     map[string]any `json:"metadata"`
	Reason       string         `json:"reason"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
}

// AuditFilter narrows an audit log listing
type AuditFilter struct {
	ResourceKind ResourceKind `json:"resource_kind,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`
	ActorID      string       `json:"actor_id,omitempty"`
	Limit        int          `json:"limit,omitempty"`
}
