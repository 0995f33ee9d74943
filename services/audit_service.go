package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/metrics"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/redact"
	"github.com/blogem/admin-console/repositories"
)

// AuditService emits and reads the cross-kind audit stream
type AuditService interface {
	// Emit records a committed mutation. It never fails the caller: a lost
	// audit entry is logged and counted, and the mutation stays committed.
	Emit(ctx context.Context, entry *models.AuditEntry)
	List(ctx context.Context, actor models.Actor, filter models.AuditFilter) ([]models.AuditEntry, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
	gate      *access.Gate
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository, gate *access.Gate) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		gate:      gate,
	}
}

// Emit writes the entry outside any record transaction
func (s *auditService) Emit(ctx context.Context, entry *models.AuditEntry) {
	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = timeNow().UTC()
	}
	entry.Metadata = redact.Payload(entry.Metadata)

	// The request may already be cancelled; the mutation it describes is not
	if err := s.auditRepo.Create(context.WithoutCancel(ctx), entry); err != nil {
		metrics.AuditEmitFailures.Inc()
		slog.Error("audit entry lost after committed mutation",
			"audit_id", entry.ID,
			"action", entry.Action,
			"resource_kind", entry.ResourceKind,
			"resource_id", entry.ResourceID,
			"actor_id", entry.ActorID,
			"error", err,
		)
	}
}

// List retrieves audit entries for actors allowed to review them
func (s *auditService) List(ctx context.Context, actor models.Actor, filter models.AuditFilter) ([]models.AuditEntry, error) {
	if err := authorize(s.gate, actor, access.ActionViewAudit); err != nil {
		return nil, err
	}

	entries, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, internalError("failed to list audit log", err)
	}
	return entries, nil
}

// newID returns a time-ordered identifier for history and audit rows
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
