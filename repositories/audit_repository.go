package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/blogem/admin-console/models"
)

// AuditRepository handles audit log persistence
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error)
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *sqliteAuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_log (id, timestamp, actor_id, actor_role, action, resource_kind, resource_id,
			metadata, reason, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx,
		query,
		entry.ID,
		entry.Timestamp.UTC(),
		entry.ActorID,
		string(entry.ActorRole),
		entry.Action,
		string(entry.ResourceKind),
		entry.ResourceID,
		string(metadata),
		entry.Reason,
		entry.IPAddress,
		entry.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// List retrieves audit entries, newest first
func (r *sqliteAuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error) {
	query := `
		SELECT id, timestamp, actor_id, actor_role, action, resource_kind, resource_id,
		       metadata, reason, ip_address, user_agent
		FROM audit_log
		WHERE 1 = 1
	`
	var args []any

	if filter.ResourceKind != "" {
		query += " AND resource_kind = ?"
		args = append(args, string(filter.ResourceKind))
	}
	if filter.ResourceID != "" {
		query += " AND resource_id = ?"
		args = append(args, filter.ResourceID)
	}
	if filter.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filter.ActorID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = models.DefaultListLimit
	}
	if limit > models.MaxListLimit {
		limit = models.MaxListLimit
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var role, kind, metadata string

		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.ActorID,
			&role,
			&entry.Action,
			&kind,
			&entry.ResourceID,
			&metadata,
			&entry.Reason,
			&entry.IPAddress,
			&entry.UserAgent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.ActorRole = models.Role(role)
		entry.ResourceKind = models.ResourceKind(kind)
		if err := json.Unmarshal([]byte(metadata), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode audit metadata %s: %w", entry.ID, err)
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}

	return entries, nil
}
