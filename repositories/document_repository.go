package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/blogem/admin-console/models"
)

var (
	// ErrNotFound is returned when a record or history entry does not exist
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a commit's expected version is stale
	ErrVersionConflict = errors.New("version conflict")
	// ErrAlreadyExists is returned when inserting a record whose key is taken
	ErrAlreadyExists = errors.New("already exists")
)

// Document is the stored form of any administered record
type Document struct {
	Ref       models.ResourceRef
	Category  string
	Status    string
	Version   int64
	Body      json.RawMessage
	UpdatedBy string
	UpdatedAt time.Time
}

// DocumentStore persists records and their history. Mutations go through
// RunInTx; reads outside a transaction see the last committed state.
type DocumentStore interface {
	RunInTx(ctx context.Context, fn func(tx DocumentTx) error) error
	Get(ctx context.Context, ref models.ResourceRef) (*Document, error)
	List(ctx context.Context, kind models.ResourceKind, filter models.ListFilter) ([]Document, error)
	History(ctx context.Context, ref models.ResourceRef) ([]models.HistoryEntry, error)
	Insert(ctx context.Context, doc Document, entry models.HistoryEntry) error
}

// DocumentTx is the read-modify-write view of the store inside one atomic
// transaction. Either every write made through it lands, or none does.
type DocumentTx interface {
	ReadForUpdate(ctx context.Context, ref models.ResourceRef) (*Document, error)
	HistoryEntry(ctx context.Context, id string) (*models.HistoryEntry, error)
	Commit(ctx context.Context, doc Document, expectedVersion int64, entry models.HistoryEntry) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteDocumentStore implements DocumentStore on SQLite
type sqliteDocumentStore struct {
	db *sql.DB
}

// NewDocumentStore creates a new document store
func NewDocumentStore(db *sql.DB) DocumentStore {
	return &sqliteDocumentStore{db: db}
}

// RunInTx runs fn inside one transaction, committing when fn returns nil
func (s *sqliteDocumentStore) RunInTx(ctx context.Context, fn func(tx DocumentTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqliteDocumentTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves the committed state of a record
func (s *sqliteDocumentStore) Get(ctx context.Context, ref models.ResourceRef) (*Document, error) {
	return getDocument(ctx, s.db, ref)
}

// List retrieves the records of one kind matching filter
func (s *sqliteDocumentStore) List(ctx context.Context, kind models.ResourceKind, filter models.ListFilter) ([]Document, error) {
	filter = filter.Normalize()

	query := `
		SELECT kind, key, category, status, version, body, updated_by, updated_at
		FROM records
		WHERE kind = ?
	`
	args := []any{string(kind)}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.KeyPrefix != "" {
		query += ` AND key LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(filter.KeyPrefix)+"%")
	}

	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	if filter.SortBy == models.SortByUpdatedAt {
		query += " ORDER BY updated_at " + direction + ", key ASC"
	} else {
		query += " ORDER BY key " + direction
	}
	query += " LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", kind, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s records: %w", kind, err)
	}

	return docs, nil
}

// History retrieves a record's history in commit order
func (s *sqliteDocumentStore) History(ctx context.Context, ref models.ResourceRef) ([]models.HistoryEntry, error) {
	query := `
		SELECT id, resource_kind, resource_key, action, before_json, after_json, reason,
		       actor_id, actor_role, version_before, version_after, created_at
		FROM history_entries
		WHERE resource_kind = ? AND resource_key = ?
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(ref.Kind), ref.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", ref, err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history for %s: %w", ref, err)
	}

	return entries, nil
}

// Insert creates a record out-of-band together with its creation history entry
func (s *sqliteDocumentStore) Insert(ctx context.Context, doc Document, entry models.HistoryEntry) error {
	return s.RunInTx(ctx, func(tx DocumentTx) error {
		t := tx.(*sqliteDocumentTx)

		query := `
			INSERT INTO records (kind, key, category, status, version, body, updated_by, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := t.q.ExecContext(ctx, query,
			string(doc.Ref.Kind), doc.Ref.Key, doc.Category, doc.Status,
			doc.Version, string(doc.Body), doc.UpdatedBy, doc.UpdatedAt.UTC(),
		)
		if err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
				return fmt.Errorf("%s: %w", doc.Ref, ErrAlreadyExists)
			}
			return fmt.Errorf("failed to insert %s: %w", doc.Ref, err)
		}

		return t.appendHistory(ctx, entry)
	})
}

// sqliteDocumentTx implements DocumentTx on an open SQLite transaction
type sqliteDocumentTx struct {
	q queryer
}

// ReadForUpdate reads a record inside the transaction
func (t *sqliteDocumentTx) ReadForUpdate(ctx context.Context, ref models.ResourceRef) (*Document, error) {
	return getDocument(ctx, t.q, ref)
}

// HistoryEntry reads one history entry by id
func (t *sqliteDocumentTx) HistoryEntry(ctx context.Context, id string) (*models.HistoryEntry, error) {
	query := `
		SELECT id, resource_kind, resource_key, action, before_json, after_json, reason,
		       actor_id, actor_role, version_before, version_after, created_at
		FROM history_entries
		WHERE id = ?
	`

	rows, err := t.q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query history entry %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query history entry %s: %w", id, err)
		}
		return nil, fmt.Errorf("history entry %s: %w", id, ErrNotFound)
	}
	return scanHistoryEntry(rows)
}

// Commit writes the new record state only if the stored version still equals
// expectedVersion, then appends the history entry
func (t *sqliteDocumentTx) Commit(ctx context.Context, doc Document, expectedVersion int64, entry models.HistoryEntry) error {
	query := `
		UPDATE records
		SET category = ?, status = ?, version = ?, body = ?, updated_by = ?, updated_at = ?
		WHERE kind = ? AND key = ? AND version = ?
	`

	result, err := t.q.ExecContext(ctx, query,
		doc.Category, doc.Status, doc.Version, string(doc.Body), doc.UpdatedBy, doc.UpdatedAt.UTC(),
		string(doc.Ref.Kind), doc.Ref.Key, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", doc.Ref, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s at version %d: %w", doc.Ref, expectedVersion, ErrVersionConflict)
	}

	return t.appendHistory(ctx, entry)
}

func (t *sqliteDocumentTx) appendHistory(ctx context.Context, entry models.HistoryEntry) error {
	before, err := json.Marshal(entry.Before)
	if err != nil {
		return fmt.Errorf("failed to encode history snapshot: %w", err)
	}
	after, err := json.Marshal(entry.After)
	if err != nil {
		return fmt.Errorf("failed to encode history snapshot: %w", err)
	}

	query := `
		INSERT INTO history_entries (id, resource_kind, resource_key, action, before_json, after_json,
			reason, actor_id, actor_role, version_before, version_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = t.q.ExecContext(ctx, query,
		entry.ID, string(entry.ResourceKind), entry.ResourceKey, entry.Action,
		string(before), string(after), entry.Reason, entry.ActorID, string(entry.ActorRole),
		entry.VersionBefore, entry.VersionAfter, entry.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append history for %s/%s: %w", entry.ResourceKind, entry.ResourceKey, err)
	}

	return nil
}

func getDocument(ctx context.Context, q queryer, ref models.ResourceRef) (*Document, error) {
	query := `
		SELECT kind, key, category, status, version, body, updated_by, updated_at
		FROM records
		WHERE kind = ? AND key = ?
	`

	rows, err := q.QueryContext(ctx, query, string(ref.Kind), ref.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", ref, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", ref, err)
		}
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	return scanDocument(rows)
}

func scanDocument(rows *sql.Rows) (*Document, error) {
	var doc Document
	var kind, body string

	err := rows.Scan(
		&kind,
		&doc.Ref.Key,
		&doc.Category,
		&doc.Status,
		&doc.Version,
		&body,
		&doc.UpdatedBy,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	doc.Ref.Kind = models.ResourceKind(kind)
	doc.Body = json.RawMessage(body)
	return &doc, nil
}

func scanHistoryEntry(rows *sql.Rows) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	var kind, role, before, after string

	err := rows.Scan(
		&entry.ID,
		&kind,
		&entry.ResourceKey,
		&entry.Action,
		&before,
		&after,
		&entry.Reason,
		&entry.ActorID,
		&role,
		&entry.VersionBefore,
		&entry.VersionAfter,
		&entry.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	entry.ResourceKind = models.ResourceKind(kind)
	entry.ActorRole = models.Role(role)
	if err := json.Unmarshal([]byte(before), &entry.Before); err != nil {
		return nil, fmt.Errorf("failed to decode history entry %s: %w", entry.ID, err)
	}
	if err := json.Unmarshal([]byte(after), &entry.After); err != nil {
		return nil, fmt.Errorf("failed to decode history entry %s: %w", entry.ID, err)
	}
	return &entry, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
