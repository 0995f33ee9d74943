package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/metrics"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/redact"
	"github.com/blogem/admin-console/repositories"
)

var timeNow = func() time.Time {
	return time.Now()
}

var tracer = otel.Tracer("github.com/blogem/admin-console/services")

// DefaultReasonMinLength is the shortest reason a mutation accepts
const DefaultReasonMinLength = 10

// record is implemented by every stored model
type record interface {
	Stamp(version int64, by string, at time.Time)
}

// change is what a mutation's apply step decided to write
type change struct {
	Record   record
	Category string
	Status   string
	Before   models.Snapshot
	After    models.Snapshot
	Metadata map[string]any // extra audit metadata
}

// applyFunc runs the entity-specific checks against the current stored state
// and returns the new state. Any error aborts the transaction.
type applyFunc func(ctx context.Context, tx repositories.DocumentTx, doc *repositories.Document) (*change, error)

// mutation describes one administrative intent
type mutation struct {
	Ref        models.ResourceRef
	Capability access.Action
	Action     string
	Actor      models.Actor
	Reason     string
	Apply      applyFunc
}

// MutationOutcome is the committed state of a record and the history entry
// that recorded the change
type MutationOutcome[T any] struct {
	Record  T                   `json:"record"`
	History models.HistoryEntry `json:"history"`
}

// committed is the internal result of a successful transaction
type committed struct {
	Document repositories.Document
	Record   record
	History  models.HistoryEntry
	Audit    models.AuditEntry
}

// mutator runs the shared mutation pipeline:
// gate, reason, atomic read-check-write with history, then audit.
type mutator struct {
	gate            *access.Gate
	store           repositories.DocumentStore
	audit           AuditService
	reasonMinLength int
}

func newMutator(gate *access.Gate, store repositories.DocumentStore, audit AuditService, reasonMinLength int) *mutator {
	if reasonMinLength <= 0 {
		reasonMinLength = DefaultReasonMinLength
	}
	return &mutator{
		gate:            gate,
		store:           store,
		audit:           audit,
		reasonMinLength: reasonMinLength,
	}
}

// run commits m and then emits its audit entry
func (mu *mutator) run(ctx context.Context, m mutation) (result *committed, err error) {
	start := timeNow()
	ctx, span := tracer.Start(ctx, "mutation."+m.Action, trace.WithAttributes(
		attribute.String("resource.kind", string(m.Ref.Kind)),
		attribute.String("resource.key", m.Ref.Key),
		attribute.String("actor.role", string(m.Actor.Role)),
	))
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = string(apperr.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		metrics.MutationsTotal.WithLabelValues(string(m.Ref.Kind), m.Action, outcome).Inc()
		metrics.MutationDuration.WithLabelValues(string(m.Ref.Kind), m.Action).Observe(timeNow().Sub(start).Seconds())
		span.End()
	}()

	result, err = mu.commit(ctx, m)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeInternal {
			slog.Error("mutation failed with an internal error",
				"resource", m.Ref.String(),
				"action", m.Action,
				"actor_id", m.Actor.ID,
				"error", err,
			)
		}
		return nil, err
	}

	mu.audit.Emit(ctx, &result.Audit)
	return result, nil
}

// commit performs the atomic part of the pipeline. Nothing is written unless
// every check passes, and the record and its history entry land together.
func (mu *mutator) commit(ctx context.Context, m mutation) (*committed, error) {
	if err := authorize(mu.gate, m.Actor, m.Capability); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(m.Reason)
	if utf8.RuneCountInString(reason) < mu.reasonMinLength {
		return nil, apperr.Field(apperr.CodeValidation, "reason",
			"reason must be at least "+strconv.Itoa(mu.reasonMinLength)+" characters")
	}

	var result *committed
	err := mu.store.RunInTx(ctx, func(tx repositories.DocumentTx) error {
		doc, err := tx.ReadForUpdate(ctx, m.Ref)
		if err != nil {
			return storageError(err, m.Ref)
		}

		ch, err := m.Apply(ctx, tx, doc)
		if err != nil {
			return err
		}

		now := timeNow().UTC()
		versionAfter := doc.Version + 1
		ch.Record.Stamp(versionAfter, m.Actor.ID, now)

		body, err := json.Marshal(ch.Record)
		if err != nil {
			return internalError("failed to encode "+m.Ref.String(), err)
		}

		next := repositories.Document{
			Ref:       m.Ref,
			Category:  ch.Category,
			Status:    ch.Status,
			Version:   versionAfter,
			Body:      body,
			UpdatedBy: m.Actor.ID,
			UpdatedAt: now,
		}

		entry := models.HistoryEntry{
			ID:            newID(),
			ResourceKind:  m.Ref.Kind,
			ResourceKey:   m.Ref.Key,
			Action:        m.Action,
			Before:        redact.Snapshot(ch.Before),
			After:         redact.Snapshot(ch.After),
			Reason:        reason,
			ActorID:       m.Actor.ID,
			ActorRole:     m.Actor.Role,
			VersionBefore: doc.Version,
			VersionAfter:  versionAfter,
			Timestamp:     now,
		}

		if err := tx.Commit(ctx, next, doc.Version, entry); err != nil {
			return storageError(err, m.Ref)
		}

		result = &committed{
			Document: next,
			Record:   ch.Record,
			History:  entry,
			Audit:    auditEntryFor(m, entry, ch.Metadata),
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, m.Ref)
	}

	return result, nil
}

// auditEntryFor builds the audit record of a committed history entry
func auditEntryFor(m mutation, entry models.HistoryEntry, extra map[string]any) models.AuditEntry {
	metadata := map[string]any{
		"history_entry_id": entry.ID,
		"version_before":   entry.VersionBefore,
		"version_after":    entry.VersionAfter,
		"before":           map[string]any(entry.Before),
		"after":            map[string]any(entry.After),
	}
	for k, v := range extra {
		metadata[k] = v
	}

	return models.AuditEntry{
		ID:           newID(),
		Timestamp:    entry.Timestamp,
		ActorID:      m.Actor.ID,
		ActorRole:    m.Actor.Role,
		Action:       string(m.Ref.Kind) + "." + m.Action,
		ResourceKind: m.Ref.Kind,
		ResourceID:   m.Ref.Key,
		Metadata:     metadata,
		Reason:       entry.Reason,
		IPAddress:    m.Actor.IPAddress,
		UserAgent:    m.Actor.UserAgent,
	}
}

// authorize applies the capability gate to an explicit actor
func authorize(gate *access.Gate, actor models.Actor, action access.Action) error {
	if !actor.Authenticated() {
		return apperr.ErrAuthRequired
	}
	if !gate.Allow(actor.Role, action) {
		return apperr.Newf(apperr.CodeForbidden, "role %q may not %s", actor.Role, action)
	}
	return nil
}

// storageError converts repository errors into coded errors
func storageError(err error, ref models.ResourceRef) error {
	var coded *apperr.Error
	switch {
	case errors.As(err, &coded):
		return coded
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.Newf(apperr.CodeNotFound, "%s %q not found", ref.Kind, ref.Key)
	case errors.Is(err, repositories.ErrVersionConflict):
		return apperr.Wrap(apperr.CodeConflict,
			"record was modified by someone else; refresh and try again", err)
	}
	return internalError("storage failure on "+ref.String(), err)
}

func internalError(message string, err error) error {
	return apperr.Wrap(apperr.CodeInternal, message, err)
}

// decodeDocument decodes a stored body into its model and stamps it with the
// document's version metadata
func decodeDocument[T any, P interface {
	*T
	record
}](doc *repositories.Document) (P, error) {
	p := P(new(T))
	if err := json.Unmarshal(doc.Body, p); err != nil {
		return nil, internalError("stored "+doc.Ref.String()+" is malformed", err)
	}
	p.Stamp(doc.Version, doc.UpdatedBy, doc.UpdatedAt)
	return p, nil
}

// loadDocument reads and decodes one record outside a transaction
func loadDocument[T any, P interface {
	*T
	record
}](ctx context.Context, store repositories.DocumentStore, ref models.ResourceRef) (P, error) {
	doc, err := store.Get(ctx, ref)
	if err != nil {
		return nil, storageError(err, ref)
	}
	return decodeDocument[T, P](doc)
}

// listDocuments reads and decodes every record of kind matching filter
func listDocuments[T any, P interface {
	*T
	record
}](ctx context.Context, store repositories.DocumentStore, kind models.ResourceKind, filter models.ListFilter) ([]T, error) {
	docs, err := store.List(ctx, kind, filter)
	if err != nil {
		return nil, internalError("failed to list "+string(kind)+" records", err)
	}

	out := make([]T, 0, len(docs))
	for i := range docs {
		p, err := decodeDocument[T, P](&docs[i])
		if err != nil {
			slog.Error("skipping malformed record", "resource", docs[i].Ref.String(), "error", err)
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// history reads a record's history after confirming the record exists
func history(ctx context.Context, gate *access.Gate, store repositories.DocumentStore, actor models.Actor, ref models.ResourceRef) ([]models.HistoryEntry, error) {
	if err := authorize(gate, actor, access.ActionView); err != nil {
		return nil, err
	}
	if _, err := store.Get(ctx, ref); err != nil {
		return nil, storageError(err, ref)
	}

	entries, err := store.History(ctx, ref)
	if err != nil {
		return nil, internalError("failed to read history of "+ref.String(), err)
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}
