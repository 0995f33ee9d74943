package services

import (
	"context"
	"errors"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/redact"
	"github.com/blogem/admin-console/repositories"
	"github.com/blogem/admin-console/validation"
)

// SettingService interface defines configuration management business logic
type SettingService interface {
	ListSettings(ctx context.Context, actor models.Actor, filter models.ListFilter) ([]models.Setting, error)
	GetSetting(ctx context.Context, actor models.Actor, key string) (*models.Setting, error)
	GetHistory(ctx context.Context, actor models.Actor, key string) ([]models.HistoryEntry, error)
	UpdateValue(ctx context.Context, actor models.Actor, key string, req models.UpdateValueRequest) (*MutationOutcome[models.Setting], error)
	Rollback(ctx context.Context, actor models.Actor, key string, req models.RollbackRequest) (*MutationOutcome[models.Setting], error)
}

// settingService implements SettingService interface
type settingService struct {
	gate    *access.Gate
	store   repositories.DocumentStore
	mutator *mutator
}

// NewSettingService creates a new setting service
func NewSettingService(gate *access.Gate, store repositories.DocumentStore, audit AuditService, reasonMinLength int) SettingService {
	return &settingService{
		gate:    gate,
		store:   store,
		mutator: newMutator(gate, store, audit, reasonMinLength),
	}
}

// ListSettings retrieves settings, masking sensitive values the actor may not see
func (s *settingService) ListSettings(ctx context.Context, actor models.Actor, filter models.ListFilter) ([]models.Setting, error) {
	if err := authorize(s.gate, actor, access.ActionView); err != nil {
		return nil, err
	}

	settings, err := listDocuments[models.Setting](ctx, s.store, models.KindSetting, filter)
	if err != nil {
		return nil, err
	}
	for i := range settings {
		s.mask(actor, &settings[i])
	}
	return settings, nil
}

// GetSetting retrieves one setting
func (s *settingService) GetSetting(ctx context.Context, actor models.Actor, key string) (*models.Setting, error) {
	if err := authorize(s.gate, actor, access.ActionView); err != nil {
		return nil, err
	}

	setting, err := loadDocument[models.Setting](ctx, s.store, settingRef(key))
	if err != nil {
		return nil, err
	}
	s.mask(actor, setting)
	return setting, nil
}

// GetHistory retrieves the change history of a setting, oldest first
func (s *settingService) GetHistory(ctx context.Context, actor models.Actor, key string) ([]models.HistoryEntry, error) {
	return history(ctx, s.gate, s.store, actor, settingRef(key))
}

// UpdateValue replaces a setting's value. The checks run in order: editable,
// value validation, expected version, then the no-op guard.
func (s *settingService) UpdateValue(ctx context.Context, actor models.Actor, key string, req models.UpdateValueRequest) (*MutationOutcome[models.Setting], error) {
	result, err := s.mutator.run(ctx, mutation{
		Ref:        settingRef(key),
		Capability: access.ActionUpdate,
		Action:     models.ActionUpdate,
		Actor:      actor,
		Reason:     req.Reason,
		Apply: func(ctx context.Context, tx repositories.DocumentTx, doc *repositories.Document) (*change, error) {
			setting, err := decodeDocument[models.Setting](doc)
			if err != nil {
				return nil, err
			}
			if !setting.Editable {
				return nil, apperr.New(apperr.CodeForbidden, "setting is read-only")
			}

			value, err := validation.ValidateSetting(setting, req.Value)
			if err != nil {
				return nil, err
			}
			if err := checkVersion(doc.Version, req.ExpectedVersion); err != nil {
				return nil, err
			}
			if models.ValuesEqual(setting.Value, value) {
				return nil, apperr.New(apperr.CodeConflict, "value already matches the current value")
			}

			return setValue(setting, value, nil), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return s.outcome(actor, result), nil
}

// Rollback restores the value recorded by a history entry of the same setting.
// The restore is itself a new version with its own history entry.
func (s *settingService) Rollback(ctx context.Context, actor models.Actor, key string, req models.RollbackRequest) (*MutationOutcome[models.Setting], error) {
	ref := settingRef(key)
	result, err := s.mutator.run(ctx, mutation{
		Ref:        ref,
		Capability: access.ActionRollback,
		Action:     models.ActionRollback,
		Actor:      actor,
		Reason:     req.Reason,
		Apply: func(ctx context.Context, tx repositories.DocumentTx, doc *repositories.Document) (*change, error) {
			setting, err := decodeDocument[models.Setting](doc)
			if err != nil {
				return nil, err
			}
			if !setting.Editable {
				return nil, apperr.New(apperr.CodeForbidden, "setting is read-only")
			}

			entry, err := tx.HistoryEntry(ctx, req.HistoryEntryID)
			if errors.Is(err, repositories.ErrNotFound) || (err == nil && entry.Ref() != ref) {
				return nil, apperr.Newf(apperr.CodeNotFound, "history entry %q not found for %s", req.HistoryEntryID, ref)
			}
			if err != nil {
				return nil, internalError("failed to read history entry", err)
			}

			target, ok := entry.After["value"]
			if !ok {
				return nil, apperr.Field(apperr.CodeValidation, "history_entry_id", "history entry holds no value to restore")
			}
			if redact.ContainsMarker(target) {
				return nil, apperr.Field(apperr.CodeValidation, "history_entry_id", "history entry holds a redacted value and cannot be restored")
			}
			if models.ValuesEqual(setting.Value, target) {
				return nil, apperr.New(apperr.CodeConflict, "value already matches the selected history entry")
			}

			value, err := validation.ValidateSetting(setting, target)
			if err != nil {
				return nil, err
			}
			if err := checkVersion(doc.Version, req.ExpectedVersion); err != nil {
				return nil, err
			}

			return setValue(setting, value, map[string]any{"rolled_back_to": entry.ID}), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return s.outcome(actor, result), nil
}

// setValue applies value and describes the change. Sensitive values are
// replaced by the marker in both snapshots.
func setValue(setting *models.Setting, value any, extra map[string]any) *change {
	before := models.Snapshot{"value": redact.Value(setting.Sensitive, setting.Value)}
	setting.Value = value
	after := models.Snapshot{"value": redact.Value(setting.Sensitive, setting.Value)}

	metadata := map[string]any{
		"value_type": string(setting.ValueType),
		"sensitive":  setting.Sensitive,
	}
	for k, v := range extra {
		metadata[k] = v
	}

	return &change{
		Record:   setting,
		Category: setting.Category,
		Before:   before,
		After:    after,
		Metadata: metadata,
	}
}

func (s *settingService) mask(actor models.Actor, setting *models.Setting) {
	if setting.Sensitive && !s.gate.Allow(actor.Role, access.ActionViewSensitive) {
		setting.Value = redact.Marker
	}
}

func (s *settingService) outcome(actor models.Actor, result *committed) *MutationOutcome[models.Setting] {
	setting := *result.Record.(*models.Setting)
	s.mask(actor, &setting)
	return &MutationOutcome[models.Setting]{Record: setting, History: result.History}
}

func settingRef(key string) models.ResourceRef {
	return models.ResourceRef{Kind: models.KindSetting, Key: key}
}
