package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/lifecycle"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/redact"
	"github.com/blogem/admin-console/repositories"
	"github.com/blogem/admin-console/validation"
)

// SeedSet is the content of a seed file
type SeedSet struct {
	Settings []models.Setting `yaml:"settings"`
	Reports  []models.Report  `yaml:"reports"`
	Reviews  []models.Review  `yaml:"reviews"`
	Jobs     []models.Job     `yaml:"jobs"`
}

// SeedResult counts what an import did
type SeedResult struct {
	Created int
	Skipped int
}

// SeedService creates records out-of-band, outside the mutation pipeline
type SeedService interface {
	Import(ctx context.Context, actorID string, set SeedSet) (*SeedResult, error)
}

type seedService struct {
	store repositories.DocumentStore
}

// NewSeedService creates a new seed service
func NewSeedService(store repositories.DocumentStore) SeedService {
	return &seedService{store: store}
}

// ParseSeed reads a YAML seed file
func ParseSeed(r io.Reader) (SeedSet, error) {
	var set SeedSet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil && !errors.Is(err, io.EOF) {
		return SeedSet{}, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return set, nil
}

// Import creates each record at version 1 with a create history entry.
// Records whose key already exists are skipped.
func (s *seedService) Import(ctx context.Context, actorID string, set SeedSet) (*SeedResult, error) {
	result := &SeedResult{}

	for i := range set.Settings {
		setting := &set.Settings[i]
		if !validation.IsKnownType(setting.ValueType) {
			return result, apperr.Newf(apperr.CodeValidation, "setting %q has unknown value type %q", setting.Key, setting.ValueType)
		}
		value, err := validation.ValidateSetting(setting, setting.Value)
		if err != nil {
			return result, fmt.Errorf("setting %q: %w", setting.Key, err)
		}
		setting.Value = value
		snapshot := models.Snapshot{"value": redact.Value(setting.Sensitive, value)}
		if err := s.create(ctx, actorID, result, setting.Ref(), setting, setting.Category, "", snapshot); err != nil {
			return result, err
		}
	}

	for i := range set.Reports {
		report := &set.Reports[i]
		if err := knownStatus(report.Ref(), string(report.Status)); err != nil {
			return result, err
		}
		if err := s.create(ctx, actorID, result, report.Ref(), report, report.Category, string(report.Status), report.Snapshot()); err != nil {
			return result, err
		}
	}

	for i := range set.Reviews {
		review := &set.Reviews[i]
		if err := knownStatus(review.Ref(), string(review.Status)); err != nil {
			return result, err
		}
		if err := s.create(ctx, actorID, result, review.Ref(), review, review.Category, string(review.Status), review.Snapshot()); err != nil {
			return result, err
		}
	}

	for i := range set.Jobs {
		job := &set.Jobs[i]
		if err := knownStatus(job.Ref(), string(job.Status)); err != nil {
			return result, err
		}
		if err := s.create(ctx, actorID, result, job.Ref(), job, job.Category, string(job.Status), job.Snapshot()); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (s *seedService) create(
	ctx context.Context,
	actorID string,
	result *SeedResult,
	ref models.ResourceRef,
	rec record,
	category, status string,
	snapshot models.Snapshot,
) error {
	if ref.Key == "" {
		return apperr.Newf(apperr.CodeValidation, "%s without key", ref.Kind)
	}

	now := timeNow().UTC()
	rec.Stamp(1, actorID, now)
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ref, err)
	}

	doc := repositories.Document{
		Ref:       ref,
		Category:  category,
		Status:    status,
		Version:   1,
		Body:      body,
		UpdatedBy: actorID,
		UpdatedAt: now,
	}
	entry := models.HistoryEntry{
		ID:            newID(),
		ResourceKind:  ref.Kind,
		ResourceKey:   ref.Key,
		Action:        models.ActionCreate,
		Before:        models.Snapshot{},
		After:         redact.Snapshot(snapshot),
		Reason:        "seeded",
		ActorID:       actorID,
		ActorRole:     models.RoleSuperAdmin,
		VersionBefore: 0,
		VersionAfter:  1,
		Timestamp:     now,
	}

	err = s.store.Insert(ctx, doc, entry)
	switch {
	case errors.Is(err, repositories.ErrAlreadyExists):
		slog.Info("seed record already exists, skipping", "resource", ref.String())
		result.Skipped++
		return nil
	case err != nil:
		return fmt.Errorf("failed to seed %s: %w", ref, err)
	}

	result.Created++
	return nil
}

func knownStatus(ref models.ResourceRef, status string) error {
	if !lifecycle.IsKnownStatus(ref.Kind, status) {
		return apperr.Newf(apperr.CodeValidation, "%s has unknown status %q", ref, status)
	}
	return nil
}
