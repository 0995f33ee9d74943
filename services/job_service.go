package services

import (
	"context"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/lifecycle"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/repositories"
)

// JobService interface defines background job control business logic
type JobService interface {
	ListJobs(ctx context.Context, actor models.Actor, filter models.ListFilter) ([]models.Job, error)
	GetJob(ctx context.Context, actor models.Actor, key string) (*models.Job, error)
	GetHistory(ctx context.Context, actor models.Actor, key string) ([]models.HistoryEntry, error)
	Retry(ctx context.Context, actor models.Actor, key string, req models.ControlRequest) (*MutationOutcome[models.Job], error)
	Cancel(ctx context.Context, actor models.Actor, key string, req models.ControlRequest) (*MutationOutcome[models.Job], error)
}

type jobService struct {
	gate    *access.Gate
	store   repositories.DocumentStore
	mutator *mutator
}

// NewJobService creates a new job service
func NewJobService(gate *access.Gate, store repositories.DocumentStore, audit AuditService, reasonMinLength int) JobService {
	return &jobService{
		gate:    gate,
		store:   store,
		mutator: newMutator(gate, store, audit, reasonMinLength),
	}
}

func (s *jobService) ListJobs(ctx context.Context, actor models.Actor, filter models.ListFilter) ([]models.Job, error) {
	if err := authorize(s.gate, actor, access.ActionView); err != nil {
		return nil, err
	}
	return listDocuments[models.Job](ctx, s.store, models.KindJob, filter)
}

func (s *jobService) GetJob(ctx context.Context, actor models.Actor, key string) (*models.Job, error) {
	if err := authorize(s.gate, actor, access.ActionView); err != nil {
		return nil, err
	}
	return loadDocument[models.Job](ctx, s.store, jobRef(key))
}

func (s *jobService) GetHistory(ctx context.Context, actor models.Actor, key string) ([]models.HistoryEntry, error) {
	return history(ctx, s.gate, s.store, actor, jobRef(key))
}

// Retry requeues a failed or cancelled job while its retry budget lasts
func (s *jobService) Retry(ctx context.Context, actor models.Actor, key string, req models.ControlRequest) (*MutationOutcome[models.Job], error) {
	return s.control(ctx, actor, key, access.ActionRetry, req, func(job *models.Job) error {
		if err := lifecycle.CheckRetry(job); err != nil {
			return err
		}
		job.Status = models.JobQueued
		job.RetryCount++
		job.LastError = ""
		return nil
	})
}

// Cancel stops a queued or running job
func (s *jobService) Cancel(ctx context.Context, actor models.Actor, key string, req models.ControlRequest) (*MutationOutcome[models.Job], error) {
	return s.control(ctx, actor, key, access.ActionCancel, req, func(job *models.Job) error {
		if err := lifecycle.CheckCancel(job); err != nil {
			return err
		}
		job.Status = models.JobCancelled
		return nil
	})
}

func (s *jobService) control(
	ctx context.Context,
	actor models.Actor,
	key string,
	capability access.Action,
	req models.ControlRequest,
	apply func(job *models.Job) error,
) (*MutationOutcome[models.Job], error) {
	result, err := s.mutator.run(ctx, mutation{
		Ref:        jobRef(key),
		Capability: capability,
		Action:     string(capability),
		Actor:      actor,
		Reason:     req.Reason,
		Apply: func(ctx context.Context, tx repositories.DocumentTx, doc *repositories.Document) (*change, error) {
			job, err := decodeDocument[models.Job](doc)
			if err != nil {
				return nil, err
			}
			if err := checkVersion(doc.Version, req.ExpectedVersion); err != nil {
				return nil, err
			}
			if err := checkStatus(string(job.Status), req.ExpectedStatus); err != nil {
				return nil, err
			}

			before := job.Snapshot()
			if err := apply(job); err != nil {
				return nil, err
			}

			// Input summaries are free-form; Emit scrubs secret-looking keys
			return &change{
				Record:   job,
				Category: job.Category,
				Status:   string(job.Status),
				Before:   before,
				After:    job.Snapshot(),
				Metadata: map[string]any{
					"job_type":      job.Type,
					"provider":      job.Provider,
					"input_summary": job.InputSummary,
				},
			}, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return &MutationOutcome[models.Job]{Record: *result.Record.(*models.Job), History: result.History}, nil
}

func jobRef(key string) models.ResourceRef {
	return models.ResourceRef{Kind: models.KindJob, Key: key}
}
