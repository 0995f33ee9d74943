package services

import (
	"context"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/lifecycle"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/repositories"
)

// ReviewService interface defines review moderation business logic
type ReviewService interface {
	ListReviews(ctx context.Context, actor models.Actor, filter models.ListFilter) ([]models.Review, error)
	GetReview(ctx context.Context, actor models.Actor, key string) (*models.Review, error)
	GetHistory(ctx context.Context, actor models.Actor, key string) ([]models.HistoryEntry, error)
	Moderate(ctx context.Context, actor models.Actor, key string, req models.ModerateRequest) (*MutationOutcome[models.Review], error)
}

type reviewService struct {
	gate    *access.Gate
	store   repositories.DocumentStore
	mutator *mutator
}

// NewReviewService creates a new review service
func NewReviewService(gate *access.Gate, store repositories.DocumentStore, audit AuditService, reasonMinLength int) ReviewService {
	return &reviewService{
		gate:    gate,
		store:   store,
		mutator: newMutator(gate, store, audit, reasonMinLength),
	}
}

func (s *reviewService) ListReviews(ctx context.Context, actor models.Actor, filter models.ListFilter) ([]models.Review, error) {
	if err := authorize(s.gate, actor, access.ActionView); err != nil {
		return nil, err
	}
	return listDocuments[models.Review](ctx, s.store, models.KindReview, filter)
}

func (s *reviewService) GetReview(ctx context.Context, actor models.Actor, key string) (*models.Review, error) {
	if err := authorize(s.gate, actor, access.ActionView); err != nil {
		return nil, err
	}
	return loadDocument[models.Review](ctx, s.store, reviewRef(key))
}

func (s *reviewService) GetHistory(ctx context.Context, actor models.Actor, key string) ([]models.HistoryEntry, error) {
	return history(ctx, s.gate, s.store, actor, reviewRef(key))
}

// Moderate moves a review to a target status and records who moderated it
func (s *reviewService) Moderate(ctx context.Context, actor models.Actor, key string, req models.ModerateRequest) (*MutationOutcome[models.Review], error) {
	result, err := s.mutator.run(ctx, mutation{
		Ref:        reviewRef(key),
		Capability: access.ActionModerate,
		Action:     string(access.ActionModerate),
		Actor:      actor,
		Reason:     req.Reason,
		Apply: func(ctx context.Context, tx repositories.DocumentTx, doc *repositories.Document) (*change, error) {
			review, err := decodeDocument[models.Review](doc)
			if err != nil {
				return nil, err
			}
			if err := checkVersion(doc.Version, req.ExpectedVersion); err != nil {
				return nil, err
			}
			if err := checkStatus(string(review.Status), req.ExpectedStatus); err != nil {
				return nil, err
			}
			if err := lifecycle.CheckTransition(models.KindReview, string(review.Status), req.Status); err != nil {
				return nil, err
			}

			before := review.Snapshot()
			at := timeNow().UTC()
			review.Status = models.ReviewStatus(req.Status)
			review.ModerationNote = req.Note
			review.ModeratedBy = actor.ID
			review.ModeratedAt = &at

			return &change{
				Record:   review,
				Category: review.Category,
				Status:   string(review.Status),
				Before:   before,
				After:    review.Snapshot(),
				Metadata: map[string]any{
					"author_id":  review.AuthorID,
					"subject_id": review.SubjectID,
				},
			}, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return &MutationOutcome[models.Review]{Record: *result.Record.(*models.Review), History: result.History}, nil
}

func reviewRef(key string) models.ResourceRef {
	return models.ResourceRef{Kind: models.KindReview, Key: key}
}
