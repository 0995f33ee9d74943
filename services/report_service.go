package services

import (
	"context"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/lifecycle"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/repositories"
)

// ReportService interface defines report moderation business logic
type ReportService interface {
	ListReports(ctx context.Context, actor models.Actor, filter models.ListFilter) ([]models.Report, error)
	GetReport(ctx context.Context, actor models.Actor, key string) (*models.Report, error)
	GetHistory(ctx context.Context, actor models.Actor, key string) ([]models.HistoryEntry, error)
	Assign(ctx context.Context, actor models.Actor, key string, req models.AssignRequest) (*MutationOutcome[models.Report], error)
	ChangeStatus(ctx context.Context, actor models.Actor, key string, req models.ChangeStatusRequest) (*MutationOutcome[models.Report], error)
	Resolve(ctx context.Context, actor models.Actor, key string, req models.ResolveRequest) (*MutationOutcome[models.Report], error)
}

// reportService implements ReportService interface
type reportService struct {
	gate    *access.Gate
	store   repositories.DocumentStore
	mutator *mutator
}

// NewReportService creates a new report service
func NewReportService(gate *access.Gate, store repositories.DocumentStore, audit AuditService, reasonMinLength int) ReportService {
	return &reportService{
		gate:    gate,
		store:   store,
		mutator: newMutator(gate, store, audit, reasonMinLength),
	}
}

// ListReports retrieves reports matching filter
func (s *reportService) ListReports(ctx context.Context, actor models.Actor, filter models.ListFilter) ([]models.Report, error) {
	if err := authorize(s.gate, actor, access.ActionView); err != nil {
		return nil, err
	}
	return listDocuments[models.Report](ctx, s.store, models.KindReport, filter)
}

// GetReport retrieves one report
func (s *reportService) GetReport(ctx context.Context, actor models.Actor, key string) (*models.Report, error) {
	if err := authorize(s.gate, actor, access.ActionView); err != nil {
		return nil, err
	}
	return loadDocument[models.Report](ctx, s.store, reportRef(key))
}

// GetHistory retrieves the change history of a report, oldest first
func (s *reportService) GetHistory(ctx context.Context, actor models.Actor, key string) ([]models.HistoryEntry, error) {
	return history(ctx, s.gate, s.store, actor, reportRef(key))
}

// Assign hands a report to an administrator. An open report moves to in_review.
func (s *reportService) Assign(ctx context.Context, actor models.Actor, key string, req models.AssignRequest) (*MutationOutcome[models.Report], error) {
	return s.control(ctx, actor, key, access.ActionAssign, req.ControlRequest,
		func(report *models.Report) (map[string]any, error) {
			if lifecycle.IsTerminal(models.KindReport, string(report.Status)) {
				return nil, apperr.Newf(apperr.CodeConflict, "report in terminal status %q cannot be assigned", report.Status)
			}
			if report.AssigneeID == req.AssigneeID {
				return nil, apperr.Newf(apperr.CodeConflict, "report is already assigned to %q", req.AssigneeID)
			}

			if report.Status == models.ReportOpen {
				if err := lifecycle.CheckTransition(models.KindReport, string(report.Status), string(models.ReportInReview)); err != nil {
					return nil, err
				}
				report.Status = models.ReportInReview
			}

			previous := report.AssigneeID
			report.AssigneeID = req.AssigneeID
			return map[string]any{
				"previous_assignee_id": previous,
				"assignee_id":          req.AssigneeID,
			}, nil
		})
}

// ChangeStatus moves a report along a declared edge of its transition table
func (s *reportService) ChangeStatus(ctx context.Context, actor models.Actor, key string, req models.ChangeStatusRequest) (*MutationOutcome[models.Report], error) {
	return s.control(ctx, actor, key, access.ActionChangeStatus, req.ControlRequest,
		func(report *models.Report) (map[string]any, error) {
			if err := lifecycle.CheckTransition(models.KindReport, string(report.Status), req.Status); err != nil {
				return nil, err
			}
			s.moveTo(report, models.ReportStatus(req.Status), actor)
			return nil, nil
		})
}

// Resolve closes a report with one of the resolution outcomes
func (s *reportService) Resolve(ctx context.Context, actor models.Actor, key string, req models.ResolveRequest) (*MutationOutcome[models.Report], error) {
	return s.control(ctx, actor, key, access.ActionResolve, req.ControlRequest,
		func(report *models.Report) (map[string]any, error) {
			if !lifecycle.IsReportOutcome(req.Outcome) {
				return nil, apperr.Field(apperr.CodeValidation, "outcome",
					"outcome must be one of resolved_action_taken, resolved_no_action or dismissed")
			}
			if err := lifecycle.CheckTransition(models.KindReport, string(report.Status), req.Outcome); err != nil {
				return nil, err
			}
			s.moveTo(report, models.ReportStatus(req.Outcome), actor)
			report.ResolutionNote = req.Note
			return map[string]any{"outcome": req.Outcome}, nil
		})
}

// moveTo sets the status and the resolution stamp when status closes the report
func (s *reportService) moveTo(report *models.Report, status models.ReportStatus, actor models.Actor) {
	report.Status = status
	if lifecycle.IsReportOutcome(string(status)) {
		at := timeNow().UTC()
		report.ResolvedBy = actor.ID
		report.ResolvedAt = &at
	}
}

// control runs a report action after the shared optimistic checks
func (s *reportService) control(
	ctx context.Context,
	actor models.Actor,
	key string,
	capability access.Action,
	req models.ControlRequest,
	apply func(report *models.Report) (map[string]any, error),
) (*MutationOutcome[models.Report], error) {
	result, err := s.mutator.run(ctx, mutation{
		Ref:        reportRef(key),
		Capability: capability,
		Action:     string(capability),
		Actor:      actor,
		Reason:     req.Reason,
		Apply: func(ctx context.Context, tx repositories.DocumentTx, doc *repositories.Document) (*change, error) {
			report, err := decodeDocument[models.Report](doc)
			if err != nil {
				return nil, err
			}
			if err := checkVersion(doc.Version, req.ExpectedVersion); err != nil {
				return nil, err
			}
			if err := checkStatus(string(report.Status), req.ExpectedStatus); err != nil {
				return nil, err
			}

			before := report.Snapshot()
			metadata, err := apply(report)
			if err != nil {
				return nil, err
			}

			return &change{
				Record:   report,
				Category: report.Category,
				Status:   string(report.Status),
				Before:   before,
				After:    report.Snapshot(),
				Metadata: metadata,
			}, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return &MutationOutcome[models.Report]{Record: *result.Record.(*models.Report), History: result.History}, nil
}

func reportRef(key string) models.ResourceRef {
	return models.ResourceRef{Kind: models.KindReport, Key: key}
}
