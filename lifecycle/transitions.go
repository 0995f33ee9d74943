// Package lifecycle declares which status changes each entity kind allows,
// plus the eligibility predicates layered on top for job control.
package lifecycle

import (
	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
)

// Table maps a current status to the statuses it may move to
type Table map[string][]string

var tables = map[models.ResourceKind]Table{
	models.KindReport: {
		string(models.ReportOpen): {
			string(models.ReportInReview),
			string(models.ReportResolvedActionTaken),
			string(models.ReportResolvedNoAction),
			string(models.ReportDismissed),
		},
		string(models.ReportInReview): {
			string(models.ReportOpen),
			string(models.ReportResolvedActionTaken),
			string(models.ReportResolvedNoAction),
			string(models.ReportDismissed),
		},
		string(models.ReportResolvedActionTaken): nil,
		string(models.ReportResolvedNoAction):    nil,
		string(models.ReportDismissed):           nil,
	},
	models.KindReview: {
		string(models.ReviewPending): {
			string(models.ReviewApproved),
			string(models.ReviewRejected),
			string(models.ReviewFlagged),
			string(models.ReviewHidden),
		},
		string(models.ReviewApproved): {string(models.ReviewFlagged), string(models.ReviewHidden)},
		string(models.ReviewFlagged): {
			string(models.ReviewApproved),
			string(models.ReviewRejected),
			string(models.ReviewHidden),
		},
		string(models.ReviewRejected): {string(models.ReviewApproved)},
		string(models.ReviewHidden):   {string(models.ReviewApproved)},
	},
	models.KindJob: {
		string(models.JobQueued):    {string(models.JobRunning), string(models.JobCancelled)},
		string(models.JobRunning):   {string(models.JobSucceeded), string(models.JobFailed), string(models.JobCancelled)},
		string(models.JobFailed):    {string(models.JobQueued)},
		string(models.JobCancelled): {string(models.JobQueued)},
		string(models.JobSucceeded): nil,
	},
}

// AllowedNext returns the statuses reachable from current. Unknown kinds or
// statuses have no outgoing edges.
func AllowedNext(kind models.ResourceKind, current string) []string {
	next := tables[kind][current]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// IsKnownStatus reports whether status belongs to kind's enumeration
func IsKnownStatus(kind models.ResourceKind, status string) bool {
	_, ok := tables[kind][status]
	return ok
}

// IsTerminal reports whether status has no outgoing edges
func IsTerminal(kind models.ResourceKind, status string) bool {
	return IsKnownStatus(kind, status) && len(tables[kind][status]) == 0
}

// CheckTransition verifies that current may move to next.
//
// An unknown current status means the stored record is corrupt. A same-status
// request, a terminal current status or an undeclared edge conflicts with the
// record's present state. An unknown target is a validation error.
func CheckTransition(kind models.ResourceKind, current, next string) error {
	if _, ok := tables[kind]; !ok {
		return apperr.Newf(apperr.CodeInternal, "no transition table for kind %q", kind)
	}
	if !IsKnownStatus(kind, current) {
		return apperr.Newf(apperr.CodeInternal, "stored %s has unknown status %q", kind, current)
	}
	if current == next {
		return apperr.Newf(apperr.CodeConflict, "%s is already in status %q; refresh and try again", kind, current)
	}
	if len(tables[kind][current]) == 0 {
		return apperr.Newf(apperr.CodeConflict, "%s is in terminal status %q; refresh and try again", kind, current)
	}
	if !IsKnownStatus(kind, next) {
		return apperr.Field(apperr.CodeValidation, "status", "unknown status \""+next+"\"")
	}
	for _, allowed := range tables[kind][current] {
		if allowed == next {
			return nil
		}
	}
	return apperr.Newf(apperr.CodeConflict, "%s cannot move from %q to %q; refresh and try again", kind, current, next)
}
