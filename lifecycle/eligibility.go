package lifecycle

import (
	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
)

// CheckRetry reports whether a job may be requeued. The status gate is a
// conflict with the live state; the retry budget is a validation failure.
func CheckRetry(job *models.Job) error {
	if job.Status != models.JobFailed && job.Status != models.JobCancelled {
		return apperr.Newf(apperr.CodeConflict, "job in status %q cannot be retried; refresh and try again", job.Status)
	}
	if job.RetryCount >= job.MaxRetries {
		return apperr.Newf(apperr.CodeValidation, "retry limit reached (%d of %d)", job.RetryCount, job.MaxRetries)
	}
	return CheckTransition(models.KindJob, string(job.Status), string(models.JobQueued))
}

// CheckCancel reports whether a job may be cancelled
func CheckCancel(job *models.Job) error {
	if job.Status != models.JobQueued && job.Status != models.JobRunning {
		return apperr.Newf(apperr.CodeConflict, "job in status %q cannot be cancelled; refresh and try again", job.Status)
	}
	return CheckTransition(models.KindJob, string(job.Status), string(models.JobCancelled))
}

// IsReportOutcome reports whether status closes a report
func IsReportOutcome(status string) bool {
	for _, o := range models.ReportOutcomes {
		if string(o) == status {
			return true
		}
	}
	return false
}
