package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
)

func TestAllowedNext(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"in_review", "resolved_action_taken", "resolved_no_action", "dismissed"},
		AllowedNext(models.KindReport, "open"))
	assert.Empty(t, AllowedNext(models.KindReport, "dismissed"))
	assert.Empty(t, AllowedNext(models.KindReport, "bogus"))
	assert.Empty(t, AllowedNext(models.KindSetting, "open"))

	// Callers cannot mutate the table through the returned slice
	next := AllowedNext(models.KindJob, "queued")
	next[0] = "succeeded"
	assert.Equal(t, []string{"running", "cancelled"}, AllowedNext(models.KindJob, "queued"))
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		kind     models.ResourceKind
		from, to string
		wantCode apperr.Code
	}{
		{models.KindReport, "open", "in_review", ""},
		{models.KindReport, "in_review", "dismissed", ""},
		{models.KindReport, "open", "open", apperr.CodeConflict},
		{models.KindReport, "dismissed", "open", apperr.CodeConflict},
		{models.KindReport, "open", "closed", apperr.CodeValidation},
		{models.KindReport, "weird", "open", apperr.CodeInternal},
		{models.KindReview, "pending", "approved", ""},
		{models.KindReview, "rejected", "hidden", apperr.CodeConflict},
		{models.KindJob, "succeeded", "queued", apperr.CodeConflict},
		{models.KindJob, "failed", "queued", ""},
		{models.KindSetting, "a", "b", apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+":"+tt.from+"->"+tt.to, func(t *testing.T) {
			err := CheckTransition(tt.kind, tt.from, tt.to)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
		})
	}
}

// Every pair that is not a declared edge must be rejected
func TestUndeclaredEdgesRejected(t *testing.T) {
	for kind, table := range tables {
		for from, edges := range table {
			declared := map[string]bool{}
			for _, e := range edges {
				declared[e] = true
			}
			for to := range table {
				err := CheckTransition(kind, from, to)
				if declared[to] {
					assert.NoError(t, err, "%s %s->%s", kind, from, to)
				} else {
					assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err), "%s %s->%s", kind, from, to)
				}
			}
		}
	}
}

func TestSameStatusMessage(t *testing.T) {
	err := CheckTransition(models.KindReview, "approved", "approved")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in status")
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.KindJob, "succeeded"))
	assert.False(t, IsTerminal(models.KindJob, "failed"))
	assert.False(t, IsTerminal(models.KindJob, "nope"))
}

func TestCheckRetry(t *testing.T) {
	err := CheckRetry(&models.Job{Status: models.JobFailed, RetryCount: 3, MaxRetries: 3})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "retry limit reached")

	err = CheckRetry(&models.Job{Status: models.JobRunning, RetryCount: 0, MaxRetries: 3})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))

	assert.NoError(t, CheckRetry(&models.Job{Status: models.JobCancelled, RetryCount: 1, MaxRetries: 3}))
}

func TestCheckCancel(t *testing.T) {
	assert.NoError(t, CheckCancel(&models.Job{Status: models.JobQueued}))
	assert.NoError(t, CheckCancel(&models.Job{Status: models.JobRunning}))
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(CheckCancel(&models.Job{Status: models.JobSucceeded})))
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(CheckCancel(&models.Job{Status: models.JobCancelled})))
}

func TestIsReportOutcome(t *testing.T) {
	assert.True(t, IsReportOutcome("dismissed"))
	assert.False(t, IsReportOutcome("in_review"))
}

func TestTerminalStatusRejectsAnyTarget(t *testing.T) {
	for _, to := range []string{"open", "in_review", "resolved_no_action", "closed"} {
		err := CheckTransition(models.KindReport, "dismissed", to)
		assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err), to)
	}
}
