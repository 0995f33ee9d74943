package services

import (
	"github.com/blogem/admin-console/apperr"
)

// checkVersion fails when the caller's view of the record is stale. A nil
// expectation skips the check.
func checkVersion(current int64, expected *int64) error {
	if expected == nil {
		return nil
	}
	if *expected != current {
		return apperr.Newf(apperr.CodeConflict,
			"record was modified (expected version %d, current version %d); refresh and try again",
			*expected, current)
	}
	return nil
}

// checkStatus fails when the live status no longer matches what the caller
// observed. A nil expectation skips the check.
func checkStatus(current string, expected *string) error {
	if expected == nil {
		return nil
	}
	if *expected != current {
		return apperr.Newf(apperr.CodeConflict,
			"status changed (expected %q, current %q); refresh and try again",
			*expected, current)
	}
	return nil
}
