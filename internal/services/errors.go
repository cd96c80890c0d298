// Package services implements the business logic of candidate identity
// resolution: duplicate detection, the candidate identity write path, and
// the application-creation workflow that consumes detection results.
// This file centralizes common service-level error values so that they can
// be consistently returned by service methods and checked by callers.
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrInvalidCandidateData is returned when required identity data is
	// missing or empty (currently: the name). It is raised before any store
	// access and is never silently defaulted.
	ErrInvalidCandidateData = errors.New("invalid candidate data")

	// ErrStoreUnavailable indicates the candidate store could not serve a
	// request. The services never retry internally; retry policy belongs to
	// the caller or the backfill coordinator.
	ErrStoreUnavailable = errors.New("candidate store unavailable")

	// ErrCandidateNotFound indicates the requested candidate does not exist
	// within the tenant.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrApplicationNotFound indicates the requested application does not
	// exist within the tenant.
	ErrApplicationNotFound = errors.New("application not found")
)

// storeErr classifies a repository error: not-found passes through untouched
// (callers map it to a domain sentinel), anything else means the store could
// not serve the request.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
