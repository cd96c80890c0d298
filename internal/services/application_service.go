// Package services – ApplicationService
//
// This file implements the application creation workflow, the consumer of
// duplicate detection. A new application triggers detection for its
// candidate's identity data (excluding the candidate itself) and persists
// the flag decision on the application row. The workflow progression gate
// reads that flag back: a flagged application, or one whose candidate has
// LEFT status, may not advance until reviewed.
//
// Detection failures fail open: an application is never rejected because
// the duplicate check could not run. The error is logged and the
// application is stored unflagged; the batch re-evaluation path can catch
// up later.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ansariamann/hr-system-sub002/internal/domain"
	"github.com/ansariamann/hr-system-sub002/internal/observability"
	"github.com/ansariamann/hr-system-sub002/internal/repo"
)

// ApplicationService creates applications and routes duplicate-detection
// output onto their review flags.
type ApplicationService struct {
	DB        *gorm.DB
	Detection *DuplicateService
}

// NewApplicationService constructs an ApplicationService. A nil detection
// service gets a default one over the same DB handle.
func NewApplicationService(db *gorm.DB, detection *DuplicateService) *ApplicationService {
	if detection == nil {
		detection = NewDuplicateService(db, nil)
	}
	return &ApplicationService{DB: db, Detection: detection}
}

// Create stores a new application for the candidate, running duplicate
// detection on the candidate's identity first. When detection reports
// duplicates the application is flagged with the detection reason. The
// candidate itself is excluded from matching.
//
// Invalid candidate references surface as ErrCandidateNotFound. A detection
// failure does not abort creation: the application is stored unflagged and
// the failure is logged.
func (s *ApplicationService) Create(ctx context.Context, tenantID, candidateID, jobTitle string) (*domain.Application, error) {
	tr := otel.Tracer("services/ApplicationService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("candidate.id", candidateID),
		),
	)
	defer span.End()

	c, err := repo.GetCandidate(ctx, s.DB, candidateID, tenantID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, storeErr(err)
	}

	flagged := false
	reason := ""
	res, err := s.Detection.DetectDuplicates(ctx, tenantID, CandidateData{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		ExcludeID: c.ID,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("tenant_id", tenantID).
			Str("candidate_id", candidateID).
			Msg("duplicate detection failed; creating application unflagged")
	} else if res.ShouldFlag {
		flagged = true
		reason = res.FlagReason
	}

	a, err := repo.CreateApplication(ctx, s.DB, tenantID, candidateID, jobTitle, flagged, reason)
	if err != nil {
		return nil, storeErr(err)
	}
	if flagged {
		observability.ApplicationFlagged()
		log.Info().
			Str("tenant_id", tenantID).
			Str("application_id", a.ID).
			Str("reason", reason).
			Msg("application flagged for duplicate review")
	}
	span.SetAttributes(attribute.Bool("flagged", flagged))
	return a, nil
}

// Get fetches an application within the tenant.
func (s *ApplicationService) Get(ctx context.Context, tenantID, applicationID string) (*domain.Application, error) {
	a, err := repo.GetApplication(ctx, s.DB, applicationID, tenantID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, storeErr(err)
	}
	return a, nil
}

// CheckProgressionAllowed reports whether an application may advance in the
// hiring workflow. Progression is blocked while the application is flagged
// for duplicate review, and for candidates with LEFT status. The returned
// reason is empty when progression is allowed.
func (s *ApplicationService) CheckProgressionAllowed(ctx context.Context, tenantID, applicationID string) (bool, string, error) {
	a, err := s.Get(ctx, tenantID, applicationID)
	if err != nil {
		return false, "", err
	}
	if a.FlaggedForReview {
		return false, fmt.Sprintf("application flagged for review: %s", a.FlagReason), nil
	}
	c, err := repo.GetCandidate(ctx, s.DB, a.CandidateID, tenantID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, "", ErrCandidateNotFound
		}
		return false, "", storeErr(err)
	}
	if c.Status == domain.StatusLeft {
		return false, "candidate has LEFT status - workflow progression blocked", nil
	}
	return true, "", nil
}

// Reevaluate reruns duplicate detection for an existing application's
// candidate and flags the application if duplicates are found now. Unlike
// Create, a detection failure here is surfaced: the caller asked for a
// fresh verdict and silence would be misleading.
func (s *ApplicationService) Reevaluate(ctx context.Context, tenantID, applicationID string) (*DetectionResult, error) {
	a, err := s.Get(ctx, tenantID, applicationID)
	if err != nil {
		return nil, err
	}
	c, err := repo.GetCandidate(ctx, s.DB, a.CandidateID, tenantID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, storeErr(err)
	}

	res, err := s.Detection.DetectDuplicates(ctx, tenantID, CandidateData{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		ExcludeID: c.ID,
	})
	if err != nil {
		return nil, err
	}
	if res.ShouldFlag {
		if err := repo.FlagApplication(ctx, s.DB, applicationID, tenantID, res.FlagReason); err != nil {
			return nil, storeErr(err)
		}
		observability.ApplicationFlagged()
	}
	return res, nil
}
