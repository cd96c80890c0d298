// Package services – CandidateService
//
// This file implements the candidate identity write path. Fingerprint
// maintenance is explicit: creation and identity updates recompute the
// digest inline with the field write, so the stored fingerprint can never
// lag the fields it derives from. No trigger or background job is involved
// in keeping a live row consistent; the batch refresh exists only for
// legacy rows and algorithm changes.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ansariamann/hr-system-sub002/internal/domain"
	"github.com/ansariamann/hr-system-sub002/internal/identity"
	"github.com/ansariamann/hr-system-sub002/internal/repo"
)

// CandidateService owns candidate creation and identity updates. It holds
// only dependency references and is safe for concurrent use.
type CandidateService struct {
	DB *gorm.DB
}

// NewCandidateService constructs a CandidateService.
func NewCandidateService(db *gorm.DB) *CandidateService {
	return &CandidateService{DB: db}
}

// Create stores a new candidate with its identity fingerprint computed from
// the given fields. Name is required; email and phone may be empty.
func (s *CandidateService) Create(ctx context.Context, tenantID, name, email, phone string) (*domain.Candidate, error) {
	tr := otel.Tracer("services/CandidateService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCandidateData)
	}

	fp := identity.Fingerprint(name, email, phone)
	c, err := repo.CreateCandidate(ctx, s.DB, tenantID, name, email, phone, fp)
	if err != nil {
		return nil, storeErr(err)
	}
	log.Info().
		Str("tenant_id", tenantID).
		Str("candidate_id", c.ID).
		Msg("candidate created")
	return c, nil
}

// Get fetches a candidate within the tenant.
func (s *CandidateService) Get(ctx context.Context, tenantID, candidateID string) (*domain.Candidate, error) {
	c, err := repo.GetCandidate(ctx, s.DB, candidateID, tenantID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, storeErr(err)
	}
	return c, nil
}

// UpdateIdentity replaces a candidate's identity fields and writes the
// recomputed fingerprint in the same update. The fields and the digest
// always move together.
func (s *CandidateService) UpdateIdentity(ctx context.Context, tenantID, candidateID, name, email, phone string) (*domain.Candidate, error) {
	tr := otel.Tracer("services/CandidateService")
	ctx, span := tr.Start(ctx, "UpdateIdentity",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.String("candidate.id", candidateID),
		),
	)
	defer span.End()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCandidateData)
	}

	fp := identity.Fingerprint(name, email, phone)
	err := repo.UpdateCandidateIdentity(ctx, s.DB, candidateID, tenantID, name, email, phone, fp)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, storeErr(err)
	}

	c, err := repo.GetCandidate(ctx, s.DB, candidateID, tenantID)
	if err != nil {
		return nil, storeErr(err)
	}
	log.Info().
		Str("tenant_id", tenantID).
		Str("candidate_id", candidateID).
		Msg("candidate identity updated")
	return c, nil
}
