// Package services – DuplicateService
//
// This file implements the DuplicateService, the decision core of candidate
// identity resolution. A detection call computes the identity fingerprint,
// tries an exact tenant-scoped fingerprint lookup, and falls back to a
// paged fuzzy scan through the similarity engine. The result says whether
// duplicates exist, whether the caller should flag the application for
// review, and why — the service itself never writes Application rows.
//
// It also owns the operational surfaces: the single and batch fingerprint
// refresh (explicit recomputation replacing trigger-level hash maintenance)
// and the read-only duplicate statistics report.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the tenant and aggregate outcome. Prometheus counters track detection
// outcomes and backfill row results.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ansariamann/hr-system-sub002/internal/domain"
	"github.com/ansariamann/hr-system-sub002/internal/identity"
	"github.com/ansariamann/hr-system-sub002/internal/match"
	"github.com/ansariamann/hr-system-sub002/internal/observability"
	"github.com/ansariamann/hr-system-sub002/internal/repo"
)

// exactMatchReason is the flag reason for fingerprint-level duplicates.
const exactMatchReason = "Exact match found by identity fingerprint."

// CandidateData is the identity tuple under evaluation. ExcludeID, when
// set, removes that stored candidate from consideration so a record is
// never matched against itself (used when re-evaluating an existing
// candidate).
type CandidateData struct {
	Name      string
	Email     string
	Phone     string
	ExcludeID string
}

// DuplicateMatch is the transient result of comparing the evaluated data
// against one stored candidate. It is never persisted.
type DuplicateMatch struct {
	// Candidate is the matched stored candidate.
	Candidate domain.Candidate
	// Score is the similarity in [0, 1]; 1.0 for fingerprint hits.
	Score float64
	// Type is EXACT for fingerprint hits or score-1.0 pairs, FUZZY otherwise.
	Type match.Type
	// MatchingFields lists the fields that individually matched, in
	// name/email/phone order.
	MatchingFields []string
}

// DetectionResult is the transient aggregate outcome of one detection
// call. Matches are ordered by descending score, ties broken by the
// earlier-created candidate. It is never persisted; callers re-derive it
// when re-evaluation is needed so stored state cannot drift from the
// matching logic.
type DetectionResult struct {
	HasDuplicates bool
	ShouldFlag    bool
	FlagReason    string
	Fingerprint   string
	Matches       []DuplicateMatch
}

// BatchStats reports the outcome of a batch fingerprint refresh. Per-row
// failures are counted in Errors and do not abort the batch.
type BatchStats struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// DuplicateStats is the read-only duplicate-detection report for a tenant.
type DuplicateStats struct {
	TotalCandidates        int64   `json:"total_candidates"`
	CandidatesWithHash     int64   `json:"candidates_with_hash"`
	CandidatesWithoutHash  int64   `json:"candidates_without_hash"`
	HashCoveragePercentage float64 `json:"hash_coverage_percentage"`
	FlaggedApplications    int64   `json:"flagged_applications"`
	LeftStatusCandidates   int64   `json:"left_status_candidates"`
}

// DuplicateService detects duplicate candidates and maintains their
// fingerprints. It holds only dependency references — no mutable state —
// so a single instance is safe for concurrent use across tenants.
type DuplicateService struct {
	// DB is the GORM handle used for store reads and fingerprint writes.
	DB *gorm.DB
	// Engine scores candidate pairs in the fuzzy scan.
	Engine *match.Engine

	// ScanPageSize bounds the rows fetched per page during the fuzzy scan.
	ScanPageSize int
	// MaxMatches terminates the fuzzy scan early once this many matches
	// have been collected (0 disables the cap). Callers with very large
	// tenants should additionally pre-filter or schedule detection
	// asynchronously; that is a deployment decision, not enforced here.
	MaxMatches int
}

// NewDuplicateService constructs a DuplicateService with default paging and
// a default engine when none is supplied.
func NewDuplicateService(db *gorm.DB, engine *match.Engine) *DuplicateService {
	if engine == nil {
		engine = match.NewEngine()
	}
	return &DuplicateService{
		DB:           db,
		Engine:       engine,
		ScanPageSize: 200,
		MaxMatches:   20,
	}
}

// DetectDuplicates evaluates candidate data against the tenant's stored
// candidates and returns the aggregate decision.
//
// Flow: validate → fingerprint → exact lookup → (on miss) paged fuzzy scan
// → rank → flag decision. If the context is cancelled mid-scan, whatever
// matches have accumulated are returned rather than failing. Malformed
// data fails fast with ErrInvalidCandidateData before any store access;
// store failures surface as ErrStoreUnavailable with no internal retry.
func (s *DuplicateService) DetectDuplicates(ctx context.Context, tenantID string, data CandidateData) (*DetectionResult, error) {
	tr := otel.Tracer("services/DuplicateService")
	ctx, span := tr.Start(ctx, "DetectDuplicates",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()
	start := time.Now()

	if strings.TrimSpace(data.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCandidateData)
	}

	fp := identity.Fingerprint(data.Name, data.Email, data.Phone)
	result := &DetectionResult{Fingerprint: fp}

	exact, err := repo.FindByFingerprint(ctx, s.DB, tenantID, fp)
	if err != nil {
		observability.ObserveDetection(observability.DetectionError, time.Since(start).Seconds())
		return nil, storeErr(err)
	}
	if data.ExcludeID != "" {
		exact = dropCandidate(exact, data.ExcludeID)
	}

	if len(exact) > 0 {
		fields := presentFields(data)
		for _, c := range exact {
			result.Matches = append(result.Matches, DuplicateMatch{
				Candidate:      c,
				Score:          1.0,
				Type:           match.TypeExact,
				MatchingFields: fields,
			})
		}
	} else {
		matches, err := s.fuzzyScan(ctx, tenantID, data)
		if err != nil {
			observability.ObserveDetection(observability.DetectionError, time.Since(start).Seconds())
			return nil, err
		}
		result.Matches = matches
	}

	sortMatches(result.Matches)
	result.HasDuplicates = len(result.Matches) > 0
	result.ShouldFlag = result.HasDuplicates
	if result.ShouldFlag {
		result.FlagReason = flagReason(result.Matches[0])
	}

	outcome := observability.DetectionClean
	switch {
	case len(exact) > 0:
		outcome = observability.DetectionExact
	case result.HasDuplicates:
		outcome = observability.DetectionFuzzy
	}
	observability.ObserveDetection(outcome, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("matches.count", len(result.Matches)),
		attribute.Bool("should_flag", result.ShouldFlag),
	)
	log.Debug().
		Str("tenant_id", tenantID).
		Int("matches", len(result.Matches)).
		Bool("should_flag", result.ShouldFlag).
		Msg("duplicate detection completed")

	return result, nil
}

// fuzzyScan walks the tenant's candidates in stable pages and scores each
// against the evaluated data. It stops early at MaxMatches or when the
// context is cancelled; cancellation returns the accumulated matches with
// no error. A page-read failure aborts with ErrStoreUnavailable.
func (s *DuplicateService) fuzzyScan(ctx context.Context, tenantID string, data CandidateData) ([]DuplicateMatch, error) {
	rec := match.Record{Name: data.Name, Email: data.Email, Phone: data.Phone}
	limit := s.ScanPageSize
	if limit <= 0 {
		limit = 200
	}

	var out []DuplicateMatch
	for offset := 0; ; offset += limit {
		if ctx.Err() != nil {
			return out, nil
		}
		page, err := repo.ListCandidatesPage(ctx, s.DB, tenantID, data.ExcludeID, offset, limit)
		if err != nil {
			if ctx.Err() != nil {
				return out, nil
			}
			return nil, storeErr(err)
		}
		for _, c := range page {
			r := s.Engine.Score(rec, match.Record{Name: c.Name, Email: c.Email, Phone: c.Phone})
			if r.Type == match.TypeNone {
				continue
			}
			out = append(out, DuplicateMatch{
				Candidate:      c,
				Score:          r.Score,
				Type:           r.Type,
				MatchingFields: r.MatchingFields,
			})
			if s.MaxMatches > 0 && len(out) >= s.MaxMatches {
				return out, nil
			}
		}
		if len(page) < limit {
			return out, nil
		}
	}
}

// UpdateCandidateHash recomputes one candidate's fingerprint from its
// current identity fields and writes it when it differs from the stored
// value (or unconditionally with force). It reports whether a write
// happened.
func (s *DuplicateService) UpdateCandidateHash(ctx context.Context, tenantID, candidateID string, force bool) (bool, error) {
	c, err := repo.GetCandidate(ctx, s.DB, candidateID, tenantID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrCandidateNotFound
		}
		return false, storeErr(err)
	}
	fp := identity.Fingerprint(c.Name, c.Email, c.Phone)
	if !force && c.Fingerprint == fp {
		return false, nil
	}
	if err := repo.UpdateFingerprint(ctx, s.DB, c.ID, fp); err != nil {
		return false, storeErr(err)
	}
	return true, nil
}

// BatchUpdateCandidateHashes recomputes fingerprints for every candidate
// in the tenant, in bounded pages. Rows whose stored fingerprint already
// equals the recomputed digest are skipped unless force is set, which
// makes a re-run after a partial failure a cheap no-op for correct rows.
// Per-row write failures are logged, counted, and do not abort the batch;
// a page-read failure aborts with ErrStoreUnavailable.
func (s *DuplicateService) BatchUpdateCandidateHashes(ctx context.Context, tenantID string, force bool) (BatchStats, error) {
	tr := otel.Tracer("services/DuplicateService")
	ctx, span := tr.Start(ctx, "BatchUpdateCandidateHashes",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Bool("force", force),
		),
	)
	defer span.End()

	var stats BatchStats
	limit := s.ScanPageSize
	if limit <= 0 {
		limit = 200
	}

	for offset := 0; ; offset += limit {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		page, err := repo.ListCandidatesPage(ctx, s.DB, tenantID, "", offset, limit)
		if err != nil {
			return stats, storeErr(err)
		}
		for _, c := range page {
			stats.Total++
			fp := identity.Fingerprint(c.Name, c.Email, c.Phone)
			if !force && c.Fingerprint == fp {
				stats.Skipped++
				observability.BackfillRow(observability.BackfillSkipped)
				continue
			}
			if err := repo.UpdateFingerprint(ctx, s.DB, c.ID, fp); err != nil {
				stats.Errors++
				observability.BackfillRow(observability.BackfillError)
				log.Error().
					Err(err).
					Str("tenant_id", tenantID).
					Str("candidate_id", c.ID).
					Msg("fingerprint update failed")
				continue
			}
			stats.Updated++
			observability.BackfillRow(observability.BackfillUpdated)
		}
		if len(page) < limit {
			break
		}
	}

	log.Info().
		Str("tenant_id", tenantID).
		Int("total", stats.Total).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Int("errors", stats.Errors).
		Msg("batch fingerprint update completed")
	return stats, nil
}

// GetDuplicateStatistics returns the tenant's duplicate-detection report.
// It issues aggregate count queries only and has no side effects.
func (s *DuplicateService) GetDuplicateStatistics(ctx context.Context, tenantID string) (*DuplicateStats, error) {
	tr := otel.Tracer("services/DuplicateService")
	ctx, span := tr.Start(ctx, "GetDuplicateStatistics",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	total, withFP, err := repo.FingerprintStats(ctx, s.DB, tenantID)
	if err != nil {
		return nil, storeErr(err)
	}
	flagged, err := repo.CountFlaggedApplications(ctx, s.DB, tenantID)
	if err != nil {
		return nil, storeErr(err)
	}
	left, err := repo.CountCandidatesByStatus(ctx, s.DB, tenantID, domain.StatusLeft)
	if err != nil {
		return nil, storeErr(err)
	}

	stats := &DuplicateStats{
		TotalCandidates:       total,
		CandidatesWithHash:    withFP,
		CandidatesWithoutHash: total - withFP,
		FlaggedApplications:   flagged,
		LeftStatusCandidates:  left,
	}
	if total > 0 {
		stats.HashCoveragePercentage = float64(withFP) / float64(total) * 100
	}
	return stats, nil
}

// ----------------------------------------------------------------------------
// Helpers

// sortMatches orders matches by descending score; ties go to the earlier
// created candidate, then ID, never to storage order.
func sortMatches(ms []DuplicateMatch) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Score != ms[j].Score {
			return ms[i].Score > ms[j].Score
		}
		if !ms[i].Candidate.CreatedAt.Equal(ms[j].Candidate.CreatedAt) {
			return ms[i].Candidate.CreatedAt.Before(ms[j].Candidate.CreatedAt)
		}
		return ms[i].Candidate.ID < ms[j].Candidate.ID
	})
}

// presentFields lists the evaluated data's non-empty identity fields in
// name/email/phone order, the matching-field set reported for exact hits.
func presentFields(data CandidateData) []string {
	fields := []string{"name"}
	if strings.TrimSpace(data.Email) != "" {
		fields = append(fields, "email")
	}
	if strings.TrimSpace(data.Phone) != "" {
		fields = append(fields, "phone")
	}
	return fields
}

// flagReason builds the operator-visible explanation from the top-ranked
// match.
func flagReason(top DuplicateMatch) string {
	if top.Type == match.TypeExact {
		return exactMatchReason
	}
	fields := strings.Join(top.MatchingFields, "+")
	if fields == "" {
		fields = "profile"
	}
	reason := fmt.Sprintf("Potential duplicate: %s match, %.2f similarity", fields, top.Score)
	if top.Candidate.Status == domain.StatusLeft {
		reason += " (matched candidate has LEFT status)"
	}
	return reason
}

// dropCandidate removes the candidate with the given ID from the slice.
func dropCandidate(cs []domain.Candidate, id string) []domain.Candidate {
	out := cs[:0]
	for _, c := range cs {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
