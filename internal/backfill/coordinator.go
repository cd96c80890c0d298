// Package backfill runs the fingerprint backfill for historical candidate
// rows. The coordinator wraps the plain batch refresh with operational
// controls: a token-bucket rate limit on row writes so a large tenant's
// backfill cannot starve the live write path, and bounded retries with
// backoff on page reads.
//
// The work itself is idempotent — rows whose stored fingerprint already
// matches are skipped — so a run interrupted by cancellation or a page-read
// failure can simply be restarted.
package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ansariamann/hr-system-sub002/internal/config"
	"github.com/ansariamann/hr-system-sub002/internal/domain"
	"github.com/ansariamann/hr-system-sub002/internal/identity"
	"github.com/ansariamann/hr-system-sub002/internal/observability"
	"github.com/ansariamann/hr-system-sub002/internal/repo"
	"github.com/ansariamann/hr-system-sub002/internal/services"
)

// Coordinator drives a rate-limited, retrying fingerprint backfill for one
// tenant at a time. A single instance is safe for concurrent use; each Run
// keeps its own progress state.
type Coordinator struct {
	DB *gorm.DB

	// PageSize bounds the rows fetched per page.
	PageSize int
	// Limiter throttles row processing; nil means unlimited.
	Limiter *rate.Limiter
	// MaxRetries is the number of additional attempts for a failed page read.
	MaxRetries int
	// RetryBackoff is the base delay between page-read retries; attempt n
	// waits n times this value.
	RetryBackoff time.Duration
}

// NewCoordinator constructs a Coordinator from configuration. A zero
// RowsPerSec disables rate limiting.
func NewCoordinator(db *gorm.DB, cfg config.BackfillConfig) *Coordinator {
	var limiter *rate.Limiter
	if cfg.RowsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RowsPerSec), cfg.Burst)
	}
	return &Coordinator{
		DB:           db,
		PageSize:     cfg.PageSize,
		Limiter:      limiter,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}
}

// Run backfills fingerprints for every candidate in the tenant and returns
// aggregate statistics. Rows already carrying the recomputed digest are
// skipped unless force is set. Per-row write failures are counted and do
// not abort the run; a page read that keeps failing after retries does.
// Cancellation returns ctx.Err() with the statistics accumulated so far.
func (c *Coordinator) Run(ctx context.Context, tenantID string, force bool) (services.BatchStats, error) {
	tr := otel.Tracer("backfill/Coordinator")
	ctx, span := tr.Start(ctx, "Run",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Bool("force", force),
		),
	)
	defer span.End()
	start := time.Now()

	var stats services.BatchStats
	limit := c.PageSize
	if limit <= 0 {
		limit = 500
	}

	for offset := 0; ; offset += limit {
		page, err := c.readPage(ctx, tenantID, offset, limit)
		if err != nil {
			return stats, err
		}
		for _, row := range page {
			if err := c.wait(ctx); err != nil {
				return stats, err
			}
			stats.Total++
			fp := identity.Fingerprint(row.Name, row.Email, row.Phone)
			if !force && row.Fingerprint == fp {
				stats.Skipped++
				observability.BackfillRow(observability.BackfillSkipped)
				continue
			}
			if err := repo.UpdateFingerprint(ctx, c.DB, row.ID, fp); err != nil {
				stats.Errors++
				observability.BackfillRow(observability.BackfillError)
				log.Error().
					Err(err).
					Str("tenant_id", tenantID).
					Str("candidate_id", row.ID).
					Msg("backfill row failed")
				continue
			}
			stats.Updated++
			observability.BackfillRow(observability.BackfillUpdated)
		}
		if len(page) < limit {
			break
		}
		log.Debug().
			Str("tenant_id", tenantID).
			Int("processed", stats.Total).
			Msg("backfill page completed")
	}

	span.SetAttributes(
		attribute.Int("rows.total", stats.Total),
		attribute.Int("rows.updated", stats.Updated),
		attribute.Int("rows.errors", stats.Errors),
	)
	log.Info().
		Str("tenant_id", tenantID).
		Int("total", stats.Total).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Int("errors", stats.Errors).
		Dur("elapsed", time.Since(start)).
		Msg("backfill completed")
	return stats, nil
}

// readPage fetches one page, retrying transient failures with linear
// backoff up to MaxRetries additional attempts. An exhausted retry budget
// surfaces as a store-unavailable error.
func (c *Coordinator) readPage(ctx context.Context, tenantID string, offset, limit int) ([]domain.Candidate, error) {
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.RetryBackoff
			log.Warn().
				Err(lastErr).
				Str("tenant_id", tenantID).
				Int("offset", offset).
				Int("attempt", attempt).
				Msg("backfill page read failed; retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		page, err := repo.ListCandidatesPage(ctx, c.DB, tenantID, "", offset, limit)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("%w: %v", services.ErrStoreUnavailable, lastErr)
}

// wait blocks on the rate limiter, if any.
func (c *Coordinator) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	return c.Limiter.Wait(ctx)
}
