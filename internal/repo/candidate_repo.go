// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Candidate
// model — the store-adapter boundary the duplicate-detection core consumes.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Tenant isolation is enforced here: every read and every ownership-checked
// write takes a tenant ID and scopes the query to it, so a fingerprint
// collision across tenants can never leak a row. UpdateFingerprint is the
// one exception — it is keyed by primary key only, because callers obtain
// the ID through a tenant-scoped read first.
//
// Error semantics:
//   - When a candidate is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated; the service layer classifies them.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ansariamann/hr-system-sub002/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateCandidate inserts a new Candidate row for tenantID. The ID is a
// randomly generated UUID, CreatedAt is set to UTC, and the status defaults
// to ACTIVE. The fingerprint is expected to be precomputed by the caller
// (the identity write path owns fingerprint derivation).
func CreateCandidate(ctx context.Context, db *gorm.DB, tenantID, name, email, phone, fingerprint string) (*domain.Candidate, error) {
	c := &domain.Candidate{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Status:      domain.StatusActive,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetCandidate fetches a single candidate by ID within the tenant. If the
// record does not exist (or belongs to another tenant), it returns
// ErrNotFound.
func GetCandidate(ctx context.Context, db *gorm.DB, id, tenantID string) (*domain.Candidate, error) {
	var c domain.Candidate
	err := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByFingerprint returns all candidates in the tenant sharing the given
// fingerprint, ordered by creation time ascending (earliest first, which is
// also the ranking tie-break order). Returns an empty slice when none match.
func FindByFingerprint(ctx context.Context, db *gorm.DB, tenantID, fingerprint string) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND fingerprint = ?", tenantID, fingerprint).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// ListCandidatesPage returns a page of the tenant's candidates in a stable
// order (created_at asc, id asc) for the fuzzy scan and backfill paging.
// excludeID, when non-empty, drops that candidate from the results so a
// record is never compared against itself.
//
// The caller is responsible for computing offset and limit.
func ListCandidatesPage(ctx context.Context, db *gorm.DB, tenantID, excludeID string, offset, limit int) ([]domain.Candidate, error) {
	q := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var out []domain.Candidate
	err := q.
		Order("created_at asc, id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountCandidates returns the total number of candidates in the tenant.
func CountCandidates(ctx context.Context, db *gorm.DB, tenantID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error
	return total, err
}

// CountCandidatesByStatus returns the number of the tenant's candidates in
// the given lifecycle status.
func CountCandidatesByStatus(ctx context.Context, db *gorm.DB, tenantID, status string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&total).Error
	return total, err
}

// UpdateFingerprint writes a candidate's fingerprint. The write is a
// single-row last-writer-wins update and is idempotent: re-writing the same
// value is harmless. Returns ErrNotFound when the candidate does not exist.
func UpdateFingerprint(ctx context.Context, db *gorm.DB, id, fingerprint string) error {
	res := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ?", id).
		Update("fingerprint", fingerprint)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCandidateIdentity updates a candidate's identity fields together
// with the recomputed fingerprint, enforcing tenant ownership. The three
// identity fields and the digest always move in one write so the stored
// fingerprint can never lag the fields it derives from.
func UpdateCandidateIdentity(ctx context.Context, db *gorm.DB, id, tenantID, name, email, phone, fingerprint string) error {
	res := db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{
			"name":        name,
			"email":       email,
			"phone":       phone,
			"fingerprint": fingerprint,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
