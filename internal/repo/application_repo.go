// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Application model. The review flag and reason pass through here exactly
// once, at creation or explicit re-flagging; nothing else touches them.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ansariamann/hr-system-sub002/internal/domain"
)

// CreateApplication inserts a new Application row for a candidate within
// the tenant. flagged/flagReason come from the duplicate-detection result
// the caller obtained; an unflagged application carries an empty reason.
func CreateApplication(ctx context.Context, db *gorm.DB, tenantID, candidateID, jobTitle string, flagged bool, flagReason string) (*domain.Application, error) {
	a := &domain.Application{
		ID:               uuid.NewString(),
		TenantID:         tenantID,
		CandidateID:      candidateID,
		JobTitle:         jobTitle,
		Status:           domain.ApplicationStatusReceived,
		FlaggedForReview: flagged,
		FlagReason:       flagReason,
		CreatedAt:        time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetApplication fetches a single application by ID within the tenant,
// returning ErrNotFound when missing.
func GetApplication(ctx context.Context, db *gorm.DB, id, tenantID string) (*domain.Application, error) {
	var a domain.Application
	err := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FlagApplication marks an application for review with the given reason,
// enforcing tenant ownership. Returns ErrNotFound when the application does
// not exist in the tenant.
func FlagApplication(ctx context.Context, db *gorm.DB, id, tenantID, reason string) error {
	res := db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{
			"flagged_for_review": true,
			"flag_reason":        reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountFlaggedApplications returns the number of the tenant's applications
// currently flagged for review.
func CountFlaggedApplications(ctx context.Context, db *gorm.DB, tenantID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("tenant_id = ? AND flagged_for_review = ?", tenantID, true).
		Count(&total).Error
	return total, err
}
