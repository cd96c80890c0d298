// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries
// used by the duplicate-statistics report. Each function is context-aware
// and issues count queries only — no row loads.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ansariamann/hr-system-sub002/internal/domain"
)

// FingerprintStats returns the total number of the tenant's candidates and
// how many of them already carry a computed fingerprint.
//
// Return values:
//   - total:   candidate rows for tenantID
//   - withFP:  rows whose fingerprint column is non-empty
//   - err:     database error, if any
func FingerprintStats(ctx context.Context, db *gorm.DB, tenantID string) (total, withFP int64, err error) {
	q := db.WithContext(ctx).Model(&domain.Candidate{}).Where("tenant_id = ?", tenantID)

	if err = q.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return 0, 0, nil
	}

	err = db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("tenant_id = ? AND fingerprint <> ''", tenantID).
		Count(&withFP).Error
	if err != nil {
		return 0, 0, err
	}
	return total, withFP, nil
}
