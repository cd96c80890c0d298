// Package domain defines the persistence models for candidates and
// applications. These types are mapped with GORM and form the core data
// layer of the identity-resolution subsystem. Every row is partitioned by
// tenant; queries must always be scoped to a tenant ID.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Candidate lifecycle statuses. Status is advisory for matching (a LEFT
// candidate that resurfaces is a classic duplicate case) and never blocks
// a fingerprint write.
const (
	StatusActive      = "ACTIVE"
	StatusHired       = "HIRED"
	StatusLeft        = "LEFT"
	StatusBlacklisted = "BLACKLISTED"
)

// ApplicationStatusReceived is the initial workflow status of a new
// application.
const ApplicationStatusReceived = "RECEIVED"

// Candidate represents one real-world job seeker record for one tenant.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - TenantID: owning tenant; indexed, required on every access path.
//   - Name: full name as entered; required.
//   - Email / Phone: optional contact fields; empty string means absent.
//   - Status: lifecycle status (ACTIVE, HIRED, LEFT, BLACKLISTED).
//   - Fingerprint: sha256 digest of the normalized identity tuple, empty
//     until computed. Two candidates within a tenant may legitimately share
//     a fingerprint, so the (tenant_id, fingerprint) index is non-unique.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// The fingerprint is a pure function of (normalized name, email, phone) at
// last write and must be recomputed whenever any of those fields changes.
// Only the identity write path and the backfill mutate it; matching reads
// never do.
type Candidate struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	TenantID    string    `json:"tenant_id"   gorm:"type:char(36);not null;index:idx_tenant_candidates;index:idx_tenant_fingerprint,priority:1"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null"`
	Email       string    `json:"email,omitempty" gorm:"type:varchar(255)"`
	Phone       string    `json:"phone,omitempty" gorm:"type:varchar(50)"`
	Status      string    `json:"status"      gorm:"type:varchar(50);not null;default:'ACTIVE'"`
	Fingerprint string    `json:"fingerprint,omitempty" gorm:"type:char(64);index:idx_tenant_fingerprint,priority:2"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Candidate.
func (Candidate) TableName() string { return "candidates" }

// HasFingerprint reports whether the candidate's fingerprint has been
// computed.
func (c Candidate) HasFingerprint() bool { return c.Fingerprint != "" }

// Application represents a candidate's attachment to a hiring process.
// The review flag and its reason are written only by the application
// creation/update workflow using the duplicate-detection output; no other
// code path alters them retroactively.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - TenantID: owning tenant (indexed).
//   - CandidateID: foreign key to the applying candidate (indexed).
//   - JobTitle: free-text title of the position applied for.
//   - Status: workflow status; new applications start as RECEIVED.
//   - FlaggedForReview / FlagReason: duplicate-review marker and the
//     operator-visible explanation.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Application struct {
	ID               string         `json:"id"           gorm:"type:char(36);primaryKey"`
	TenantID         string         `json:"tenant_id"    gorm:"type:char(36);not null;index:idx_tenant_applications"`
	CandidateID      string         `json:"candidate_id" gorm:"type:char(36);not null;index"`
	JobTitle         string         `json:"job_title,omitempty" gorm:"type:varchar(255)"`
	Status           string         `json:"status"       gorm:"type:varchar(50);not null;default:'RECEIVED'"`
	FlaggedForReview bool           `json:"flagged_for_review" gorm:"not null;default:false"`
	FlagReason       string         `json:"flag_reason,omitempty" gorm:"type:text"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"            gorm:"index"`

	// Candidate is the applying candidate. Applications are cascade-deleted
	// if their candidate is removed.
	Candidate Candidate `json:"-" gorm:"foreignKey:CandidateID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Application.
func (Application) TableName() string { return "applications" }
