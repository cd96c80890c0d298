package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ansariamann/hr-system-sub002/internal/domain"
	"github.com/ansariamann/hr-system-sub002/internal/identity"
)

func TestCandidateService_Create(t *testing.T) {
	db := newServiceDB(t)
	svc := NewCandidateService(db)

	c, err := svc.Create(context.Background(), "t1", "José García", "jose+hr@gmail.com", "+34 600 111 222")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" || c.TenantID != "t1" || c.Status != domain.StatusActive {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	// Fingerprint written at creation, consistent with the fields.
	if want := identity.Fingerprint(c.Name, c.Email, c.Phone); c.Fingerprint != want {
		t.Fatalf("fingerprint = %q; want %q", c.Fingerprint, want)
	}

	var got domain.Candidate
	if err := db.First(&got, "id = ?", c.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.HasFingerprint() {
		t.Fatalf("stored candidate missing fingerprint: %+v", got)
	}

	if _, err := svc.Create(context.Background(), "t1", "  ", "", ""); !errors.Is(err, ErrInvalidCandidateData) {
		t.Fatalf("expected ErrInvalidCandidateData, got %v", err)
	}
}

func TestCandidateService_Get(t *testing.T) {
	db := newServiceDB(t)
	svc := NewCandidateService(db)
	seeded := seedIdentity(t, db, "c1", "t1", "John Smith", "", "")

	got, err := svc.Get(context.Background(), "t1", "c1")
	if err != nil || got.ID != seeded.ID {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := svc.Get(context.Background(), "t2", "c1"); !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound for wrong tenant, got %v", err)
	}
}

func TestCandidateService_UpdateIdentity_RecomputesFingerprint(t *testing.T) {
	db := newServiceDB(t)
	svc := NewCandidateService(db)
	seedIdentity(t, db, "c1", "t1", "John Smith", "john@co.com", "5550100001")

	updated, err := svc.UpdateIdentity(context.Background(), "t1", "c1", "John A Smith", "john.a@co.com", "5550100002")
	if err != nil {
		t.Fatalf("UpdateIdentity: %v", err)
	}
	if updated.Name != "John A Smith" || updated.Email != "john.a@co.com" {
		t.Fatalf("fields not updated: %+v", updated)
	}
	if want := identity.Fingerprint("John A Smith", "john.a@co.com", "5550100002"); updated.Fingerprint != want {
		t.Fatalf("fingerprint not recomputed with fields: %q", updated.Fingerprint)
	}

	if _, err := svc.UpdateIdentity(context.Background(), "t1", "c1", "", "", ""); !errors.Is(err, ErrInvalidCandidateData) {
		t.Fatalf("expected ErrInvalidCandidateData, got %v", err)
	}
	if _, err := svc.UpdateIdentity(context.Background(), "t1", "missing", "X Y", "", ""); !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}
