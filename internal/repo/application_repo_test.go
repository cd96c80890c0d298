package repo

import (
	"context"
	"testing"

	"github.com/ansariamann/hr-system-sub002/internal/domain"
)

func TestCreateApplication_SetsDefaultsAndFlag(t *testing.T) {
	db := newRepoDB(t, &domain.Candidate{}, &domain.Application{})
	seedCandidate(t, db, domain.Candidate{ID: "c1", TenantID: "t1", Name: "A"})

	a, err := CreateApplication(context.Background(), db, "t1", "c1", "Backend Engineer", true, "Exact match found by identity fingerprint.")
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if a.ID == "" || a.Status != domain.ApplicationStatusReceived {
		t.Fatalf("unexpected application: %+v", a)
	}
	if !a.FlaggedForReview || a.FlagReason == "" {
		t.Fatalf("flag not persisted: %+v", a)
	}

	got, err := GetApplication(context.Background(), db, a.ID, "t1")
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if got.JobTitle != "Backend Engineer" || !got.FlaggedForReview {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	// Cross-tenant read must miss.
	if _, err := GetApplication(context.Background(), db, a.ID, "t2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound across tenants, got %v", err)
	}
}

func TestFlagApplication(t *testing.T) {
	db := newRepoDB(t, &domain.Candidate{}, &domain.Application{})
	seedCandidate(t, db, domain.Candidate{ID: "c1", TenantID: "t1", Name: "A"})
	a, err := CreateApplication(context.Background(), db, "t1", "c1", "", false, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := FlagApplication(context.Background(), db, a.ID, "t1", "Potential duplicate: name match, 0.88 similarity"); err != nil {
		t.Fatalf("flag: %v", err)
	}
	got, err := GetApplication(context.Background(), db, a.ID, "t1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.FlaggedForReview || got.FlagReason == "" {
		t.Fatalf("flag not applied: %+v", got)
	}

	if err := FlagApplication(context.Background(), db, a.ID, "t2", "x"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for wrong tenant, got %v", err)
	}
}

func TestCountFlaggedApplications(t *testing.T) {
	db := newRepoDB(t, &domain.Candidate{}, &domain.Application{})
	seedCandidate(t, db, domain.Candidate{ID: "c1", TenantID: "t1", Name: "A"})
	seedCandidate(t, db, domain.Candidate{ID: "c2", TenantID: "t2", Name: "B"})

	mustCreate := func(tenant, cand string, flagged bool) {
		t.Helper()
		if _, err := CreateApplication(context.Background(), db, tenant, cand, "", flagged, ""); err != nil {
			t.Fatalf("create app: %v", err)
		}
	}
	mustCreate("t1", "c1", true)
	mustCreate("t1", "c1", false)
	mustCreate("t2", "c2", true)

	n, err := CountFlaggedApplications(context.Background(), db, "t1")
	if err != nil || n != 1 {
		t.Fatalf("CountFlaggedApplications = %d, %v; want 1", n, err)
	}
}
