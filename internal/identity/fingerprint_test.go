package identity

import (
	"encoding/hex"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"  John   Smith  ":      "john smith",
		"JOHN SMITH":            "john smith",
		"Mr. John Smith":        "john smith",
		"John Smith Jr.":        "john smith",
		"Dr. Jane Doe III":      "jane doe",
		"José García":           "jose garcia",
		"O'Brien, Pat":          "obrien pat",
		"tabs\tand\nnewlines":   "tabs and newlines",
		"Mr.":                   "mr", // lone honorific is kept, never emptied
		"Ms Ana-Maria  Popescu": "anamaria popescu",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"":                         "",
		"  J.Smith@Co.COM ":        "j.smith@co.com",
		"john+jobs@example.com":    "john@example.com",
		"John.Smith@gmail.com":     "johnsmith@gmail.com",
		"j.s+tag@GMAIL.com":        "js@gmail.com",
		"not-an-email":             "not-an-email",
		"dots.kept@notgmail.co.in": "dots.kept@notgmail.co.in",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"+1 (555) 010-0001": "5550100001",
		"5550100001":        "5550100001",
		"915550100001":      "5550100001",
		"010-0001":          "0100001", // short local numbers kept as-is
		"ext. 42":           "42",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("John Smith", "j.smith@co.com", "+1 (555) 010-0001")
	b := Fingerprint("John Smith", "j.smith@co.com", "+1 (555) 010-0001")
	if a != b {
		t.Fatalf("identical inputs produced different digests: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if _, err := hex.DecodeString(a); err != nil {
		t.Fatalf("digest is not hex: %v", err)
	}
}

func TestFingerprint_NormalizationInvariance(t *testing.T) {
	a := Fingerprint("John Smith", "j.smith@co.com", "+1 (555) 010-0001")
	b := Fingerprint("  john   SMITH ", "J.Smith@Co.Com", "5550100001")
	if a != b {
		t.Fatalf("case/whitespace/format variants should share a fingerprint")
	}
}

func TestFingerprint_SeparatorsPreventFieldBleed(t *testing.T) {
	// "john doe" with empty email must not collide with "john" + "doe".
	a := Fingerprint("john doe", "", "")
	b := Fingerprint("john", "doe", "")
	if a == b {
		t.Fatalf("field separator failed to disambiguate inputs")
	}
}

func TestFingerprint_MissingOptionalsStillStable(t *testing.T) {
	a := Fingerprint("Jane Doe", "", "")
	b := Fingerprint("jane doe", "", "")
	if a != b {
		t.Fatalf("name-only records should get a stable fingerprint")
	}
	if a == Fingerprint("Jane Doe", "jane@co.com", "") {
		t.Fatalf("adding an email must change the fingerprint")
	}
}
