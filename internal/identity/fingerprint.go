// Package identity computes the deterministic identity fingerprint used for
// exact-duplicate lookup, together with the field normalizers it is built
// from. Everything here is a pure function: no I/O, no side effects, safe to
// call from the per-write path and the batch backfill alike.
//
// The fingerprint is a sha256 digest over the normalized
// (name, email, phone) tuple joined with explicit separators, so that
// ("John Doe", "") can never collide with ("John", "Doe"). Missing optional
// fields participate as empty strings; equal-name-only records still get a
// stable, comparable fingerprint.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PhoneSuffixLen is the number of trailing digits kept when normalizing a
// phone number. Keeping only the local suffix tolerates country-code and
// formatting variance ("+1 (555) 010-0001" vs "5550100001").
const PhoneSuffixLen = 10

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	nonDigitRE   = regexp.MustCompile(`[^\d]`)

	// foldDiacritics decomposes and strips combining marks ("José" -> "Jose").
	foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Honorifics stripped from normalized names. Lowercase, post-normalization.
var (
	namePrefixes = map[string]struct{}{"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}}
	nameSuffixes = map[string]struct{}{"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {}}
)

// NormalizeName canonicalizes a candidate name: trims, lower-cases,
// collapses internal whitespace, folds diacritics, strips honorific
// prefixes/suffixes, and drops everything that is not a letter or a space.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}

	// Keep letters and spaces only; periods after honorifics etc. disappear
	// here so "mr. john" and "mr john" normalize alike.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || r == ' ' {
			b.WriteRune(r)
		} else if unicode.IsSpace(r) {
			b.WriteByte(' ')
		}
	}
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(b.String()), " ")

	words := strings.Split(s, " ")
	if len(words) > 1 {
		if _, ok := namePrefixes[words[0]]; ok {
			words = words[1:]
		}
	}
	if len(words) > 1 {
		if _, ok := nameSuffixes[words[len(words)-1]]; ok {
			words = words[:len(words)-1]
		}
	}
	return strings.Join(words, " ")
}

// NormalizeEmail canonicalizes an email address: trims, lower-cases, strips
// plus-addressing from the local part, and removes dots from the local part
// of gmail.com addresses (Gmail ignores them).
func NormalizeEmail(email string) string {
	s := strings.ToLower(strings.TrimSpace(email))
	if s == "" {
		return ""
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return s
	}
	local, dom := s[:at], s[at+1:]
	if i := strings.IndexByte(local, '+'); i >= 0 {
		local = local[:i]
	}
	if dom == "gmail.com" {
		local = strings.ReplaceAll(local, ".", "")
	}
	return local + "@" + dom
}

// NormalizePhone reduces a phone number to its local digit suffix: all
// non-digit characters are removed and only the trailing PhoneSuffixLen
// digits are kept.
func NormalizePhone(phone string) string {
	digits := nonDigitRE.ReplaceAllString(phone, "")
	if len(digits) > PhoneSuffixLen {
		digits = digits[len(digits)-PhoneSuffixLen:]
	}
	return digits
}

// Fingerprint returns the sha256 hex digest of the normalized identity
// tuple. Deterministic: identical inputs (modulo case, whitespace, phone
// formatting) always yield identical output.
func Fingerprint(name, email, phone string) string {
	input := NormalizeName(name) + "|" + NormalizeEmail(email) + "|" + NormalizePhone(phone)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
