// Package match implements the multi-field similarity engine used for fuzzy
// duplicate detection. It is deterministic, symmetric, dependency-light, and
// safe for concurrent use:
//
//   - No logging in the library (callers decide how/what to log)
//   - Clear, documented types and functional options (Option pattern)
//   - Token-set name comparison (order-independent) with per-token
//     Levenshtein similarity for near-miss spellings
//   - Exact-match comparison of normalized emails and phone suffixes
//   - Proportional weight redistribution when optional fields are absent,
//     so two candidates missing the same fields can still score high on
//     name alone
//
// Classification: a score of exactly 1.0 is tagged TypeExact (the digest
// collision path); anything at or above the fuzzy threshold is TypeFuzzy;
// below the threshold the pair is not a match at all.
package match

import (
	"sort"
	"strings"

	"github.com/ansariamann/hr-system-sub002/internal/identity"
)

// Type classifies a scored pair.
type Type string

const (
	// TypeExact marks a pair whose aggregate score is exactly 1.0.
	TypeExact Type = "EXACT"
	// TypeFuzzy marks a pair at or above the fuzzy threshold but below 1.0.
	TypeFuzzy Type = "FUZZY"
	// TypeNone marks a pair below the fuzzy threshold; not a match.
	TypeNone Type = "NONE"
)

// Record carries the raw identity fields of one candidate. Values are
// normalized internally; callers pass them as stored.
type Record struct {
	Name  string
	Email string
	Phone string
}

// Result is the outcome of scoring one pair of records.
type Result struct {
	// Score is the weighted aggregate similarity in [0, 1].
	Score float64
	// Type is the classification of Score against the engine threshold.
	Type Type
	// MatchingFields lists every field whose individual comparison cleared
	// its field-specific threshold, in name/email/phone order. This is the
	// operator-visible "why flagged" explanation, independent of which
	// fields carried aggregate weight.
	MatchingFields []string
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	threshold     float64 // fuzzy classification threshold
	nameThreshold float64 // per-field threshold for "name matched"
	nameWeight    float64
	emailWeight   float64
	phoneWeight   float64
}

func defaultConfig() config {
	return config{
		threshold:     0.75,
		nameThreshold: 0.8,
		nameWeight:    0.5,
		emailWeight:   0.3,
		phoneWeight:   0.2,
	}
}

// WithThreshold sets the fuzzy classification threshold (ignored unless in
// (0, 1]).
func WithThreshold(t float64) Option {
	return func(c *config) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithNameFieldThreshold sets the per-field threshold above which the name
// comparison is reported in MatchingFields.
func WithNameFieldThreshold(t float64) Option {
	return func(c *config) {
		if t > 0 && t <= 1 {
			c.nameThreshold = t
		}
	}
}

// WithWeights overrides the name/email/phone aggregate weights. Weights are
// ignored unless all are non-negative and their sum is positive.
func WithWeights(name, email, phone float64) Option {
	return func(c *config) {
		if name >= 0 && email >= 0 && phone >= 0 && name+email+phone > 0 {
			c.nameWeight, c.emailWeight, c.phoneWeight = name, email, phone
		}
	}
}

// ----------------------------------------------------------------------------
// Engine

// Engine scores candidate pairs. It holds only configuration and is safe
// for concurrent use.
type Engine struct {
	cfg config
}

// NewEngine constructs an Engine with the given options applied over the
// defaults (threshold 0.75, weights 0.5/0.3/0.2, name field threshold 0.8).
func NewEngine(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Engine{cfg: cfg}
}

// Threshold returns the fuzzy classification threshold in effect.
func (e *Engine) Threshold() float64 { return e.cfg.threshold }

// Score computes the weighted similarity of two records. It is symmetric:
// Score(a, b) and Score(b, a) are identical.
func (e *Engine) Score(a, b Record) Result {
	nameA, nameB := identity.NormalizeName(a.Name), identity.NormalizeName(b.Name)
	emailA, emailB := identity.NormalizeEmail(a.Email), identity.NormalizeEmail(b.Email)
	phoneA, phoneB := identity.NormalizePhone(a.Phone), identity.NormalizePhone(b.Phone)

	var score, weight float64
	nameSim := 0.0
	if nameA != "" && nameB != "" {
		nameSim = nameSimilarity(nameA, nameB)
		score += nameSim * e.cfg.nameWeight
		weight += e.cfg.nameWeight
	}
	emailEq := emailA != "" && emailA == emailB
	if emailA != "" && emailB != "" {
		if emailEq {
			score += e.cfg.emailWeight
		}
		weight += e.cfg.emailWeight
	}
	phoneEq := phoneA != "" && phoneA == phoneB
	if phoneA != "" && phoneB != "" {
		if phoneEq {
			score += e.cfg.phoneWeight
		}
		weight += e.cfg.phoneWeight
	}

	res := Result{Type: TypeNone}
	if weight > 0 {
		res.Score = score / weight
	}

	if nameSim >= e.cfg.nameThreshold {
		res.MatchingFields = append(res.MatchingFields, "name")
	}
	if emailEq {
		res.MatchingFields = append(res.MatchingFields, "email")
	}
	if phoneEq {
		res.MatchingFields = append(res.MatchingFields, "phone")
	}

	switch {
	case res.Score == 1.0:
		res.Type = TypeExact
	case res.Score >= e.cfg.threshold:
		res.Type = TypeFuzzy
	}
	return res
}

// ----------------------------------------------------------------------------
// Name similarity

// nameSimilarity compares two normalized names as token sets. Tokens are
// paired greedily by best Levenshtein similarity (order-independent, so
// "smith john" equals "john smith"); unmatched tokens contribute nothing.
// The result is 2*Σ(paired similarity) / (|a| + |b|), in [0, 1].
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ta, tb := strings.Fields(a), strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	if sameTokenSet(ta, tb) {
		return 1.0
	}

	// Greedy global-best pairing: repeatedly take the most similar
	// remaining pair. Quadratic, but names are a handful of tokens.
	// Ties are broken by the unordered token pair so the pairing is
	// identical regardless of argument order.
	sort.Strings(ta)
	sort.Strings(tb)
	usedA := make([]bool, len(ta))
	usedB := make([]bool, len(tb))
	pairs := minInt(len(ta), len(tb))
	sum := 0.0
	for p := 0; p < pairs; p++ {
		best, bi, bj := -1.0, -1, -1
		for i := range ta {
			if usedA[i] {
				continue
			}
			for j := range tb {
				if usedB[j] {
					continue
				}
				s := levenshteinSimilarity(ta[i], tb[j])
				if s > best || (s == best && bi >= 0 && pairKey(ta[i], tb[j]) < pairKey(ta[bi], tb[bj])) {
					best, bi, bj = s, i, j
				}
			}
		}
		if bi < 0 {
			break
		}
		usedA[bi], usedB[bj] = true, true
		sum += best
	}
	return 2 * sum / float64(len(ta)+len(tb))
}

// pairKey orders a token pair without regard to which side it came from.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

func sameTokenSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	other := make(map[string]struct{}, len(b))
	for _, t := range b {
		other[t] = struct{}{}
	}
	for _, t := range a {
		if _, ok := other[t]; !ok {
			return false
		}
	}
	return true
}

// levenshteinSimilarity converts edit distance to a similarity in [0, 1].
func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	dist := levenshtein(ra, rb)
	maxLen := maxInt(len(ra), len(rb))
	return 1.0 - float64(dist)/float64(maxLen)
}

// levenshtein computes the edit distance with a two-row matrix.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(minInt(prev[j]+1, curr[j-1]+1), prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
